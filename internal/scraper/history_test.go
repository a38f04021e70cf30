package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func points(prices ...float64) []PricePoint {
	history := make([]PricePoint, 0, len(prices))
	for _, p := range prices {
		history = append(history, PricePoint{Price: p})
	}
	return history
}

func TestHistoryReducers(t *testing.T) {
	history := points(2999, 2499, 3499, 2999)

	assert.Equal(t, 2499.0, LowestOf(history))
	assert.Equal(t, 3499.0, HighestOf(history))
	assert.Equal(t, 2999.0, AverageOf(history))
}

func TestHistoryReducersEmpty(t *testing.T) {
	assert.Equal(t, 0.0, LowestOf(nil))
	assert.Equal(t, 0.0, HighestOf(nil))
	assert.Equal(t, 0.0, AverageOf(nil))
}

func TestHistoryReducersSinglePoint(t *testing.T) {
	history := points(1499)

	assert.Equal(t, 1499.0, LowestOf(history))
	assert.Equal(t, 1499.0, HighestOf(history))
	assert.Equal(t, 1499.0, AverageOf(history))
}

func TestClassifyUpdateLowestPrice(t *testing.T) {
	scraped := &Product{CurrentPrice: 1999}
	stored := &Product{CurrentPrice: 2999}

	kind, ok := ClassifyUpdate(scraped, stored, points(2999, 2499))
	assert.True(t, ok)
	assert.Equal(t, NotificationLowestPrice, kind)
}

func TestClassifyUpdateBackInStock(t *testing.T) {
	scraped := &Product{CurrentPrice: 2999, IsOutOfStock: false}
	stored := &Product{CurrentPrice: 2999, IsOutOfStock: true}

	kind, ok := ClassifyUpdate(scraped, stored, points(2999, 2499))
	assert.True(t, ok)
	assert.Equal(t, NotificationBackInStock, kind)
}

func TestClassifyUpdateThresholdMet(t *testing.T) {
	scraped := &Product{CurrentPrice: 2999, DiscountRate: 45}
	stored := &Product{CurrentPrice: 2999}

	kind, ok := ClassifyUpdate(scraped, stored, nil)
	assert.True(t, ok)
	assert.Equal(t, NotificationThresholdMet, kind)
}

func TestClassifyUpdateLowestOutranksStockChange(t *testing.T) {
	scraped := &Product{CurrentPrice: 1999, IsOutOfStock: false}
	stored := &Product{CurrentPrice: 2999, IsOutOfStock: true}

	kind, ok := ClassifyUpdate(scraped, stored, points(2999, 2499))
	assert.True(t, ok)
	assert.Equal(t, NotificationLowestPrice, kind)
}

func TestClassifyUpdateNothingNotable(t *testing.T) {
	scraped := &Product{CurrentPrice: 2999, DiscountRate: 10}
	stored := &Product{CurrentPrice: 2999}

	_, ok := ClassifyUpdate(scraped, stored, points(2499, 2999))
	assert.False(t, ok)
}
