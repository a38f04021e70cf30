package scraper

// PricePoint is one observed price in a product's history. History storage
// and append semantics belong to the persistence collaborator; these
// reducers exist so every consumer computes the same statistics.
type PricePoint struct {
	Price float64 `json:"price"`
}

// NotificationType classifies what a fresh observation means for watchers
type NotificationType string

const (
	NotificationLowestPrice  NotificationType = "LOWEST_PRICE"
	NotificationBackInStock  NotificationType = "CHANGE_OF_STOCK"
	NotificationThresholdMet NotificationType = "THRESHOLD_MET"
)

// Discount rate at or above which a deal is worth notifying about
const discountThresholdPercent = 40

// LowestOf returns the lowest price in the history, or 0 for an empty one
func LowestOf(history []PricePoint) float64 {
	if len(history) == 0 {
		return 0
	}
	lowest := history[0].Price
	for _, p := range history[1:] {
		if p.Price < lowest {
			lowest = p.Price
		}
	}
	return lowest
}

// HighestOf returns the highest price in the history, or 0 for an empty one
func HighestOf(history []PricePoint) float64 {
	if len(history) == 0 {
		return 0
	}
	highest := history[0].Price
	for _, p := range history[1:] {
		if p.Price > highest {
			highest = p.Price
		}
	}
	return highest
}

// AverageOf returns the mean price of the history, or 0 for an empty one
func AverageOf(history []PricePoint) float64 {
	if len(history) == 0 {
		return 0
	}
	var sum float64
	for _, p := range history {
		sum += p.Price
	}
	return sum / float64(len(history))
}

// ClassifyUpdate compares a fresh scrape against the stored product and its
// history and returns the notification it warrants, if any.
func ClassifyUpdate(scraped *Product, stored *Product, history []PricePoint) (NotificationType, bool) {
	if len(history) > 0 && scraped.CurrentPrice < LowestOf(history) {
		return NotificationLowestPrice, true
	}
	if !scraped.IsOutOfStock && stored.IsOutOfStock {
		return NotificationBackInStock, true
	}
	if scraped.DiscountRate >= discountThresholdPercent {
		return NotificationThresholdMet, true
	}
	return "", false
}
