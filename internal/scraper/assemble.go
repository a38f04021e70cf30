package scraper

import (
	"math"
	"strconv"

	scrapeerr "pricepeek/scrapeworker/pkg/errors"
)

// Assemble reconciles the raw extractor outputs into the canonical record.
// It fails only when neither price field is usable; every other gap gets an
// empty or default value. Current and original price fall back to each
// other, so both always end up numeric.
func Assemble(rawURL, canonicalURL string, f Fields, fallbackCurrency string) (*Product, error) {
	current, currentOK := parsePrice(f.CurrentPriceText)
	original, originalOK := parsePrice(f.OriginalPriceText)

	if !currentOK && !originalOK {
		return nil, scrapeerr.NewIncompleteExtraction(rawURL)
	}
	if !currentOK {
		current = original
	}
	if !originalOK {
		original = current
	}

	currency := f.Currency
	if currency == "" {
		currency = fallbackCurrency
	}

	var image string
	if len(f.Images) > 0 {
		image = f.Images[0]
	}

	category := f.Category
	if category == "" {
		category = "category"
	}

	return &Product{
		URL:           rawURL,
		CanonicalURL:  canonicalURL,
		Title:         f.Title,
		Currency:      currency,
		Image:         image,
		Images:        f.Images,
		Description:   f.Description,
		Category:      category,
		CurrentPrice:  current,
		OriginalPrice: original,
		// First observation: the history stats all start at the observed
		// prices. They only become ordered after the external history
		// collaborator appends further points.
		LowestPrice:  current,
		HighestPrice: original,
		AveragePrice: current,
		DiscountRate: floatOrZero(f.DiscountText),
		ReviewsCount: intOrZero(f.ReviewsText),
		Stars:        floatOrZero(f.StarsText),
		IsOutOfStock: f.OutOfStock,
	}, nil
}

// parsePrice converts extracted price text to a number. Empty text, parse
// failures and negative values all report not-ok; a price is never guessed.
func parsePrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0, false
	}
	return f, true
}

func floatOrZero(text string) float64 {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

func intOrZero(text string) int {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return n
}
