package scraper

// Product is the canonical record assembled from one scrape. It is built
// fresh on every invocation and never mutated afterwards; the persistence
// collaborator appends later price points keyed by URL.
type Product struct {
	URL           string   `json:"url"`
	CanonicalURL  string   `json:"canonical_url"`
	ReferenceSlug string   `json:"reference_slug,omitempty"`
	Title         string   `json:"title"`
	Currency      string   `json:"currency"`
	Image         string   `json:"image,omitempty"`
	Images        []string `json:"images,omitempty"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category"`
	CurrentPrice  float64  `json:"current_price"`
	OriginalPrice float64  `json:"original_price"`
	LowestPrice   float64  `json:"lowest_price"`
	HighestPrice  float64  `json:"highest_price"`
	AveragePrice  float64  `json:"average_price"`
	DiscountRate  float64  `json:"discount_rate"`
	ReviewsCount  int      `json:"reviews_count"`
	Stars         float64  `json:"stars"`
	IsOutOfStock  bool     `json:"is_out_of_stock"`
}

// Fields is the intermediate bag of raw extractor outputs. Every field is a
// string straight off the page; the empty string means "not found", which
// the assembler distinguishes from a malformed value.
type Fields struct {
	Title             string
	CurrentPriceText  string
	OriginalPriceText string
	Currency          string
	DiscountText      string
	Images            []string
	Description       string
	Category          string
	ReviewsText       string
	StarsText         string
	OutOfStock        bool
}

// ExtractionKind selects how a matched node is turned into text
type ExtractionKind int

const (
	// KindText takes the node's trimmed text
	KindText ExtractionKind = iota
	// KindAttr takes a named attribute's value
	KindAttr
)

// Candidate is one (selector, extraction-kind) pair in a priority chain
type Candidate struct {
	Selector string
	Kind     ExtractionKind
	Attr     string
}
