package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"pricepeek/scrapeworker/config"
	"pricepeek/scrapeworker/logger"
	scrapeerr "pricepeek/scrapeworker/pkg/errors"
)

// Resolver turns an extracted product title into the slug of the product's
// page on the third-party price-history site, and optionally pulls that
// site's aggregated price data. Both are best-effort: a canonical record is
// complete without them.
type Resolver struct {
	cfg    config.Config
	client *http.Client
	log    *logger.Logger
}

// NewResolver creates a Resolver using the configured search API
func NewResolver(cfg config.Config) *Resolver {
	return &Resolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		log:    logger.ForScraper(),
	}
}

// BuildQuery derives the site-search query from a product title: the first
// seven words, punctuation stripped, whitespace turned into hyphens.
func BuildQuery(title string) string {
	words := strings.Fields(title)
	if len(words) > 7 {
		words = words[:7]
	}
	query := strings.Join(words, " ")
	query = strings.NewReplacer(",", "", "|", "").Replace(query)
	return strings.Join(strings.Fields(query), "-")
}

type searchResponse struct {
	OrganicResults []struct {
		Link string `json:"link"`
	} `json:"organic_results"`
}

// ResolveSlug looks up the product on the price-history site through the
// search API and returns the slug portion of the first organic result.
func (r *Resolver) ResolveSlug(ctx context.Context, title string) (string, error) {
	if r.cfg.SearchAPIKey == "" {
		return "", scrapeerr.NewExternalLookup("", "search API key not configured", nil)
	}

	query := BuildQuery(title)
	if query == "" {
		return "", scrapeerr.NewExternalLookup("", "empty query derived from title", nil)
	}

	params := url.Values{}
	params.Set("api_key", r.cfg.SearchAPIKey)
	params.Set("q", query+" site:"+siteDomain(r.cfg.PriceHistoryBase))
	searchURL := r.cfg.SearchAPIURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", scrapeerr.NewExternalLookup(searchURL, "failed to create search request", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", scrapeerr.NewExternalLookup(searchURL, "search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", scrapeerr.NewExternalLookup(searchURL, fmt.Sprintf("search API status %d", resp.StatusCode), nil)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", scrapeerr.NewExternalLookup(searchURL, "failed to decode search response", err)
	}
	if len(parsed.OrganicResults) == 0 {
		return "", scrapeerr.NewExternalLookup(searchURL, "no organic results", nil)
	}

	slug := SlugFromReferenceURL(parsed.OrganicResults[0].Link)
	if slug == "" {
		return "", scrapeerr.NewExternalLookup(searchURL, "result link has no slug path", nil)
	}
	return slug, nil
}

// SlugFromReferenceURL takes everything after the scheme, host and leading
// path segment of a reference URL (path parts from index 4 of the
// slash-split form).
func SlugFromReferenceURL(link string) string {
	parts := strings.Split(link, "/")
	if len(parts) <= 4 {
		return ""
	}
	return strings.Join(parts[4:], "/")
}

func siteDomain(base string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(base, "https://"), "http://")
	return strings.TrimSuffix(trimmed, "/")
}

// EnhancedData is the aggregated view the price-history site holds for a
// product, plus the buying recommendation derived from it.
type EnhancedData struct {
	CurrentPrice   float64 `json:"current_price"`
	LowestPrice    float64 `json:"lowest_price"`
	HighestPrice   float64 `json:"highest_price"`
	AveragePrice   float64 `json:"average_price"`
	Discount       float64 `json:"discount"`
	DropChances    float64 `json:"drop_chances"`
	InStock        bool    `json:"in_stock"`
	Store          string  `json:"store"`
	Category       string  `json:"category"`
	Rating         float64 `json:"rating"`
	RatingCount    int     `json:"rating_count"`
	Recommendation string  `json:"recommendation"`
	Tier           string  `json:"tier"`
}

var nextDataRe = regexp.MustCompile(`<script id="__NEXT_DATA__"[^>]*>([^<]*)</script>`)

type nextDataPayload struct {
	Props struct {
		PageProps struct {
			OgProduct struct {
				Price        float64 `json:"price"`
				LowestPrice  float64 `json:"lowest_price"`
				HighestPrice float64 `json:"highest_price"`
				AveragePrice float64 `json:"average_price"`
				Discount     float64 `json:"discount"`
				DropChances  float64 `json:"drop_chances"`
				InStock      bool    `json:"in_stock"`
				Rating       float64 `json:"rating"`
				RatingCount  int     `json:"rating_count"`
				Store        struct {
					Name string `json:"name"`
				} `json:"store"`
				Category struct {
					Name string `json:"name"`
				} `json:"category"`
			} `json:"ogProduct"`
		} `json:"pageProps"`
	} `json:"props"`
}

// EnhancedPriceData fetches the price-history site's product page and
// extracts the JSON payload embedded in it.
func (r *Resolver) EnhancedPriceData(ctx context.Context, slug string) (*EnhancedData, error) {
	if slug == "" {
		return nil, scrapeerr.NewExternalLookup("", "no reference slug", nil)
	}

	pageURL := strings.TrimSuffix(r.cfg.PriceHistoryBase, "/") + "/product/" + slug
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, scrapeerr.NewExternalLookup(pageURL, "failed to create request", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, scrapeerr.NewExternalLookup(pageURL, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scrapeerr.NewExternalLookup(pageURL, "failed to read body", err)
	}

	return ParseEnhancedData(pageURL, body)
}

// ParseEnhancedData extracts the embedded product JSON from a price-history
// page body and derives the buying recommendation.
func ParseEnhancedData(pageURL string, body []byte) (*EnhancedData, error) {
	m := nextDataRe.FindSubmatch(body)
	if m == nil {
		return nil, scrapeerr.NewExternalLookup(pageURL, "no embedded product data found", nil)
	}

	var payload nextDataPayload
	if err := json.Unmarshal(m[1], &payload); err != nil {
		return nil, scrapeerr.NewExternalLookup(pageURL, "failed to decode embedded product data", err)
	}

	og := payload.Props.PageProps.OgProduct
	data := &EnhancedData{
		CurrentPrice: og.Price,
		LowestPrice:  og.LowestPrice,
		HighestPrice: og.HighestPrice,
		AveragePrice: og.AveragePrice,
		Discount:     og.Discount,
		DropChances:  og.DropChances,
		InStock:      og.InStock,
		Store:        og.Store.Name,
		Category:     og.Category.Name,
		Rating:       og.Rating,
		RatingCount:  og.RatingCount,
	}
	data.Recommendation, data.Tier = recommend(data)
	return data, nil
}

// recommend ranks how good a moment this is to buy, from the aggregated
// stats. Tiers mirror how the stats relate to the historical lowest and
// average prices.
func recommend(d *EnhancedData) (string, string) {
	switch {
	case d.CurrentPrice <= d.LowestPrice*1.05:
		return "Excellent time to buy: price is at or near its lowest.", "excellent"
	case d.CurrentPrice <= d.AveragePrice*0.9:
		return "Good time to buy: price is below average.", "good"
	case d.Discount >= 20:
		return "Decent time to buy: good discount available.", "decent"
	case d.DropChances >= 70:
		return "Consider waiting: high chance of a price drop soon.", "wait"
	case d.CurrentPrice >= d.AveragePrice*1.1:
		return "Consider waiting: price is above average.", "wait"
	default:
		return "Moderate time to buy: price is average.", "moderate"
	}
}
