package scraper

import (
	"context"
	"strings"

	"pricepeek/scrapeworker/config"
	"pricepeek/scrapeworker/logger"
	"pricepeek/scrapeworker/services/cache"
)

// ProductScraper is the single entry point the API and refresh worker
// consume
type ProductScraper interface {
	ScrapeProduct(ctx context.Context, productURL string) (*Product, error)
}

// Scraper runs the full pipeline: normalize the URL, fetch through the
// rotating proxy, extract fields, assemble the canonical record and attach
// the optional reference slug.
type Scraper struct {
	cfg      config.Config
	fetcher  *Fetcher
	resolver *Resolver
	log      *logger.Logger
}

var _ ProductScraper = (*Scraper)(nil)

// NewScraper wires the pipeline. cacheSvc may be nil to disable the
// bot-block cooldown; resolver may be nil to skip reference resolution.
func NewScraper(cfg config.Config, cacheSvc cache.CacheService, resolver *Resolver) *Scraper {
	return &Scraper{
		cfg:      cfg,
		fetcher:  NewFetcher(cfg, cacheSvc),
		resolver: resolver,
		log:      logger.ForScraper(),
	}
}

// ScrapeProduct scrapes one product page and returns the canonical record.
// Fetch-level failures and a record with no extractable price are fatal to
// the invocation; everything else degrades to defaults. Reference
// resolution failure never fails the record.
func (s *Scraper) ScrapeProduct(ctx context.Context, productURL string) (*Product, error) {
	rawURL := strings.TrimSpace(productURL)
	canonical := NormalizeProductURL(rawURL)

	s.log.Debug().Str("url", rawURL).Str("canonical", canonical).Msg("Starting scrape")

	doc, err := s.fetcher.Fetch(ctx, canonical)
	if err != nil {
		return nil, err
	}

	fields := ExtractFields(doc)

	product, err := Assemble(rawURL, canonical, fields, s.cfg.FallbackCurrency)
	if err != nil {
		return nil, err
	}

	if s.resolver != nil && product.Title != "" {
		slug, err := s.resolver.ResolveSlug(ctx, product.Title)
		if err != nil {
			s.log.Debug().Err(err).Str("url", canonical).Msg("Reference resolution failed")
		} else {
			product.ReferenceSlug = slug
		}
	}

	s.log.Info().
		Str("url", canonical).
		Float64("current_price", product.CurrentPrice).
		Str("currency", product.Currency).
		Bool("out_of_stock", product.IsOutOfStock).
		Msg("Scraped product")

	return product, nil
}
