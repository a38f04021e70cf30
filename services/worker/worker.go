package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"pricepeek/scrapeworker/internal/scraper"
	"pricepeek/scrapeworker/logger"
	"pricepeek/scrapeworker/services/publisher"
)

// Field key records are published under
const recordKey = "b64_product"

// TrackedURLSource yields the product URLs due for a refresh pass
type TrackedURLSource interface {
	TrackedURLs(ctx context.Context) ([]string, error)
}

// RedisURLSource reads tracked URLs from a Redis set maintained by the
// persistence collaborator
type RedisURLSource struct {
	client *redis.Client
	key    string
}

var _ TrackedURLSource = (*RedisURLSource)(nil)

// NewRedisURLSource creates a source reading members of the given set key
func NewRedisURLSource(client *redis.Client, key string) *RedisURLSource {
	return &RedisURLSource{client: client, key: key}
}

// TrackedURLs returns all members of the tracked set
func (r *RedisURLSource) TrackedURLs(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, r.key).Result()
}

// Worker periodically re-scrapes every tracked product and publishes the
// fresh canonical records for the persistence collaborator to append.
type Worker struct {
	ctx         context.Context
	source      TrackedURLSource
	scraper     scraper.ProductScraper
	publisher   publisher.Publisher
	log         *logger.Logger
	interval    time.Duration
	concurrency int
}

// NewWorker creates a new refresh worker
func NewWorker(
	ctx context.Context,
	source TrackedURLSource,
	productScraper scraper.ProductScraper,
	pub publisher.Publisher,
	interval time.Duration,
	concurrency int,
) *Worker {
	return &Worker{
		ctx:         ctx,
		source:      source,
		scraper:     productScraper,
		publisher:   pub,
		log:         logger.ForWorker(),
		interval:    interval,
		concurrency: concurrency,
	}
}

// Start runs refresh passes until the context is cancelled
func (w *Worker) Start() error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		w.runPass()
		w.log.Info().Dur("elapsed", time.Since(start)).Msg("Refresh pass complete")

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-ticker.C:
		}
	}
}

// runPass scrapes every tracked URL with bounded concurrency and trims the
// streams afterwards. One URL failing never stops the pass.
func (w *Worker) runPass() {
	urls, err := w.source.TrackedURLs(w.ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to load tracked URLs")
		return
	}
	if len(urls) == 0 {
		w.log.Debug().Msg("No tracked URLs")
		return
	}

	w.log.Info().Int("count", len(urls)).Msg("Refreshing tracked products")

	sem := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			w.scrapeAndPublish(url)
		}(url)
	}
	wg.Wait()

	if err := w.publisher.TrimStreams(); err != nil {
		w.log.Error().Err(err).Msg("Failed to trim streams")
	}
}

func (w *Worker) scrapeAndPublish(url string) {
	product, err := w.scraper.ScrapeProduct(w.ctx, url)
	if err != nil {
		w.log.Error().Err(err).Str("url", url).Msg("Refresh scrape failed")
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		w.log.Error().Err(err).Str("url", url).Msg("Failed to marshal product")
		return
	}

	if err := w.publisher.Publish(recordKey, data); err != nil {
		w.log.Error().Err(err).Str("url", url).Msg("Failed to publish product")
		return
	}

	w.log.Debug().Str("url", product.CanonicalURL).Float64("price", product.CurrentPrice).Msg("Published refreshed product")
}
