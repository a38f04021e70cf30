package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricepeek/scrapeworker/internal/scraper"
	"pricepeek/scrapeworker/services/publisher"
)

type stubURLSource struct {
	urls []string
	err  error
}

var _ TrackedURLSource = (*stubURLSource)(nil)

func (s *stubURLSource) TrackedURLs(_ context.Context) ([]string, error) {
	return s.urls, s.err
}

type stubScraper struct {
	mu      sync.Mutex
	scraped []string
	failOn  map[string]error
}

var _ scraper.ProductScraper = (*stubScraper)(nil)

func (s *stubScraper) ScrapeProduct(_ context.Context, productURL string) (*scraper.Product, error) {
	s.mu.Lock()
	s.scraped = append(s.scraped, productURL)
	s.mu.Unlock()

	if err, ok := s.failOn[productURL]; ok {
		return nil, err
	}
	return &scraper.Product{
		URL:          productURL,
		CanonicalURL: productURL,
		CurrentPrice: 2999,
		Currency:     "₹",
	}, nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published [][]byte
	keys      []string
	trims     int
}

var _ publisher.Publisher = (*recordingPublisher)(nil)

func (p *recordingPublisher) Publish(key string, message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.published = append(p.published, message)
	return nil
}

func (p *recordingPublisher) TrimStreams() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trims++
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestRunPassPublishesEveryTrackedProduct(t *testing.T) {
	source := &stubURLSource{urls: []string{
		"https://www.amazon.in/dp/B08XYZ1234",
		"https://www.amazon.in/dp/B09ABC5678",
	}}
	scr := &stubScraper{}
	pub := &recordingPublisher{}

	w := NewWorker(context.Background(), source, scr, pub, time.Hour, 2)
	w.runPass()

	assert.Len(t, scr.scraped, 2)
	require.Len(t, pub.published, 2)
	assert.Equal(t, []string{"b64_product", "b64_product"}, pub.keys)
	assert.Equal(t, 1, pub.trims)

	var product scraper.Product
	require.NoError(t, json.Unmarshal(pub.published[0], &product))
	assert.Equal(t, 2999.0, product.CurrentPrice)
}

func TestRunPassSkipsFailedScrapes(t *testing.T) {
	source := &stubURLSource{urls: []string{"good-url", "bad-url"}}
	scr := &stubScraper{failOn: map[string]error{"bad-url": errors.New("blocked")}}
	pub := &recordingPublisher{}

	w := NewWorker(context.Background(), source, scr, pub, time.Hour, 1)
	w.runPass()

	assert.Len(t, scr.scraped, 2)
	assert.Len(t, pub.published, 1)
	assert.Equal(t, 1, pub.trims)
}

func TestRunPassSourceErrorAbortsPass(t *testing.T) {
	source := &stubURLSource{err: errors.New("redis down")}
	scr := &stubScraper{}
	pub := &recordingPublisher{}

	w := NewWorker(context.Background(), source, scr, pub, time.Hour, 1)
	w.runPass()

	assert.Empty(t, scr.scraped)
	assert.Empty(t, pub.published)
	assert.Equal(t, 0, pub.trims)
}

func TestRunPassNoTrackedURLs(t *testing.T) {
	source := &stubURLSource{}
	pub := &recordingPublisher{}

	w := NewWorker(context.Background(), source, &stubScraper{}, pub, time.Hour, 1)
	w.runPass()

	assert.Empty(t, pub.published)
	assert.Equal(t, 0, pub.trims)
}

func TestStartStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &stubURLSource{urls: []string{"url"}}
	pub := &recordingPublisher{}

	w := NewWorker(ctx, source, &stubScraper{}, pub, 10*time.Millisecond, 1)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
