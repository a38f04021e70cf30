package scraper

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"pricepeek/scrapeworker/config"
	"pricepeek/scrapeworker/logger"
	scrapeerr "pricepeek/scrapeworker/pkg/errors"
	"pricepeek/scrapeworker/services/cache"
)

// Challenge markers the marketplace serves instead of real content.
// Matched case-sensitively against the response body.
var botChallengeMarkers = []string{
	"Robot Check",
	"To discuss automated access",
	"Enter the characters you see below",
	"Sorry, we just need to make sure you're not a robot",
}

// Fetcher performs the outbound request through a rotating-session proxy.
// Every call routes through a fresh proxy session, so there is no session
// affinity and no shared state between concurrent fetches beyond the
// per-host limiter.
type Fetcher struct {
	cfg      config.Config
	cache    cache.CacheService
	log      *logger.Logger
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher creates a Fetcher. cacheSvc may be nil, which disables the
// bot-block cooldown.
func NewFetcher(cfg config.Config, cacheSvc cache.CacheService) *Fetcher {
	return &Fetcher{
		cfg:      cfg,
		cache:    cacheSvc,
		log:      logger.ForScraper(),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch GETs the URL and returns the parsed document. The call sleeps for a
// randomized jitter before the request, is bounded by the configured
// timeout, and classifies challenge pages as bot detection instead of
// returning partial data.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, scrapeerr.NewNetwork(pageURL, "invalid URL", err)
	}
	host := parsed.Host

	if f.cache != nil {
		if _, err := f.cache.Get(cooldownKey(host)); err == nil {
			return nil, scrapeerr.NewRateLimit(pageURL, f.cfg.BlockCooldown)
		}
	}

	if err := f.hostLimiter(host).Wait(ctx); err != nil {
		return nil, scrapeerr.NewNetwork(pageURL, "cancelled while waiting for host slot", err)
	}

	if err := f.jitter(ctx); err != nil {
		return nil, scrapeerr.NewNetwork(pageURL, "cancelled during jitter delay", err)
	}

	body, err := f.doRequest(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if marker, blocked := classifyBlocked(body, f.cfg.MinBodyBytes); blocked {
		if f.cache != nil {
			if setErr := f.cache.Set(cooldownKey(host), []byte("blocked"), f.cfg.BlockCooldown); setErr != nil {
				f.log.Warn().Err(setErr).Str("host", host).Msg("Failed to set block cooldown")
			}
		}
		f.log.Warn().Str("url", pageURL).Str("marker", marker).Msg("Bot detection triggered")
		return nil, scrapeerr.NewBotDetected(pageURL, "marketplace detected automated access: "+marker)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, scrapeerr.NewParsing(pageURL, "failed to parse HTML", err)
	}
	return doc, nil
}

func (f *Fetcher) doRequest(ctx context.Context, pageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, scrapeerr.NewNetwork(pageURL, "failed to create request", err)
	}
	setBrowserHeaders(req)

	client := f.newSessionClient()
	resp, err := client.Do(req)
	if err != nil {
		return nil, mapTransportError(pageURL, err)
	}
	defer resp.Body.Close()

	if err := mapStatusError(pageURL, resp.StatusCode); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scrapeerr.NewNetwork(pageURL, "failed to read response body", err)
	}

	return toUTF8(raw, resp.Header.Get("Content-Type"))
}

// newSessionClient builds a client whose proxy credentials carry a fresh
// session token, so consecutive calls exit through different proxy sessions.
// TLS verification stays off for the proxy hop only.
func (f *Fetcher) newSessionClient() *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}

	if f.cfg.ProxyEnabled() {
		session := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		proxyURL := &url.URL{
			Scheme: "http",
			User:   url.UserPassword(fmt.Sprintf("%s-session-%s", f.cfg.ProxyUsername, session), f.cfg.ProxyPassword),
			Host:   fmt.Sprintf("%s:%d", f.cfg.ProxyHost, f.cfg.ProxyPort),
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   f.cfg.FetchTimeout,
	}
}

// jitter sleeps for a random duration inside the configured bounds. The
// sleep is context-aware so an abandoned scrape does not linger.
func (f *Fetcher) jitter(ctx context.Context) error {
	delta := f.cfg.JitterMax - f.cfg.JitterMin
	delay := f.cfg.JitterMin
	if delta > 0 {
		delay += time.Duration(mathrand.Int63n(int64(delta)))
	}
	if delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (f *Fetcher) hostLimiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(f.cfg.HostRate), f.cfg.HostBurst)
		f.limiters[host] = limiter
	}
	return limiter
}

// classifyBlocked reports whether the body is a challenge page: either a
// known marker is present or the body is implausibly small for a real
// product page. Returns the triggering marker for logging.
func classifyBlocked(body []byte, minBytes int) (string, bool) {
	for _, marker := range botChallengeMarkers {
		if bytes.Contains(body, []byte(marker)) {
			return marker, true
		}
	}
	if len(body) < minBytes {
		return fmt.Sprintf("body below %d bytes", minBytes), true
	}
	return "", false
}

func mapStatusError(pageURL string, status int) error {
	switch {
	case status == http.StatusServiceUnavailable:
		return scrapeerr.NewUpstream(pageURL, "marketplace blocked the request (503); try again later or check your proxy configuration")
	case status == http.StatusInternalServerError:
		return scrapeerr.NewUpstream(pageURL, "marketplace server error (500); the URL might be invalid or temporarily unavailable")
	case status != http.StatusOK:
		return scrapeerr.NewNetwork(pageURL, fmt.Sprintf("unexpected status code: %d", status), nil)
	}
	return nil
}

func mapTransportError(pageURL string, err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return scrapeerr.NewProxyAuth(pageURL, "connection refused; check your proxy configuration", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return scrapeerr.NewNetwork(pageURL, "fetch timed out", err)
	}
	return scrapeerr.NewNetwork(pageURL, "error in fetching product page", err)
}

// toUTF8 normalizes the body encoding so goquery sees valid UTF-8
func toUTF8(raw []byte, contentType string) ([]byte, error) {
	encoding, name, _ := charset.DetermineEncoding(raw, contentType)
	if name == "utf-8" || name == "UTF-8" {
		return raw, nil
	}

	decoded, err := io.ReadAll(encoding.NewDecoder().Reader(bytes.NewReader(raw)))
	if err != nil {
		return nil, scrapeerr.NewNetwork("", "failed to convert body to UTF-8", err)
	}
	return decoded, nil
}

func cooldownKey(host string) string {
	return "blocked:" + host
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Sec-Ch-Ua", `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`)
	req.Header.Set("Sec-Ch-Ua-Mobile", "?0")
	req.Header.Set("Sec-Ch-Ua-Platform", `"macOS"`)
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
}
