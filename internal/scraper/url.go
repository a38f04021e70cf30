package scraper

import (
	"regexp"
	"strings"
)

// Marketplace product IDs are fixed-length alphanumeric tokens (10 chars on
// Amazon). The path shapes are tried in order; the bare-token alternative is
// last because it can match inside unrelated path segments.
var productIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Za-z0-9]{10})`),
	regexp.MustCompile(`/gp/product/([A-Za-z0-9]{10})`),
	regexp.MustCompile(`/product/([A-Za-z0-9]{10})`),
	regexp.MustCompile(`/([A-Za-z0-9]{10})(?:[/?]|$)`),
}

// TLD checked by substring against the input URL; first match wins
var marketplaceDomains = []struct {
	marker string
	domain string
}{
	{".in", "amazon.in"},
	{".co.uk", "amazon.co.uk"},
	{".com", "amazon.com"},
}

// NormalizeProductURL canonicalizes a marketplace product URL to the stable
// https://www.{domain}/dp/{id} form, stripping tracking parameters. When no
// product ID is recognizable it returns the URL with query and fragment
// removed; it never fails.
func NormalizeProductURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)

	var id string
	for _, pattern := range productIDPatterns {
		if m := pattern.FindStringSubmatch(trimmed); m != nil {
			id = m[1]
			break
		}
	}

	if id == "" {
		return stripQuery(trimmed)
	}

	domain := "amazon.com"
	for _, d := range marketplaceDomains {
		if strings.Contains(trimmed, d.marker) {
			domain = d.domain
			break
		}
	}

	return "https://www." + domain + "/dp/" + id
}

func stripQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
