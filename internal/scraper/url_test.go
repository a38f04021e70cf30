package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProductURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "dp path with tracking params",
			input:    "https://amazon.in/dp/B08XYZ1234?ref=xyz",
			expected: "https://www.amazon.in/dp/B08XYZ1234",
		},
		{
			name:     "gp product path",
			input:    "https://www.amazon.com/gp/product/B0ABCDEF12?tag=aff-21&psc=1",
			expected: "https://www.amazon.com/dp/B0ABCDEF12",
		},
		{
			name:     "product path",
			input:    "https://www.amazon.co.uk/product/B0ABCDEF12",
			expected: "https://www.amazon.co.uk/dp/B0ABCDEF12",
		},
		{
			name:     "bare ID segment",
			input:    "https://www.amazon.in/some-product-name/B0XYZABC12?th=1",
			expected: "https://www.amazon.in/dp/B0XYZABC12",
		},
		{
			name:     "unknown domain falls back to com",
			input:    "https://amzn.to/dp/B08XYZ1234",
			expected: "https://www.amazon.com/dp/B08XYZ1234",
		},
		{
			name:     "no ID strips query and fragment",
			input:    "https://example.org/some/page?q=1#frag",
			expected: "https://example.org/some/page",
		},
		{
			name:     "no ID no query unchanged",
			input:    "https://example.org/some/page",
			expected: "https://example.org/some/page",
		},
		{
			name:     "whitespace trimmed",
			input:    "  https://amazon.in/dp/B08XYZ1234  ",
			expected: "https://www.amazon.in/dp/B08XYZ1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeProductURL(tt.input))
		})
	}
}

func TestNormalizeProductURLPrefersDpOverBareSegment(t *testing.T) {
	// A 10-char path segment earlier in the URL must not shadow the /dp/ ID
	url := "https://www.amazon.in/categoryXY/dp/B08XYZ1234"
	assert.Equal(t, "https://www.amazon.in/dp/B08XYZ1234", NormalizeProductURL(url))
}
