package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeErrorFormatting(t *testing.T) {
	wrapped := stderrors.New("connection reset")
	err := NewNetwork("https://www.amazon.in/dp/B08XYZ1234", "fetch failed", wrapped)

	assert.Contains(t, err.Error(), "[network]")
	assert.Contains(t, err.Error(), "https://www.amazon.in/dp/B08XYZ1234")
	assert.Contains(t, err.Error(), "fetch failed")
	assert.Contains(t, err.Error(), "connection reset")

	bare := NewBotDetected("u", "challenge page")
	assert.Contains(t, bare.Error(), "[bot_detected]")
	assert.NotContains(t, bare.Error(), "<nil>")
}

func TestUnwrap(t *testing.T) {
	inner := stderrors.New("boom")
	err := NewParsing("u", "parse failed", inner)

	assert.ErrorIs(t, err, inner)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeUpstream, TypeOf(NewUpstream("u", "503")))
	assert.Equal(t, ErrorTypeConfiguration, TypeOf(NewConfiguration("bad port", nil)))

	wrapped := fmt.Errorf("outer: %w", NewRateLimit("u", time.Minute))
	assert.Equal(t, ErrorTypeRateLimit, TypeOf(wrapped))

	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsBotDetected(NewBotDetected("u", "m")))
	assert.True(t, IsIncompleteExtraction(NewIncompleteExtraction("u")))
	assert.True(t, IsExternalLookup(NewExternalLookup("u", "m", nil)))
	assert.True(t, IsRateLimit(NewRateLimit("u", time.Second)))

	assert.False(t, IsBotDetected(NewNetwork("u", "m", nil)))
	assert.False(t, IsRateLimit(stderrors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewNetwork("u", "m", nil).IsRetryable())
	assert.True(t, NewUpstream("u", "m").IsRetryable())

	assert.False(t, NewBotDetected("u", "m").IsRetryable())
	assert.False(t, NewProxyAuth("u", "m", nil).IsRetryable())
	assert.False(t, NewParsing("u", "m", nil).IsRetryable())
	assert.False(t, NewIncompleteExtraction("u").IsRetryable())
	assert.False(t, NewRateLimit("u", time.Second).IsRetryable())
	assert.False(t, NewConfiguration("m", nil).IsRetryable())
}

func TestNewSetsTimestamp(t *testing.T) {
	before := time.Now()
	err := New(ErrorTypeNetwork, "u", "m", nil)
	after := time.Now()

	require.NotNil(t, err)
	assert.False(t, err.Time.Before(before))
	assert.False(t, err.Time.After(after))
}
