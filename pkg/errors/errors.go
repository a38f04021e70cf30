package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeBotDetected represents a bot-challenge response served instead of content
	ErrorTypeBotDetected ErrorType = "bot_detected"
	// ErrorTypeProxyAuth represents proxy authentication/connection failures
	ErrorTypeProxyAuth ErrorType = "proxy_auth"
	// ErrorTypeUpstream represents upstream 5xx responses
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeNetwork represents generic transport failures
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeIncompleteExtraction means neither price field could be extracted
	ErrorTypeIncompleteExtraction ErrorType = "incomplete_extraction"
	// ErrorTypeExternalLookup represents third-party reference resolution failures
	ErrorTypeExternalLookup ErrorType = "external_lookup"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scrape-specific error
type ScrapeError struct {
	Type    ErrorType
	URL     string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.URL, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if a later attempt might succeed
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeUpstream:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, url, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		URL:     url,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewBotDetected creates a new bot-detection error
func NewBotDetected(url, message string) *ScrapeError {
	return New(ErrorTypeBotDetected, url, message, nil)
}

// NewProxyAuth creates a new proxy error
func NewProxyAuth(url, message string, err error) *ScrapeError {
	return New(ErrorTypeProxyAuth, url, message, err)
}

// NewUpstream creates a new upstream server error
func NewUpstream(url, message string) *ScrapeError {
	return New(ErrorTypeUpstream, url, message, nil)
}

// NewNetwork creates a new network error
func NewNetwork(url, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, url, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(url, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, url, message, err)
}

// NewIncompleteExtraction creates the error for a record with no usable price
func NewIncompleteExtraction(url string) *ScrapeError {
	return New(ErrorTypeIncompleteExtraction, url, "no current or original price could be extracted", nil)
}

// NewExternalLookup creates a new external lookup error
func NewExternalLookup(url, message string, err error) *ScrapeError {
	return New(ErrorTypeExternalLookup, url, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(url string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, url, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the ErrorType of err, or the empty string for foreign errors
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type
	}
	return ""
}

// IsBotDetected reports whether err is a bot-detection error
func IsBotDetected(err error) bool {
	return TypeOf(err) == ErrorTypeBotDetected
}

// IsIncompleteExtraction reports whether err is an incomplete-extraction error
func IsIncompleteExtraction(err error) bool {
	return TypeOf(err) == ErrorTypeIncompleteExtraction
}

// IsExternalLookup reports whether err is an external lookup error
func IsExternalLookup(err error) bool {
	return TypeOf(err) == ErrorTypeExternalLookup
}

// IsRateLimit reports whether err is a rate limit error
func IsRateLimit(err error) bool {
	return TypeOf(err) == ErrorTypeRateLimit
}
