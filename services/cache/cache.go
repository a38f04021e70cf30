package cache

import (
	"time"
)

// CacheService is the expiring key-value store the fetcher uses for
// bot-block cooldowns. Get on a missing or expired key returns an error.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
