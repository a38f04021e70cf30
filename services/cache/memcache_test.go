package cache

import (
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	// Test if memcached is available
	_, err := mc.client.Get("test")
	if err != nil && err != memcache.ErrCacheMiss {
		t.Skip("Memcached is not available, skipping test")
	}

	// Set a cooldown marker the way the fetcher does
	err = mc.Set("blocked:www.amazon.in", []byte("blocked"), 1*time.Second)
	assert.NoError(t, err)

	value, err := mc.Get("blocked:www.amazon.in")
	assert.NoError(t, err)
	assert.Equal(t, "blocked", string(value))

	err = mc.Delete("blocked:www.amazon.in")
	assert.NoError(t, err)

	// Deleted keys report a miss
	_, err = mc.Get("blocked:www.amazon.in")
	assert.Error(t, err)
}
