package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "brd.superproxy.io", cfg.ProxyHost)
	assert.Equal(t, 22225, cfg.ProxyPort)
	assert.Equal(t, 45*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2000*time.Millisecond, cfg.JitterMin)
	assert.Equal(t, 5000*time.Millisecond, cfg.JitterMax)
	assert.Equal(t, 10000, cfg.MinBodyBytes)
	assert.Equal(t, 0.5, cfg.HostRate)
	assert.Equal(t, 300*time.Second, cfg.BlockCooldown)
	assert.Equal(t, "$", cfg.FallbackCurrency)
	assert.Equal(t, "https://serpapi.com/search.json", cfg.SearchAPIURL)
	assert.Equal(t, "https://pricehistoryapp.com", cfg.PriceHistoryBase)
	assert.Equal(t, "products", cfg.RedisStream)
	assert.Equal(t, "tracked:urls", cfg.TrackedURLKey)
	assert.Equal(t, ":8080", cfg.APIAddr)
	assert.Equal(t, 100*time.Second, cfg.APIWindow)
	assert.Equal(t, 4, cfg.APIWindowLimit)
	assert.Equal(t, time.Hour, cfg.RefreshInterval)
	assert.Equal(t, 3, cfg.RefreshConcurrency)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PROXY_HOST", "proxy.example.com")
	t.Setenv("PROXY_PORT", "8080")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "30")
	t.Setenv("JITTER_MIN_MS", "100")
	t.Setenv("JITTER_MAX_MS", "200")
	t.Setenv("FALLBACK_CURRENCY", "₹")
	t.Setenv("REFRESH_CONCURRENCY", "5")

	cfg := LoadConfig()

	assert.Equal(t, "proxy.example.com", cfg.ProxyHost)
	assert.Equal(t, 8080, cfg.ProxyPort)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.JitterMin)
	assert.Equal(t, 200*time.Millisecond, cfg.JitterMax)
	assert.Equal(t, "₹", cfg.FallbackCurrency)
	assert.Equal(t, 5, cfg.RefreshConcurrency)
}

func TestLoadConfigInvalidNumberFallsBack(t *testing.T) {
	t.Setenv("PROXY_PORT", "not-a-number")
	t.Setenv("HOST_RATE_PER_SECOND", "fast")

	cfg := LoadConfig()
	assert.Equal(t, 22225, cfg.ProxyPort)
	assert.Equal(t, 0.5, cfg.HostRate)
}

func TestValidate(t *testing.T) {
	valid := LoadConfig()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"proxy port zero", func(c *Config) { c.ProxyPort = 0 }},
		{"proxy port out of range", func(c *Config) { c.ProxyPort = 70000 }},
		{"jitter max below min", func(c *Config) { c.JitterMin = time.Second; c.JitterMax = 0 }},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"negative min body bytes", func(c *Config) { c.MinBodyBytes = -1 }},
		{"zero stream count", func(c *Config) { c.RedisStreamCount = 0 }},
		{"zero api window limit", func(c *Config) { c.APIWindowLimit = 0 }},
		{"zero refresh concurrency", func(c *Config) { c.RefreshConcurrency = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestProxyEnabled(t *testing.T) {
	cfg := Config{}
	assert.False(t, cfg.ProxyEnabled())

	cfg.ProxyUsername = "user"
	assert.False(t, cfg.ProxyEnabled())

	cfg.ProxyPassword = "pass"
	assert.True(t, cfg.ProxyEnabled())
}
