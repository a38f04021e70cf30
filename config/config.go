package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Proxy configuration (rotating-session super proxy)
	ProxyHost     string
	ProxyPort     int
	ProxyUsername string
	ProxyPassword string

	// Fetch behaviour
	FetchTimeout  time.Duration
	JitterMin     time.Duration
	JitterMax     time.Duration
	MinBodyBytes  int
	HostRate      float64
	HostBurst     int
	BlockCooldown time.Duration

	// Extraction defaults
	FallbackCurrency string

	// External reference resolution
	SearchAPIKey     string
	SearchAPIURL     string
	PriceHistoryBase string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int
	TrackedURLKey        string

	// Memcache configuration
	MemcacheAddr string

	// API server
	APIAddr        string
	APIWindow      time.Duration
	APIWindowLimit int

	// Refresh worker
	RefreshInterval    time.Duration
	RefreshConcurrency int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	return Config{
		ProxyHost:     getEnv("PROXY_HOST", "brd.superproxy.io"),
		ProxyPort:     getEnvInt("PROXY_PORT", 22225),
		ProxyUsername: getEnv("PROXY_USERNAME", ""),
		ProxyPassword: getEnv("PROXY_PASSWORD", ""),

		FetchTimeout:  getEnvDuration("FETCH_TIMEOUT_SECONDS", 45) * time.Second,
		JitterMin:     getEnvDuration("JITTER_MIN_MS", 2000) * time.Millisecond,
		JitterMax:     getEnvDuration("JITTER_MAX_MS", 5000) * time.Millisecond,
		MinBodyBytes:  getEnvInt("MIN_BODY_BYTES", 10000),
		HostRate:      getEnvFloat("HOST_RATE_PER_SECOND", 0.5),
		HostBurst:     getEnvInt("HOST_BURST", 1),
		BlockCooldown: getEnvDuration("BLOCK_COOLDOWN_SECONDS", 300) * time.Second,

		FallbackCurrency: getEnv("FALLBACK_CURRENCY", "$"),

		SearchAPIKey:     getEnv("SEARCH_API_KEY", ""),
		SearchAPIURL:     getEnv("SEARCH_API_URL", "https://serpapi.com/search.json"),
		PriceHistoryBase: getEnv("PRICE_HISTORY_BASE", "https://pricehistoryapp.com"),

		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "products"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 500),
		TrackedURLKey:        getEnv("TRACKED_URL_KEY", "tracked:urls"),

		MemcacheAddr: getEnv("MEMCACHE_ADDR", "localhost:11211"),

		APIAddr:        getEnv("API_ADDR", ":8080"),
		APIWindow:      getEnvDuration("API_WINDOW_SECONDS", 100) * time.Second,
		APIWindowLimit: getEnvInt("API_WINDOW_LIMIT", 4),

		RefreshInterval:    getEnvDuration("REFRESH_INTERVAL_SECONDS", 3600) * time.Second,
		RefreshConcurrency: getEnvInt("REFRESH_CONCURRENCY", 3),

		Environment: getEnv("SCRAPEWORKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values that cannot work at runtime
func (c *Config) Validate() error {
	if c.ProxyPort <= 0 || c.ProxyPort > 65535 {
		return fmt.Errorf("invalid proxy port: %d", c.ProxyPort)
	}
	if c.JitterMin < 0 || c.JitterMax < c.JitterMin {
		return fmt.Errorf("invalid jitter bounds: min=%v max=%v", c.JitterMin, c.JitterMax)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive: %v", c.FetchTimeout)
	}
	if c.MinBodyBytes < 0 {
		return fmt.Errorf("min body bytes must not be negative: %d", c.MinBodyBytes)
	}
	if c.RedisStreamCount <= 0 {
		return fmt.Errorf("redis stream count must be positive: %d", c.RedisStreamCount)
	}
	if c.APIWindowLimit <= 0 || c.APIWindow <= 0 {
		return fmt.Errorf("invalid api window: limit=%d window=%v", c.APIWindowLimit, c.APIWindow)
	}
	if c.RefreshConcurrency <= 0 {
		return fmt.Errorf("refresh concurrency must be positive: %d", c.RefreshConcurrency)
	}
	return nil
}

// ProxyEnabled reports whether outbound requests should go through the proxy
func (c *Config) ProxyEnabled() bool {
	return c.ProxyUsername != "" && c.ProxyPassword != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue))
}
