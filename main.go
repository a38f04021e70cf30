package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"pricepeek/scrapeworker/config"
	"pricepeek/scrapeworker/internal/api"
	"pricepeek/scrapeworker/internal/scraper"
	"pricepeek/scrapeworker/logger"
	"pricepeek/scrapeworker/services/cache"
	"pricepeek/scrapeworker/services/publisher"
	"pricepeek/scrapeworker/services/ratelimit"
	"pricepeek/scrapeworker/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("refresh_interval", cfg.RefreshInterval).
		Bool("proxy_enabled", cfg.ProxyEnabled()).
		Msg("Starting scrape worker")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	// Build the scrape pipeline
	resolver := scraper.NewResolver(cfg)
	productScraper := scraper.NewScraper(cfg, services.Cache, resolver)

	// Refresh worker
	source := worker.NewRedisURLSource(services.Redis, cfg.TrackedURLKey)
	w := worker.NewWorker(ctx, source, productScraper, services.Publisher, cfg.RefreshInterval, cfg.RefreshConcurrency)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting refresh worker")
		workerDone <- w.Start()
	}()

	// HTTP API
	limiter := ratelimit.NewFixedWindow(services.Redis, cfg.APIWindowLimit, cfg.APIWindow)
	handlers := api.NewHandlers(productScraper, services.Publisher, logger.ForAPI())
	server := &http.Server{
		Addr:    cfg.APIAddr,
		Handler: api.NewRouter(handlers, limiter, logger.ForAPI()),
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.APIAddr).Msg("Starting API server")
		serverDone <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or component failure
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-workerDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Worker exited with error")
		}
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("API server exited with error")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server shutdown failed")
	}
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Redis     *redis.Client
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Redis != nil {
		s.Redis.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg config.Config) *Services {
	services := &Services{}

	services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	services.Publisher = publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)

	services.Redis = redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	return services
}
