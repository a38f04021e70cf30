package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"pricepeek/scrapeworker/logger"
	"pricepeek/scrapeworker/services/ratelimit"
)

// NewRouter builds the API router with CORS, request ids, request logging
// and the client rate limit on the scrape endpoint.
func NewRouter(handlers *Handlers, limiter ratelimit.Limiter, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(RequestID)
	r.Use(RequestLogger(log))

	r.Get("/healthz", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(limiter, log))
		r.Post("/products", handlers.ScrapeProduct)
	})

	return r
}
