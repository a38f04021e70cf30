package api

import (
	"encoding/json"
	"net/http"

	"pricepeek/scrapeworker/internal/scraper"
	"pricepeek/scrapeworker/logger"
	scrapeerr "pricepeek/scrapeworker/pkg/errors"
	"pricepeek/scrapeworker/services/publisher"
)

// Handlers exposes the scrape pipeline over HTTP
type Handlers struct {
	scraper scraper.ProductScraper
	pub     publisher.Publisher
	log     *logger.Logger
}

// NewHandlers creates the API handlers
func NewHandlers(productScraper scraper.ProductScraper, pub publisher.Publisher, log *logger.Logger) *Handlers {
	return &Handlers{
		scraper: productScraper,
		pub:     pub,
		log:     log,
	}
}

// ScrapeRequest is the body of a scrape request
type ScrapeRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// ScrapeProduct handles POST /api/products: scrape the URL, hand the record
// to the persistence stream and return it to the caller.
func (h *Handlers) ScrapeProduct(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	product, err := h.scraper.ScrapeProduct(r.Context(), req.URL)
	if err != nil {
		h.log.Error().Err(err).Str("url", req.URL).Msg("Scrape failed")
		respondScrapeError(w, err)
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode product")
		return
	}
	if err := h.pub.Publish("b64_product", data); err != nil {
		// The caller still gets the record; persistence will catch up on
		// the next refresh pass.
		h.log.Error().Err(err).Str("url", product.CanonicalURL).Msg("Failed to publish product")
	}

	respondJSON(w, http.StatusOK, product)
}

// Health handles GET /healthz
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondScrapeError maps the scrape error taxonomy onto HTTP statuses
func respondScrapeError(w http.ResponseWriter, err error) {
	errType := scrapeerr.TypeOf(err)

	status := http.StatusInternalServerError
	switch errType {
	case scrapeerr.ErrorTypeBotDetected,
		scrapeerr.ErrorTypeProxyAuth,
		scrapeerr.ErrorTypeUpstream,
		scrapeerr.ErrorTypeNetwork:
		status = http.StatusBadGateway
	case scrapeerr.ErrorTypeIncompleteExtraction, scrapeerr.ErrorTypeParsing:
		status = http.StatusUnprocessableEntity
	case scrapeerr.ErrorTypeRateLimit:
		status = http.StatusTooManyRequests
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Type: string(errType)})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(w, status, payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
