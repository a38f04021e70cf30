package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pricepeek/scrapeworker/logger"
	"pricepeek/scrapeworker/services/ratelimit"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns a fresh id to every request for log correlation
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request with method, path and duration
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", w.Header().Get(requestIDHeader)).
				Dur("duration", time.Since(start)).
				Msg("Request handled")
		})
	}
}

// RateLimit rejects callers that exhausted their fixed window. The identity
// is the client network address, preferring the forwarded address so all
// instances behind a proxy count the same caller together.
func RateLimit(limiter ratelimit.Limiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := clientIP(r)

			allowed, remaining, err := limiter.Allow(r.Context(), identity)
			if err != nil {
				// A broken limiter backend should not take the API down
				log.Warn().Err(err).Msg("Rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-Ratelimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				log.Warn().Str("client", identity).Msg("Rate limit exceeded")
				respondError(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the original client
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
