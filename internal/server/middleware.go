package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openpantry/pantryd/internal/auth"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers and records request metrics.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		// Cache preflight results for a day to reduce OPTIONS traffic
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next(rw, r)
		duration := time.Since(start)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, http.StatusText(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration.Seconds())
	}
}

// authMiddleware verifies the bearer token when authentication is
// enabled. With no verifier configured all requests pass through.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.verifier == nil {
			next(w, r)
			return
		}

		token, err := auth.FromAuthorizationHeader(r.Header.Get("Authorization"))
		if err == nil {
			_, err = s.verifier.Verify(token)
		}
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="pantry"`)
			s.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid bearer token")
			return
		}

		next(w, r)
	}
}

// rateLimitMiddleware enforces per-client rate limits and quotas.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next(w, r)
			return
		}

		clientID := getClientIP(r)

		var dataSize int64
		if r.ContentLength > 0 {
			dataSize = r.ContentLength
		}

		if err := s.rateLimiter.Check(clientID, dataSize); err != nil {
			var rerr *RateLimitError
			var qerr *QuotaExceededError
			switch {
			case errors.As(err, &rerr):
				rateLimitHits.WithLabelValues(rerr.Type).Inc()
			case errors.As(err, &qerr):
				rateLimitHits.WithLabelValues(qerr.Type).Inc()
			}
			s.handleRateLimitError(w, err)
			return
		}

		next(w, r)
	}
}

// handleRateLimitError writes headers and a JSON body for rate limit
// and quota violations.
func (s *Server) handleRateLimitError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var rerr *RateLimitError
	var qerr *QuotaExceededError
	switch {
	case errors.As(err, &rerr):
		w.Header().Set("X-RateLimit-Type", rerr.Type)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rerr.Limit))
		w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rerr.RetryAfter.Seconds()))
		w.WriteHeader(http.StatusTooManyRequests)
		response := map[string]any{
			"error":       "rate_limit_exceeded",
			"type":        rerr.Type,
			"limit":       rerr.Limit,
			"retry_after": rerr.RetryAfter.Seconds(),
			"message":     rerr.Error(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			s.logger.Error("failed to encode rate limit response", "error", err)
		}
	case errors.As(err, &qerr):
		w.Header().Set("X-Quota-Type", qerr.Type)
		w.Header().Set("X-Quota-Limit", strconv.FormatInt(qerr.Limit, 10))
		w.Header().Set("X-Quota-Used", strconv.FormatInt(qerr.Used, 10))
		w.Header().Set("X-Quota-Resets", qerr.Resets.Format(http.TimeFormat))
		w.WriteHeader(http.StatusTooManyRequests)
		response := map[string]any{
			"error":   "quota_exceeded",
			"type":    qerr.Type,
			"limit":   qerr.Limit,
			"used":    qerr.Used,
			"resets":  qerr.Resets.Format(time.RFC3339),
			"message": qerr.Error(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			s.logger.Error("failed to encode quota exceeded response", "error", err)
		}
	default:
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(map[string]string{
			"error":   "internal_error",
			"message": "rate limiting check failed",
		}); err != nil {
			s.logger.Error("failed to encode internal error response", "error", err)
		}
	}
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
