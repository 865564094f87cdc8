// Package server exposes the pantry API over HTTP: receipt scanning,
// pantry CRUD, vocabulary refresh, and a WebSocket scan channel.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openpantry/pantryd/internal/auth"
	"github.com/openpantry/pantryd/internal/config"
	"github.com/openpantry/pantryd/internal/pipeline"
	"github.com/openpantry/pantryd/internal/store"
	"github.com/openpantry/pantryd/internal/vocab"
)

// scannerInterface defines the methods the server needs from the
// receipt pipeline.
type scannerInterface interface {
	ProcessReceipt(ctx context.Context, data []byte, declaredType, langHint string) (*pipeline.Result, error)
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	scanner     scannerInterface
	pantry      store.Store
	vocab       *vocab.Cache
	verifier    auth.Verifier
	rateLimiter *RateLimiter
	logger      *slog.Logger

	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int

	// scanSlots bounds concurrent receipt scans; OCR is the expensive
	// part of a request and must not fan out unbounded.
	scanSlots chan struct{}
}

// Response types for API endpoints.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version,omitempty"`
	Vocabulary string `json:"vocabulary"`
	Time       string `json:"time"`
}

type ScanResponse struct {
	Success bool             `json:"success"`
	Result  *pipeline.Result `json:"result,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

type VocabularyStatusResponse struct {
	Entries  int    `json:"entries"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

// NewServer creates a pantry API server around the given dependencies.
func NewServer(cfg config.ServerConfig, scanner scannerInterface, pantry store.Store, vocabCache *vocab.Cache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		scanner:     scanner,
		pantry:      pantry,
		vocab:       vocabCache,
		logger:      logger,
		corsOrigin:  cfg.CORSOrigin,
		maxUploadMB: cfg.MaxUploadMB,
		timeoutSec:  cfg.TimeoutSec,
	}

	slots := cfg.MaxConcurrentScans
	if slots <= 0 {
		slots = 1
	}
	s.scanSlots = make(chan struct{}, slots)

	if cfg.AuthEnabled {
		s.verifier = &auth.StaticVerifier{Token: cfg.AuthToken}
	}
	if cfg.RateLimitEnabled {
		s.rateLimiter = NewRateLimiter(cfg.RequestsPerMinute, cfg.RequestsPerHour,
			cfg.MaxRequestsPerDay, cfg.MaxDataPerDayMB*1024*1024)
	}
	return s
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.scanner != nil {
		return s.scanner.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/receipts/scan", s.corsMiddleware(s.rateLimitMiddleware(s.authMiddleware(s.scanReceiptHandler))))
	mux.HandleFunc("/pantry/items", s.corsMiddleware(s.authMiddleware(s.pantryCollectionHandler)))
	mux.HandleFunc("/pantry/items/", s.corsMiddleware(s.authMiddleware(s.pantryItemHandler)))
	mux.HandleFunc("/vocabulary", s.corsMiddleware(s.authMiddleware(s.vocabularyStatusHandler)))
	mux.HandleFunc("/vocabulary/refresh", s.corsMiddleware(s.authMiddleware(s.vocabularyRefreshHandler)))
	mux.HandleFunc("/ws/scan", s.scanWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// requestTimeout returns the deadline applied to scan processing.
func (s *Server) requestTimeout() time.Duration {
	if s.timeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.timeoutSec) * time.Second
}
