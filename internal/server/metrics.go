package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantryd_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pantryd_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Receipt scan metrics
	scanRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantryd_scan_requests_total",
			Help: "Total number of receipt scan requests",
		},
		[]string{"status"}, // status: ok or the failure code
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pantryd_scan_duration_seconds",
			Help:    "Receipt scan duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50},
		},
	)

	scanItemsDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pantryd_scan_items_detected",
			Help:    "Number of line items detected per receipt",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 40, 80},
		},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pantryd_upload_size_bytes",
			Help:    "Size of uploaded receipt images in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 5 * 1024 * 1024, 10 * 1024 * 1024},
		},
	)

	// Vocabulary metrics
	vocabRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantryd_vocabulary_refresh_total",
			Help: "Total number of vocabulary refresh attempts",
		},
		[]string{"status"}, // status: ok, error
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantryd_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pantryd_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantryd_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
