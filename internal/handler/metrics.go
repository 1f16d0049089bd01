package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

// Metrics holds Prometheus metrics
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	dispatchesTotal     *prometheus.CounterVec
	dispatchDuration    *prometheus.HistogramVec
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		dispatchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatches_total",
				Help: "Total number of dispatches by delivering channel and status",
			},
			[]string{"channel", "status"},
		),
		dispatchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dispatch_duration_seconds",
				Help:    "Time spent walking the delivery chain",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"channel"},
		),
	}
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDispatch records a finished dispatch
func (m *Metrics) RecordDispatch(channel, status string, duration time.Duration) {
	m.dispatchesTotal.WithLabelValues(channel, status).Inc()
	m.dispatchDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// MetricsHandler handles metrics endpoints
type MetricsHandler struct {
	metrics     *Metrics
	rateLimiter domain.RateLimiter
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics *Metrics, rateLimiter domain.RateLimiter) *MetricsHandler {
	return &MetricsHandler{
		metrics:     metrics,
		rateLimiter: rateLimiter,
	}
}

// Handler returns the Prometheus HTTP handler
func (h *MetricsHandler) Handler() http.Handler {
	return promhttp.Handler()
}

// DispatchRateMetrics represents the observed dispatch rate
type DispatchRateMetrics struct {
	CurrentRatePerSec int64 `json:"current_rate_per_sec"`
}

// RealtimeMetrics handles real-time metrics requests
// @Summary Real-time metrics
// @Description Get the current dispatch rate observed by the limiter
// @Tags metrics
// @Produce json
// @Success 200 {object} DispatchRateMetrics
// @Failure 500 {object} Response
// @Router /metrics/realtime [get]
func (h *MetricsHandler) RealtimeMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rate, err := h.rateLimiter.CurrentRate(ctx, "dispatch")
	if err != nil {
		JSONError(w, http.StatusInternalServerError, "METRICS_ERROR", "Failed to get dispatch rate", nil)
		return
	}

	JSON(w, http.StatusOK, DispatchRateMetrics{CurrentRatePerSec: rate})
}
