package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authentication outcomes, one per request
const (
	AuthOutcomeNoToken       = "no_token"
	AuthOutcomeAuthenticated = "authenticated"
	AuthOutcomeRejected      = "rejected"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Security metrics
	AuthAttemptsTotal          *prometheus.CounterVec
	AuthorizationDenialsTotal  *prometheus.CounterVec
	ActivityLogsDroppedTotal   prometheus.Counter
	ActivityLogsProcessedTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schoolms_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schoolms_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schoolms_auth_attempts_total",
				Help: "Requests seen by the authenticator, by outcome",
			},
			[]string{"outcome"},
		),
		AuthorizationDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schoolms_authorization_denials_total",
				Help: "Requests refused by an authorization guard",
			},
			[]string{"guard"},
		),
		ActivityLogsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "schoolms_activity_logs_dropped_total",
				Help: "Activity log entries dropped because the buffer was full",
			},
		),
		ActivityLogsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schoolms_activity_logs_processed_total",
				Help: "Activity log entries written, by result",
			},
			[]string{"result"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthAttemptsTotal,
		m.AuthorizationDenialsTotal,
		m.ActivityLogsDroppedTotal,
		m.ActivityLogsProcessedTotal,
	)

	return m
}

// RecordAuthAttempt counts an authenticator outcome. Safe on a nil receiver.
func (m *Metrics) RecordAuthAttempt(outcome string) {
	if m == nil {
		return
	}
	m.AuthAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordDenial counts a refusal by the named guard. Safe on a nil receiver.
func (m *Metrics) RecordDenial(guard string) {
	if m == nil {
		return
	}
	m.AuthorizationDenialsTotal.WithLabelValues(guard).Inc()
}

// RecordActivityDropped counts a dropped activity log entry. Safe on a nil receiver.
func (m *Metrics) RecordActivityDropped() {
	if m == nil {
		return
	}
	m.ActivityLogsDroppedTotal.Inc()
}

// RecordActivityProcessed counts a written or failed activity log entry. Safe on a nil receiver.
func (m *Metrics) RecordActivityProcessed(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.ActivityLogsProcessedTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// Requests are labelled by chi route pattern to keep cardinality bounded.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
