package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	logins          *prometheus.CounterVec
	redemptions     *prometheus.CounterVec
	auditFailures   prometheus.Counter
	partialFailures *prometheus.CounterVec
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Errors returned to clients by error code.",
		}, []string{"method", "path", "code"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by principal kind and result.",
		}, []string{"kind", "result"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bundle_redemptions_total",
			Help: "Bundle service usage attempts by result.",
		}, []string{"result"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit records that could not be appended after a committed mutation.",
		}),
		partialFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "partial_failures_total",
			Help: "Multi-step operations that stopped after a durable first step.",
		}, []string{"operation"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration, m.errors, m.logins,
		m.redemptions, m.auditFailures, m.partialFailures,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest counts a served request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, path, code).Inc()
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(kind, result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(kind, result).Inc()
}

// RecordRedemption counts a bundle usage attempt.
func (m *Metrics) RecordRedemption(result string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(result).Inc()
}

// RecordAuditFailure counts a dropped audit append.
func (m *Metrics) RecordAuditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

// RecordPartialFailure counts an operation whose first durable step succeeded
// but a later step did not.
func (m *Metrics) RecordPartialFailure(operation string) {
	if m == nil {
		return
	}
	m.partialFailures.WithLabelValues(operation).Inc()
}
