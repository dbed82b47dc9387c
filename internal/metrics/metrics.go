package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	intentsProcessedTotal *prometheus.CounterVec
	rateLimitDroppedTotal *prometheus.CounterVec

	customersRegisteredTotal prometheus.Counter
	customersTotal           prometheus.Gauge
}

// New creates a Metrics instance with its own registry.
// Go runtime and process collectors are registered alongside
// the service collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ivr_http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "path", "status"}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ivr_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		intentsProcessedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ivr_intents_processed_total",
			Help: "Total number of intents dispatched, by resolved intent name",
		}, []string{"intent", "status"}),

		rateLimitDroppedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ivr_rate_limit_dropped_total",
			Help: "Total number of requests rejected by rate limiting",
		}, []string{"limiter"}),

		customersRegisteredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ivr_customers_registered_total",
			Help: "Total number of customers registered since start",
		}),

		customersTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ivr_customers_total",
			Help: "Current number of customers in the database",
		}),
	}
}

// Handler returns an http.Handler serving the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordIntent records a dispatched intent with its outcome
func (m *Metrics) RecordIntent(intent, status string) {
	m.intentsProcessedTotal.WithLabelValues(intent, status).Inc()
}

// RecordRateLimitDrop records a request rejected by the named limiter
func (m *Metrics) RecordRateLimitDrop(limiter string) {
	m.rateLimitDroppedTotal.WithLabelValues(limiter).Inc()
}

// RecordCustomerRegistered increments the registration counter
func (m *Metrics) RecordCustomerRegistered() {
	m.customersRegisteredTotal.Inc()
}

// SetCustomersTotal updates the customer count gauge
func (m *Metrics) SetCustomersTotal(count int64) {
	m.customersTotal.Set(float64(count))
}
