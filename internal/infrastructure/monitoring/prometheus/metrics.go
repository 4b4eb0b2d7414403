// Package prometheus exposes the service metrics on a private registry so
// tests can assert on collected values without the global default registry.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wealthdesk"

var (
	httpDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	computeDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1}
)

// Metrics holds every instrument the service records.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPActiveRequests  prometheus.Gauge

	PortfolioComputeDuration *prometheus.HistogramVec
	PortfolioCacheHits       prometheus.Counter
	PortfolioCacheMisses     prometheus.Counter

	EventsPublished *prometheus.CounterVec
	RateLimited     prometheus.Counter
}

// NewMetrics registers all instruments on a fresh registry. Process and Go
// runtime collectors are included for operational dashboards.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern, and status code.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   httpDurationBuckets,
		}, []string{"method", "path"}),
		HTTPActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_requests",
			Help:      "Requests currently being served.",
		}),
		PortfolioComputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "portfolio_compute_duration_seconds",
			Help:      "Portfolio aggregation latency by computation kind.",
			Buckets:   computeDurationBuckets,
		}, []string{"kind"}),
		PortfolioCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "portfolio_cache_hits_total",
			Help:      "Portfolio summaries served from cache.",
		}),
		PortfolioCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "portfolio_cache_misses_total",
			Help:      "Portfolio summaries recomputed on a cache miss.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Activity events published by topic and result.",
		}, []string{"topic", "result"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPActiveRequests,
		m.PortfolioComputeDuration,
		m.PortfolioCacheHits,
		m.PortfolioCacheMisses,
		m.EventsPublished,
		m.RateLimited,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveCompute records one engine computation.
func (m *Metrics) ObserveCompute(kind string, elapsed time.Duration) {
	m.PortfolioComputeDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, path, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
