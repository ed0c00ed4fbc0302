package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the briefing service.
// A nil *MetricsRegistry is valid and records nothing.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Upstream Metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRetriesTotal    *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business Metrics
	LookupDegradedTotal *prometheus.CounterVec
	CompositionsTotal   *prometheus.CounterVec
	CompositionDuration prometheus.Histogram
}

// NewMetricsRegistry registers every metric against reg. Passing
// prometheus.DefaultRegisterer exposes them on promhttp.Handler().
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "briefing_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "briefing_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "briefing_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Upstream Metrics
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "briefing_upstream_requests_total",
				Help: "Upstream HTTP attempts by normalized endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		UpstreamRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "briefing_upstream_retries_total",
				Help: "Upstream retries scheduled after a transient failure",
			},
			[]string{"endpoint"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "briefing_upstream_request_duration_seconds",
				Help:    "Upstream attempt latency in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "briefing_cache_hits_total",
				Help: "Total fresh cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "briefing_cache_misses_total",
				Help: "Total cache misses (absent or stale) by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		LookupDegradedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "briefing_lookup_degraded_total",
				Help: "Lookups that fell back to their degraded value, by source",
			},
			[]string{"source"},
		),
		CompositionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "briefing_compositions_total",
				Help: "Composition requests by result",
			},
			[]string{"result"},
		),
		CompositionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "briefing_composition_duration_seconds",
				Help:    "End-to-end composition time in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}
}

func (m *MetricsRegistry) ObserveUpstream(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *MetricsRegistry) IncUpstreamRetry(endpoint string) {
	if m == nil {
		return
	}
	m.UpstreamRetriesTotal.WithLabelValues(endpoint).Inc()
}

func (m *MetricsRegistry) IncCacheHit(pattern string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(pattern).Inc()
}

func (m *MetricsRegistry) IncCacheMiss(pattern string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(pattern).Inc()
}

func (m *MetricsRegistry) IncLookupDegraded(source string) {
	if m == nil {
		return
	}
	m.LookupDegradedTotal.WithLabelValues(source).Inc()
}

func (m *MetricsRegistry) ObserveComposition(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.CompositionsTotal.WithLabelValues(result).Inc()
	if result == "ok" {
		m.CompositionDuration.Observe(d.Seconds())
	}
}
