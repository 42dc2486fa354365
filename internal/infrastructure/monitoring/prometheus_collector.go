package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moviehub"

type PrometheusCollector struct {
	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Accounts
	accountOperations *prometheus.CounterVec

	// Catalog
	catalogRequests     *prometheus.CounterVec
	catalogCacheLookups *prometheus.CounterVec

	// Provider
	upstreamRequests *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
	circuitState     prometheus.Gauge
}

// NewPrometheusCollector registers all collectors with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),

		accountOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_operations_total",
			Help:      "Signup and login attempts by outcome",
		}, []string{"action", "outcome"}),

		catalogRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog proxy requests by genre and outcome",
		}, []string{"genre", "outcome"}),

		catalogCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_lookups_total",
			Help:      "Catalog cache lookups by result",
		}, []string{"result"}),

		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tmdb_requests_total",
			Help:      "Outbound TMDb requests by outcome",
		}, []string{"outcome"}),

		upstreamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tmdb_request_duration_seconds",
			Help:      "Outbound TMDb request latency",
			Buckets:   prometheus.ExponentialBuckets(0.025, 2, 9),
		}),

		circuitState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tmdb_circuit_state",
			Help:      "TMDb circuit breaker state (0 closed, 1 half-open, 2 open)",
		}),
	}
}

func (p *PrometheusCollector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordAccountOperation(action, outcome string) {
	p.accountOperations.WithLabelValues(action, outcome).Inc()
}

// RecordCatalogRequest counts one proxy answer. genre should already be
// reduced to an allowed id or "invalid" to bound label cardinality.
func (p *PrometheusCollector) RecordCatalogRequest(genre, outcome string) {
	p.catalogRequests.WithLabelValues(genre, outcome).Inc()
}

func (p *PrometheusCollector) RecordCatalogCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.catalogCacheLookups.WithLabelValues(result).Inc()
}

func (p *PrometheusCollector) RecordUpstreamRequest(outcome string, duration time.Duration) {
	p.upstreamRequests.WithLabelValues(outcome).Inc()
	if duration > 0 {
		p.upstreamDuration.Observe(duration.Seconds())
	}
}

func (p *PrometheusCollector) RecordCircuitState(state string) {
	switch state {
	case "open":
		p.circuitState.Set(2)
	case "half-open":
		p.circuitState.Set(1)
	default:
		p.circuitState.Set(0)
	}
}
