// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Chart API metrics
	ChartRequests     *prometheus.CounterVec
	ChartDuration     prometheus.Histogram
	TrendingRequests  prometheus.Counter
	ActiveChartStream prometheus.Gauge

	// Market data metrics
	ProviderFetches    *prometheus.CounterVec
	ProviderLatency    prometheus.Histogram
	PriceBarsFetched   prometheus.Counter
	CacheWrites        prometheus.Counter
	CacheWriteFailures prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "mention_market_lab"
	}

	return &Metrics{
		// Chart API metrics
		ChartRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "requests_total",
			Help:      "Total number of chart requests by status",
		}, []string{"status"}),
		ChartDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "request_duration_seconds",
			Help:      "Merged-series request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TrendingRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "trending_requests_total",
			Help:      "Total number of trending ranking requests",
		}),
		ActiveChartStream: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "active_streams",
			Help:      "Current number of open WebSocket chart streams",
		}),

		// Market data metrics
		ProviderFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "fetches_total",
			Help:      "Total number of market data fetches by status",
		}, []string{"status"}),
		ProviderLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "fetch_latency_seconds",
			Help:      "Market data fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PriceBarsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "price_bars_fetched_total",
			Help:      "Total number of daily price bars fetched",
		}),
		CacheWrites: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "cache_writes_total",
			Help:      "Total number of price-bar cache writes",
		}),
		CacheWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "cache_write_failures_total",
			Help:      "Total number of failed price-bar cache writes",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordChartRequest records one merged-series request.
func RecordChartRequest(status string, durationSeconds float64) {
	DefaultMetrics.ChartRequests.WithLabelValues(status).Inc()
	DefaultMetrics.ChartDuration.Observe(durationSeconds)
}

// RecordTrendingRequest increments the trending request counter.
func RecordTrendingRequest() {
	DefaultMetrics.TrendingRequests.Inc()
}

// StreamOpened increments the active stream gauge.
func StreamOpened() {
	DefaultMetrics.ActiveChartStream.Inc()
}

// StreamClosed decrements the active stream gauge.
func StreamClosed() {
	DefaultMetrics.ActiveChartStream.Dec()
}

// RecordProviderFetch records one market data fetch.
func RecordProviderFetch(status string, seconds float64, bars int) {
	DefaultMetrics.ProviderFetches.WithLabelValues(status).Inc()
	DefaultMetrics.ProviderLatency.Observe(seconds)
	if bars > 0 {
		DefaultMetrics.PriceBarsFetched.Add(float64(bars))
	}
}

// RecordCacheWrite records a price-bar cache write.
func RecordCacheWrite(err error) {
	DefaultMetrics.CacheWrites.Inc()
	if err != nil {
		DefaultMetrics.CacheWriteFailures.Inc()
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
