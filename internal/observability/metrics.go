package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the forecast viewer.
type Metrics struct {
	// JMA API metrics.
	JMARequests        *prometheus.CounterVec   // labels: endpoint={areas,forecast}, outcome={success,error}
	JMARequestDuration *prometheus.HistogramVec // labels: endpoint={areas,forecast}

	// Cache-and-merge metrics.
	Refreshes     *prometheus.CounterVec // labels: outcome={success,fetch_error,store_error}
	CachedReads   *prometheus.CounterVec // labels: outcome={hit,empty,error}
	RecordsStored prometheus.Counter
	StoreEnabled  prometheus.Gauge

	// Optional integrations.
	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
	PrefetchRuns    *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.JMARequests,
		m.JMARequestDuration,
		m.Refreshes,
		m.CachedReads,
		m.RecordsStored,
		m.StoreEnabled,
		m.EventsPublished,
		m.PrefetchRuns,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		JMARequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jma_forecast",
			Name:      "jma_requests_total",
			Help:      "JMA API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		JMARequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jma_forecast",
			Name:      "jma_request_duration_seconds",
			Help:      "JMA API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jma_forecast",
			Name:      "refreshes_total",
			Help:      "Fetch-and-store refreshes by outcome.",
		}, []string{"outcome"}),
		CachedReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jma_forecast",
			Name:      "cached_reads_total",
			Help:      "Read-only cache lookups by outcome.",
		}, []string{"outcome"}),
		RecordsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jma_forecast",
			Name:      "records_stored_total",
			Help:      "Forecast entries written to the local store.",
		}),
		StoreEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jma_forecast",
			Name:      "store_enabled",
			Help:      "1 when the local forecast store is enabled, 0 otherwise.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jma_forecast",
			Name:      "events_published_total",
			Help:      "Forecast-refreshed events published to Kafka by outcome.",
		}, []string{"outcome"}),
		PrefetchRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jma_forecast",
			Name:      "prefetch_refreshes_total",
			Help:      "Scheduled area refreshes by outcome.",
		}, []string{"outcome"}),
	}
}
