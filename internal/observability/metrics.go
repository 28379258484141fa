package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// collectors, the CSV store, and the API.
type Metrics struct {
	CollectorRuns     *prometheus.CounterVec   // labels: collector={news,weather,alerts,fuel,cleanup}
	CollectorErrors   *prometheus.CounterVec   // labels: collector
	CollectorDuration *prometheus.HistogramVec // labels: collector
	SchedulerRunning  prometheus.Gauge

	// Parser metrics.
	RecordsParsed     *prometheus.CounterVec // labels: feed={alerts,news,weather,fuel}
	RowsDropped       *prometheus.CounterVec // labels: feed
	JSONCellFallbacks prometheus.Counter

	// Store metrics.
	StoreInserts  *prometheus.CounterVec // labels: feed
	StoreReads    *prometheus.CounterVec // labels: feed
	RecordsPruned prometheus.Counter

	// Alert publishing metrics.
	AlertsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
	PublishEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CollectorRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitrep",
			Name:      "collector_runs_total",
			Help:      "Completed collector runs by collector name.",
		}, []string{"collector"}),
		CollectorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitrep",
			Name:      "collector_errors_total",
			Help:      "Failed collector runs by collector name.",
		}, []string{"collector"}),
		CollectorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sitrep",
			Name:      "collector_duration_seconds",
			Help:      "Duration of a complete collector run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"collector"}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sitrep",
			Name:      "scheduler_running",
			Help:      "1 when the collection scheduler is active, 0 when shut down.",
		}),
		RecordsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitrep",
			Name:      "records_parsed_total",
			Help:      "Rows successfully parsed from feed text by feed name.",
		}, []string{"feed"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitrep",
			Name:      "rows_dropped_total",
			Help:      "Rows whose values beyond the header width were dropped, by feed name.",
		}, []string{"feed"}),
		JSONCellFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sitrep",
			Name:      "json_cell_fallbacks_total",
			Help:      "Nested JSON cells that failed to decode and fell back to an empty list.",
		}),
		StoreInserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitrep",
			Name:      "store_inserts_total",
			Help:      "Records appended to the CSV store by feed name.",
		}, []string{"feed"}),
		StoreReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitrep",
			Name:      "store_reads_total",
			Help:      "Full-file reads of a CSV store feed by feed name.",
		}, []string{"feed"}),
		RecordsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sitrep",
			Name:      "records_pruned_total",
			Help:      "Records removed by retention cleanup.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sitrep",
			Name:      "alerts_published_total",
			Help:      "Alert records published to the broker.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sitrep",
			Name:      "publish_errors_total",
			Help:      "Failed broker publish attempts.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sitrep",
			Name:      "publish_enabled",
			Help:      "1 when alert publishing is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.CollectorRuns,
		m.CollectorErrors,
		m.CollectorDuration,
		m.SchedulerRunning,
		m.RecordsParsed,
		m.RowsDropped,
		m.JSONCellFallbacks,
		m.StoreInserts,
		m.StoreReads,
		m.RecordsPruned,
		m.AlertsPublished,
		m.PublishErrors,
		m.PublishEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CollectorRuns:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sitrep", Name: "collector_runs_total"}, []string{"collector"}),
		CollectorErrors:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sitrep", Name: "collector_errors_total"}, []string{"collector"}),
		CollectorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "sitrep", Name: "collector_duration_seconds"}, []string{"collector"}),
		SchedulerRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sitrep", Name: "scheduler_running"}),
		RecordsParsed:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sitrep", Name: "records_parsed_total"}, []string{"feed"}),
		RowsDropped:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sitrep", Name: "rows_dropped_total"}, []string{"feed"}),
		JSONCellFallbacks: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sitrep", Name: "json_cell_fallbacks_total"}),
		StoreInserts:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sitrep", Name: "store_inserts_total"}, []string{"feed"}),
		StoreReads:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sitrep", Name: "store_reads_total"}, []string{"feed"}),
		RecordsPruned:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sitrep", Name: "records_pruned_total"}),
		AlertsPublished:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sitrep", Name: "alerts_published_total"}),
		PublishErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sitrep", Name: "publish_errors_total"}),
		PublishEnabled:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sitrep", Name: "publish_enabled"}),
	}
}
