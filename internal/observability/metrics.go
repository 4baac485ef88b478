package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "airq"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analytics pipeline.
type Metrics struct {
	// Ingest metrics.
	RowsIngested         prometheus.Counter
	UnparsableTimestamps prometheus.Counter
	UnmatchedRows        prometheus.Counter
	OutOfRangeBands      prometheus.Counter

	// Run metrics.
	Runs           prometheus.Counter
	RunErrors      prometheus.Counter
	RunDuration    prometheus.Histogram
	ViewsPublished prometheus.Counter
	PipelineReady  prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// NewUnregisteredMetrics creates Metrics for one-shot commands that expose no
// /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_ingested_total",
			Help:      "Total rows read from the source table.",
		}),
		UnparsableTimestamps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unparsable_timestamps_total",
			Help:      "Rows whose timestamp could not be reconstructed.",
		}),
		UnmatchedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmatched_rows_total",
			Help:      "Rows whose location has no reference coordinates.",
		}),
		OutOfRangeBands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "out_of_range_bands_total",
			Help:      "Location averages that fell outside the severity bands.",
		}),
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total pipeline runs started.",
		}),
		RunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_errors_total",
			Help:      "Total pipeline runs that failed.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-normalize-analyze run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ViewsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_published_total",
			Help:      "Total view messages written to the views topic.",
		}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_ready",
			Help:      "1 once a run has completed, 0 before.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsIngested,
		m.UnparsableTimestamps,
		m.UnmatchedRows,
		m.OutOfRangeBands,
		m.Runs,
		m.RunErrors,
		m.RunDuration,
		m.ViewsPublished,
		m.PipelineReady,
	}
}
