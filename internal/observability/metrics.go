package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "raincast"

// Metrics holds the Prometheus counters, histograms, and gauges for a scoring run.
type Metrics struct {
	RowsScored     prometheus.Counter
	Predictions    *prometheus.CounterVec // labels: class={0,1}
	ImputedValues  *prometheus.CounterVec // labels: method={median,knn,mode}
	Runs           *prometheus.CounterVec // labels: mode={csv,manual,features}, outcome={success,artifact,input,type,internal}
	StageDuration  *prometheus.HistogramVec
	MissingColumns prometheus.Gauge
	UnexpectedCols prometheus.Gauge

	registry prometheus.Gatherer
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_scored_total",
			Help:      "Total rows that received a prediction.",
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions by class label.",
		}, []string{"class"}),
		ImputedValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imputed_values_total",
			Help:      "Cells filled by the imputer, by method.",
		}, []string{"method"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Scoring runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each preprocessing and prediction stage.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"stage"}),
		MissingColumns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schema_missing_columns",
			Help:      "Schema columns zero-filled during the last alignment.",
		}),
		UnexpectedCols: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schema_unexpected_columns",
			Help:      "Input columns dropped during the last alignment.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsScored,
		m.Predictions,
		m.ImputedValues,
		m.Runs,
		m.StageDuration,
		m.MissingColumns,
		m.UnexpectedCols,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	m.registry = prometheus.DefaultGatherer
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	m.registry = reg
	return m
}
