package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dreamprep"

// Metrics holds the Prometheus counters, histograms, and gauges for a preparation run.
type Metrics struct {
	RowsRead    *prometheus.CounterVec // labels: dataset
	RowsWritten *prometheus.CounterVec // labels: dataset

	UnmatchedJoinRows prometheus.Counter
	SyntheticRows     *prometheus.CounterVec // labels: city
	RowsPatched       prometheus.Counter

	StageDuration *prometheus.HistogramVec // labels: stage
	LastSuccess   prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all run metrics on a dedicated registry, so that they
// can be written out as a node-exporter textfile.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Rows read per dataset.",
		}, []string{"dataset"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows written per dataset or sink.",
		}, []string{"dataset"}),
		UnmatchedJoinRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_unmatched_rows_total",
			Help:      "Dream rows with no radiance match.",
		}),
		SyntheticRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthetic_rows_total",
			Help:      "Synthetic rows generated per city.",
		}, []string{"city"}),
		RowsPatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "override_rows_patched_total",
			Help:      "Rows modified by the radiance patch list.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that completed without error.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RowsRead,
		m.RowsWritten,
		m.UnmatchedJoinRows,
		m.SyntheticRows,
		m.RowsPatched,
		m.StageDuration,
		m.LastSuccess,
	)

	return m
}

// NewMetricsForTesting returns fresh Metrics. Each call has its own registry,
// so tests can create as many as they need.
func NewMetricsForTesting() *Metrics {
	return NewMetrics()
}

// Registry exposes the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metric values in the text exposition
// format, atomically replacing path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
