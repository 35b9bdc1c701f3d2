// Package metrics provides Prometheus metrics for import runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records import activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	FilesTotal      *prometheus.CounterVec
	FileDuration    *prometheus.HistogramVec
	DetailsImported prometheus.Counter
	RunsTotal       prometheus.Counter
	RunDuration     prometheus.Histogram
	FilesCreated    prometheus.Counter
}

// New registers the import metrics on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the import metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		FilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progsync_files_total",
				Help: "Total number of program files processed, by outcome",
			},
			[]string{"status"},
		),

		FileDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "progsync_file_duration_seconds",
				Help:    "Time taken to extract and store one program file",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"status"},
		),

		DetailsImported: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "progsync_details_imported_total",
				Help: "Total number of program detail rows stored",
			},
		),

		RunsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "progsync_runs_total",
				Help: "Total number of import batch runs",
			},
		),

		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "progsync_run_duration_seconds",
				Help:    "Duration of import batch runs",
				Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 1800},
			},
		),

		FilesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "progsync_watch_files_created_total",
				Help: "Total number of files seen created by the watcher",
			},
		),
	}
}

// RecordFile records one file outcome.
func (m *Metrics) RecordFile(status string, details int, duration time.Duration) {
	if m == nil {
		return
	}
	m.FilesTotal.WithLabelValues(status).Inc()
	m.FileDuration.WithLabelValues(status).Observe(duration.Seconds())
	if details > 0 {
		m.DetailsImported.Add(float64(details))
	}
}

// RecordRun records a completed batch run.
func (m *Metrics) RecordRun(duration time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// RecordCreated records a file creation seen by the watcher.
func (m *Metrics) RecordCreated() {
	if m == nil {
		return
	}
	m.FilesCreated.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
