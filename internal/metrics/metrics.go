package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smeshko/text-extractor/internal/entity"
)

// Metrics holds Prometheus metrics for extraction runs.
//
// Metrics:
//   - textextract_runs_total{status} - finished runs by terminal status
//   - textextract_run_duration_seconds - wall time of a run
//   - textextract_documents_total{outcome} - documents processed or skipped
//   - textextract_matches_total{status} - keyword matches by status
//   - textextract_rejections_total - start requests refused while busy
//   - textextract_run_in_progress - 1 while a worker is active
type Metrics struct {
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	DocumentsTotal  *prometheus.CounterVec
	MatchesTotal    *prometheus.CounterVec
	RejectionsTotal prometheus.Counter
	InProgress      prometheus.Gauge
}

// NewMetrics registers the metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textextract_runs_total",
				Help: "Total number of finished extraction runs",
			},
			[]string{"status"},
		),
		RunDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "textextract_run_duration_seconds",
				Help:    "Duration of extraction runs in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		DocumentsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textextract_documents_total",
				Help: "Total number of documents by outcome",
			},
			[]string{"outcome"}, // "extracted" or "skipped"
		),
		MatchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textextract_matches_total",
				Help: "Total number of keyword matches by status",
			},
			[]string{"status"},
		),
		RejectionsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "textextract_rejections_total",
				Help: "Total number of extraction requests rejected while another run was active",
			},
		),
		InProgress: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "textextract_run_in_progress",
				Help: "1 while an extraction run is active",
			},
		),
	}
}

func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.InProgress.Set(1)
}

// RunFinished records a terminal run. batch may be nil for failed runs.
func (m *Metrics) RunFinished(status string, batch *entity.BatchResults, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.InProgress.Set(0)
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	if batch == nil {
		return
	}
	m.DocumentsTotal.WithLabelValues("extracted").Add(float64(batch.DocumentCount()))
	m.DocumentsTotal.WithLabelValues("skipped").Add(float64(len(batch.Warnings)))
	for _, r := range batch.Results {
		for _, match := range r.Matches {
			m.MatchesTotal.WithLabelValues(string(match.Status)).Inc()
		}
	}
}

func (m *Metrics) Rejected() {
	if m == nil {
		return
	}
	m.RejectionsTotal.Inc()
}
