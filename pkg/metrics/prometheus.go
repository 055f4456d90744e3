package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	stageLatency  *prometheus.HistogramVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	rowsProcessed *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage", "ticker"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_last_price",
				Help: "Last streamed price for a symbol",
			},
			[]string{"symbol"},
		),
		rowsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_rows_processed_total",
				Help: "Rows flowing out of each pipeline stage",
			},
			[]string{"stage"},
		),
	}
}

// RecordStage records a completed pipeline stage.
func (r *Recorder) RecordStage(stage, ticker string, seconds float64) {
	r.stageLatency.WithLabelValues(stage, ticker).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordRowsProcessed records stage output size.
func (r *Recorder) RecordRowsProcessed(stage string, rows int) {
	r.rowsProcessed.WithLabelValues(stage).Add(float64(rows))
}
