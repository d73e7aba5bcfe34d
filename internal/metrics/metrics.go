package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes Prometheus instruments for the refresh pipeline.
type Recorder struct {
	rowsClassified  *prometheus.CounterVec
	fetchErrors     *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
}

// New registers and returns the metrics recorder.
func New() *Recorder {
	return &Recorder{
		rowsClassified: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_rows_classified_total",
				Help: "Rows classified, by timeframe and resulting signal",
			},
			[]string{"timeframe", "signal"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_fetch_errors_total",
				Help: "Market data fetch failures, by timeframe",
			},
			[]string{"timeframe"},
		),
		refreshDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signaldesk_refresh_duration_seconds",
				Help:    "Duration of a full refresh pass",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"timeframe"},
		),
	}
}

// RowClassified records one classified row.
func (r *Recorder) RowClassified(timeframe, signal string) {
	r.rowsClassified.WithLabelValues(timeframe, signal).Inc()
}

// FetchError records a market data fetch failure.
func (r *Recorder) FetchError(timeframe string) {
	r.fetchErrors.WithLabelValues(timeframe).Inc()
}

// RefreshObserved records the duration of a refresh pass.
func (r *Recorder) RefreshObserved(timeframe string, seconds float64) {
	r.refreshDuration.WithLabelValues(timeframe).Observe(seconds)
}
