package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/HemeraProtocol/seismic-verify/pkg/metrics"
	"github.com/HemeraProtocol/seismic-verify/pkg/transfer"
)

// syncMetrics is the Prometheus implementation of transfer.Metrics.
type syncMetrics struct {
	outcomesTotal    *prometheus.CounterVec
	transferDuration prometheus.Histogram
	transferBytes    prometheus.Counter
}

// NewSyncMetrics creates a Prometheus-backed transfer.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewSyncMetrics() transfer.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &syncMetrics{
		outcomesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "solcsync_artifact_outcomes_total",
				Help: "Total artifact outcomes by status (uploaded, skipped, failed)",
			},
			[]string{"status"},
		),
		transferDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "solcsync_transfer_duration_seconds",
				Help:    "End-to-end duration of successful artifact transfers",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		transferBytes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "solcsync_transfer_bytes_total",
				Help: "Total bytes uploaded across successful transfers",
			},
		),
	}
}

// ObserveOutcome implements transfer.Metrics.
func (m *syncMetrics) ObserveOutcome(status string) {
	m.outcomesTotal.WithLabelValues(status).Inc()
}

// ObserveTransfer implements transfer.Metrics.
func (m *syncMetrics) ObserveTransfer(d time.Duration, bytes int) {
	m.transferDuration.Observe(d.Seconds())
	if bytes > 0 {
		m.transferBytes.Add(float64(bytes))
	}
}
