package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SanctionsApplied  *prometheus.CounterVec
	SanctionsRevoked  *prometheus.CounterVec
	SanctionsExpired  prometheus.Counter
	SweepDurationMs   prometheus.Histogram
	SweepErrors       prometheus.Counter
	SweepSkipped      prometheus.Counter
	RequestDurationMs *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SanctionsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tribune_sanctions_applied_total",
			Help: "Total number of sanctions applied, by kind",
		}, []string{"kind"}),
		SanctionsRevoked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tribune_sanctions_revoked_total",
			Help: "Total number of sanctions revoked, by kind",
		}, []string{"kind"}),
		SanctionsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tribune_sanctions_expired_total",
			Help: "Total number of sanctions deactivated by the expiration sweep",
		}),
		SweepDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tribune_sanction_sweep_duration_ms",
			Help:    "Duration of expiration sweep runs in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
		SweepErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tribune_sanction_sweep_errors_total",
			Help: "Total per-user reconciliation errors during sweeps",
		}),
		SweepSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tribune_sanction_sweep_skipped_total",
			Help: "Sweep ticks skipped because a previous run was still in progress",
		}),
		RequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tribune_http_request_duration_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"method", "route"}),
	}
}

// ObserveSweep records the outcome of one sweep run.
func (m *Metrics) ObserveSweep(processed int, errs int, durationMs float64) {
	if m == nil {
		return
	}
	m.SanctionsExpired.Add(float64(processed))
	m.SweepErrors.Add(float64(errs))
	m.SweepDurationMs.Observe(durationMs)
}
