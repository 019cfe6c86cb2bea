package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run status labels for report run metrics.
const (
	RunSent      = "sent"
	RunGenerated = "generated"
	RunSkipped   = "skipped"
	RunFailed    = "failed"
)

// ReportMetrics tracks scheduled report runs and Telegram delivery.
//
// Metrics:
//   - assay_report_runs_total: Report runs by job and terminal status
//   - assay_report_run_seconds: End-to-end run duration by job
//   - assay_telegram_sends_total: Telegram sendMessage calls by outcome
//   - assay_market_data_fetches_total: Market data fetches by source and outcome
type ReportMetrics struct {
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	sends       *prometheus.CounterVec
	fetches     *prometheus.CounterVec
}

// NewReportMetrics creates and registers report metrics with the registry.
func NewReportMetrics(registry *prometheus.Registry) *ReportMetrics {
	rm := &ReportMetrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "report_runs_total",
				Help:      "Total report runs by job and terminal status",
			},
			[]string{"job", "status"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "report_run_seconds",
				Help:      "End-to-end report run duration in seconds",
				Buckets:   []float64{5, 15, 30, 60, 120, 240, 480},
			},
			[]string{"job"},
		),

		sends: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "telegram_sends_total",
				Help:      "Total Telegram sendMessage calls by outcome",
			},
			[]string{"status"},
		),

		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "market_data_fetches_total",
				Help:      "Total market data fetches by source and outcome",
			},
			[]string{"source", "status"},
		),
	}

	registry.MustRegister(
		rm.runs,
		rm.runDuration,
		rm.sends,
		rm.fetches,
	)

	return rm
}

// RecordRun counts a finished run and observes its duration.
func (rm *ReportMetrics) RecordRun(job, status string, seconds float64) {
	rm.runs.WithLabelValues(job, status).Inc()
	rm.runDuration.WithLabelValues(job).Observe(seconds)
}

// RecordSend counts one Telegram delivery attempt.
func (rm *ReportMetrics) RecordSend(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	rm.sends.WithLabelValues(status).Inc()
}

// RecordFetch counts one market data fetch against a named source.
func (rm *ReportMetrics) RecordFetch(source string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	rm.fetches.WithLabelValues(source, status).Inc()
}
