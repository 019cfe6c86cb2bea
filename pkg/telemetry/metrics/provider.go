package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"bullion-hq/assay/pkg/llm"
)

// ProviderMetrics tracks LLM provider traffic.
//
// Metrics:
//   - assay_provider_requests_total: Chat completion attempts by provider and model
//   - assay_provider_errors_total: Failed attempts by provider and error type
//   - assay_provider_failovers_total: Rotations away from a failed provider
//   - assay_provider_generation_seconds: Wall time of completed generations
type ProviderMetrics struct {
	requests   *prometheus.CounterVec
	errors     *prometheus.CounterVec
	failovers  *prometheus.CounterVec
	generation *prometheus.HistogramVec
}

// NewProviderMetrics creates and registers provider metrics with the registry.
func NewProviderMetrics(registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "provider_requests_total",
				Help:      "Total chat completion attempts by provider and model",
			},
			[]string{"provider", "model"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "provider_errors_total",
				Help:      "Total failed attempts by provider and error type",
			},
			[]string{"provider", "error_type"},
		),

		failovers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "provider_failovers_total",
				Help:      "Total rotations away from a failed provider",
			},
			[]string{"from", "to"},
		),

		generation: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "provider_generation_seconds",
				Help:      "Wall time of completed generations in seconds",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 90, 120},
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		pm.requests,
		pm.errors,
		pm.failovers,
		pm.generation,
	)

	return pm
}

// RecordRequest counts one attempt against a provider/model pair.
func (pm *ProviderMetrics) RecordRequest(provider, model string) {
	pm.requests.WithLabelValues(provider, model).Inc()
}

// RecordError counts a failed attempt, classified by ErrorType.
func (pm *ProviderMetrics) RecordError(provider string, err error) {
	pm.errors.WithLabelValues(provider, ErrorType(err)).Inc()
}

// RecordFailover counts a rotation from one provider to the next.
func (pm *ProviderMetrics) RecordFailover(from, to string) {
	pm.failovers.WithLabelValues(from, to).Inc()
}

// RecordGeneration observes the duration of a completed generation.
func (pm *ProviderMetrics) RecordGeneration(provider string, seconds float64) {
	pm.generation.WithLabelValues(provider).Observe(seconds)
}

// ErrorType maps a failed attempt's error to a stable metric label.
func ErrorType(err error) string {
	var httpErr *llm.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == 429:
			return "rate_limit"
		case httpErr.StatusCode == 401 || httpErr.StatusCode == 403:
			return "auth"
		case httpErr.StatusCode >= 500:
			return "server_error"
		default:
			return "client_error"
		}
	}

	var transportErr *llm.TransportError
	if errors.As(err, &transportErr) {
		return "network"
	}

	var responseErr *llm.ResponseError
	if errors.As(err, &responseErr) {
		return "response"
	}

	return "other"
}
