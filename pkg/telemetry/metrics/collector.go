package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Namespace prefixes every metric this package registers.
const Namespace = "assay"

// Collector owns the Prometheus registry and the metric families the daemon
// exposes. One Collector lives for the process lifetime.
type Collector struct {
	registry *prometheus.Registry

	// Provider tracks LLM provider traffic and failover behavior.
	Provider *ProviderMetrics

	// Report tracks report runs and Telegram delivery.
	Report *ReportMetrics
}

// NewCollector creates a registry with Go runtime and process collectors plus
// the assay metric families.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry: registry,
		Provider: NewProviderMetrics(registry),
		Report:   NewReportMetrics(registry),
	}
}

// Registry exposes the underlying registry for tests and custom handlers.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
