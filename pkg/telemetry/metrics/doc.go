// Package metrics exposes the daemon's Prometheus metrics.
//
// A single Collector owns the registry and two metric families: provider
// metrics (attempts, errors by type, failovers, generation latency) and
// report metrics (run outcomes, run duration, Telegram delivery, market
// data fetches). The daemon serves the exposition endpoint and a /healthz
// liveness probe from Collector.Mux.
package metrics
