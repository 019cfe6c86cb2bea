// Package telemetry groups the observability concerns of the assay daemon.
//
// Two subpackages do the work:
//
//   - logging: builds the process slog logger from configuration
//   - metrics: Prometheus registry, metric families, and the exposition
//     endpoint with its /healthz liveness probe
//
// The one-shot report commands use logging only; the daemon wires both.
package telemetry
