// Package logging builds the process-wide structured logger.
//
// The daemon and the one-shot report commands both log through log/slog;
// this package translates the telemetry.logging configuration section into
// a handler (JSON for services, text for terminals) at the configured
// level. Components receive the logger through their Options and attach
// their own "component" attribute.
package logging
