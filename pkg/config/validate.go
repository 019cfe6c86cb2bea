package config

import (
	"fmt"
	"strings"

	"bullion-hq/assay/pkg/llm"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "state.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the whole configuration and collects every violation into
// one ValidationError instead of stopping at the first.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateLLM(&cfg.LLM)...)
	errs = append(errs, validateReports(cfg)...)
	errs = append(errs, validateMarketData(&cfg.MarketData)...)
	errs = append(errs, validateTelegram(cfg)...)
	errs = append(errs, validateState(&cfg.State)...)
	errs = append(errs, validateLedger(&cfg.Ledger)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateLLM(cfg *LLMConfig) []FieldError {
	var errs []FieldError

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "llm.timeout",
			Message: "timeout must not be negative",
		})
	}

	for name, provider := range cfg.Providers {
		if provider.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("llm.providers.%s.timeout", name),
				Message: "timeout must not be negative",
			})
		}
		if _, builtin := llm.Builtin(name); !builtin && provider.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("llm.providers.%s.endpoint", name),
				Message: "custom providers must set a chat completions URL",
			})
		}
	}

	return errs
}

func validateReports(cfg *Config) []FieldError {
	var errs []FieldError

	known := make(map[string]bool, len(DefaultJobKeys))
	for _, key := range DefaultJobKeys {
		known[key] = true
	}

	for key, job := range cfg.Reports.Jobs {
		if !known[key] {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("reports.jobs.%s", key),
				Message: "unknown report job, expected one of: gold, silver, copper",
			})
			continue
		}
		if job.IsEnabled() && job.Schedule == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("reports.jobs.%s.schedule", key),
				Message: "enabled jobs need a cron schedule",
			})
		}
	}

	return errs
}

func validateMarketData(cfg *MarketDataConfig) []FieldError {
	var errs []FieldError

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "market_data.timeout",
			Message: "timeout must not be negative",
		})
	}
	if cfg.Retries < 0 {
		errs = append(errs, FieldError{
			Field:   "market_data.retries",
			Message: "retries must not be negative",
		})
	}

	return errs
}

func validateTelegram(cfg *Config) []FieldError {
	var errs []FieldError

	// Delivery must fail loudly at startup when it is asked for but not
	// configured, instead of silently skipping every day.
	if cfg.Reports.SendTelegram {
		if cfg.Telegram.BotToken == "" {
			errs = append(errs, FieldError{
				Field:   "telegram.bot_token",
				Message: "required when reports.send_telegram is enabled (set TELEGRAM_BOT_TOKEN)",
			})
		}
		if cfg.Telegram.ChatID == "" {
			errs = append(errs, FieldError{
				Field:   "telegram.chat_id",
				Message: "required when reports.send_telegram is enabled (set TELEGRAM_CHAT_ID_METALS)",
			})
		}
	}
	if cfg.Telegram.ThreadID < 0 {
		errs = append(errs, FieldError{
			Field:   "telegram.thread_id",
			Message: "thread id must not be negative",
		})
	}

	return errs
}

func validateState(cfg *StateConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "file":
		if cfg.Dir == "" {
			errs = append(errs, FieldError{
				Field:   "state.dir",
				Message: "file backend needs a directory",
			})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, FieldError{
				Field:   "state.sqlite_path",
				Message: "sqlite backend needs a database path",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "state.backend",
			Message: fmt.Sprintf("unknown backend %q, expected file, sqlite, or memory", cfg.Backend),
		})
	}

	return errs
}

func validateLedger(cfg *LedgerConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, FieldError{
				Field:   "ledger.sqlite_path",
				Message: "sqlite backend needs a database path",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "ledger.backend",
			Message: fmt.Sprintf("unknown backend %q, expected sqlite or memory", cfg.Backend),
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.retention.days",
			Message: "retention days must not be negative",
		})
	}
	if cfg.Retention.Days > 0 && cfg.Retention.Schedule == "" {
		errs = append(errs, FieldError{
			Field:   "ledger.retention.schedule",
			Message: "retention needs a cron schedule",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q, expected debug, info, warn, or error", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q, expected json or text", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.IsEnabled() {
		if cfg.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen_address",
				Message: "metrics endpoint needs a listen address",
			})
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}

	return errs
}
