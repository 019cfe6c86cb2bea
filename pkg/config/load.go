package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"bullion-hq/assay/pkg/llm"
	"bullion-hq/assay/pkg/secrets"
)

// Load reads configuration from a YAML file, applies defaults, and
// validates the result. An empty path yields the default configuration, so
// the program runs from environment variables alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithEnv loads configuration from a YAML file and applies environment
// overrides. The loading sequence is: parse the file, apply defaults,
// apply environment variables, validate. Environment variables always win
// over file values.
//
// Two naming families are honored. The operational names the report
// tooling has always used:
//
//	LLM_PROVIDER, LLM_FALLBACK_ORDER (comma-separated)
//	PIAPI_API_KEY, GROQ_API_KEY, OPENAI_API_KEY, DEEPSEEK_API_KEY
//	PIAPI_MODEL, GROQ_MODEL, OPENAI_MODEL, DEEPSEEK_MODEL
//	TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID_METALS, TELEGRAM_CHAT_ID_TEST,
//	TELEGRAM_MESSAGE_THREAD_ID
//	FRED_API_KEY, GOLDAPI_KEY
//
// and ASSAY_-prefixed names for the remaining sections, e.g.
// ASSAY_TELEMETRY_LOGGING_LEVEL or ASSAY_STATE_DIR. Credentials also
// support <NAME>_FILE indirection for mounted secrets.
func LoadWithEnv(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)
	applyEnvOverrides(cfg, secrets.Default())

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides mutates cfg with values from the environment.
// Credentials go through the resolver so <NAME>_FILE indirection works.
func applyEnvOverrides(cfg *Config, resolver secrets.Resolver) {
	// LLM chain
	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		cfg.LLM.Preferred = strings.ToLower(strings.TrimSpace(val))
	}
	if val := os.Getenv("LLM_FALLBACK_ORDER"); val != "" {
		cfg.LLM.Order = splitOrder(val)
	}
	if val := os.Getenv("ASSAY_LLM_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.LLM.Timeout = d
		}
	}
	for _, name := range llm.DefaultOrder {
		applyProviderEnvOverrides(cfg, resolver, name)
	}
	// Custom providers configured in the file pick up credentials the
	// same way: <NAME>_API_KEY and <NAME>_MODEL.
	for name := range cfg.LLM.Providers {
		if _, builtin := llm.Builtin(name); !builtin {
			applyProviderEnvOverrides(cfg, resolver, name)
		}
	}

	// Reports
	if val := os.Getenv("ASSAY_REPORTS_SEND_TELEGRAM"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Reports.SendTelegram = b
		}
	}

	// Market data
	resolveSecret(resolver, "FRED_API_KEY", &cfg.MarketData.FREDAPIKey)
	resolveSecret(resolver, "GOLDAPI_KEY", &cfg.MarketData.GoldAPIKey)

	// Telegram
	resolveSecret(resolver, "TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	if val := os.Getenv("TELEGRAM_CHAT_ID_METALS"); val != "" {
		cfg.Telegram.ChatID = val
	}
	if val := os.Getenv("TELEGRAM_CHAT_ID_TEST"); val != "" {
		cfg.Telegram.TestChatID = val
	}
	if val := os.Getenv("TELEGRAM_MESSAGE_THREAD_ID"); val != "" {
		if id, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Telegram.ThreadID = id
		} else {
			slog.Warn("ignoring non-numeric TELEGRAM_MESSAGE_THREAD_ID", "value", val)
		}
	}

	// State
	if val := os.Getenv("ASSAY_STATE_BACKEND"); val != "" {
		cfg.State.Backend = val
	}
	if val := os.Getenv("ASSAY_STATE_DIR"); val != "" {
		cfg.State.Dir = val
	}
	if val := os.Getenv("ASSAY_STATE_SQLITE_PATH"); val != "" {
		cfg.State.SQLitePath = val
	}

	// Ledger
	if val := os.Getenv("ASSAY_LEDGER_BACKEND"); val != "" {
		cfg.Ledger.Backend = val
	}
	if val := os.Getenv("ASSAY_LEDGER_SQLITE_PATH"); val != "" {
		cfg.Ledger.SQLitePath = val
	}

	// Telemetry
	if val := os.Getenv("ASSAY_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("ASSAY_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("ASSAY_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
}

// applyProviderEnvOverrides applies <NAME>_API_KEY and <NAME>_MODEL for one
// provider, e.g. PIAPI_API_KEY and PIAPI_MODEL.
func applyProviderEnvOverrides(cfg *Config, resolver secrets.Resolver, name string) {
	provider := cfg.LLM.Providers[name]
	envName := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))

	resolveSecret(resolver, envName+"_API_KEY", &provider.APIKey)
	if val := os.Getenv(envName + "_MODEL"); val != "" {
		provider.Model = val
	}

	cfg.LLM.Providers[name] = provider
}

// resolveSecret overwrites dst when the resolver yields a value. Hard
// resolver errors (an unreadable secret file) are logged, not fatal, so one
// broken mount does not take the whole configuration down.
func resolveSecret(resolver secrets.Resolver, name string, dst *string) {
	value, err := resolver.Resolve(name)
	if err != nil {
		if !errors.Is(err, secrets.ErrNotFound) {
			slog.Warn("credential resolution failed", "name", name, "error", err)
		}
		return
	}
	*dst = value
}

// splitOrder parses a comma-separated provider order, trimming whitespace
// and dropping empty items.
func splitOrder(raw string) []string {
	parts := strings.Split(raw, ",")
	order := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		if name != "" {
			order = append(order, name)
		}
	}
	return order
}
