package config

import (
	"sort"
	"time"

	"bullion-hq/assay/pkg/llm"
)

// Config is the root configuration for the assay daemon and CLI.
// All sections are optional in the YAML file; ApplyDefaults fills a working
// configuration and well-known environment variables override it, so the
// program runs with no file at all.
type Config struct {
	// LLM configures the provider failover chain used for generation.
	LLM LLMConfig `yaml:"llm"`

	// Reports configures the per-metal report jobs.
	Reports ReportsConfig `yaml:"reports"`

	// MarketData configures the market fact fetchers.
	MarketData MarketDataConfig `yaml:"market_data"`

	// Telegram configures report delivery.
	Telegram TelegramConfig `yaml:"telegram"`

	// State configures report counters and daily send locks.
	State StateConfig `yaml:"state"`

	// Ledger configures the report run history.
	Ledger LedgerConfig `yaml:"ledger"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LLMConfig configures the failover chain.
type LLMConfig struct {
	// Preferred names the provider placed at the front of the order.
	Preferred string `yaml:"preferred"`

	// Order is the failover order; empty means the built-in default
	// (piapi, groq, openai, deepseek).
	Order []string `yaml:"order"`

	// Timeout applies to providers that do not set their own.
	Timeout time.Duration `yaml:"timeout"`

	// Providers maps provider names to their settings. Names matching the
	// built-in catalog inherit endpoint and default model; custom names
	// must set an endpoint.
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds the file-level settings for one provider.
type ProviderConfig struct {
	// APIKey is the bearer credential. Usually left empty in the file and
	// resolved from the environment (PIAPI_API_KEY etc.).
	APIKey string `yaml:"api_key"`

	// Model overrides the catalog default model.
	Model string `yaml:"model"`

	// Endpoint overrides the catalog chat completions URL. Required for
	// custom provider names.
	Endpoint string `yaml:"endpoint"`

	// Timeout overrides the chain timeout for this provider.
	Timeout time.Duration `yaml:"timeout"`

	// Extra is merged verbatim into every request body sent to this
	// provider, e.g. {"stream": false} for endpoints that default it on.
	Extra map[string]any `yaml:"extra"`
}

// ReportsConfig configures the report jobs.
type ReportsConfig struct {
	// SendTelegram enables Telegram delivery for scheduled runs.
	SendTelegram bool `yaml:"send_telegram"`

	// Jobs maps job keys (gold, silver, copper) to their settings.
	Jobs map[string]ReportJobConfig `yaml:"jobs"`
}

// ReportJobConfig holds the settings for one report job.
type ReportJobConfig struct {
	// Enabled controls whether the daemon schedules this job.
	// Unset means enabled.
	Enabled *bool `yaml:"enabled"`

	// Schedule is the cron expression for the daily trigger, evaluated in
	// the BRT (UTC-3) location.
	Schedule string `yaml:"schedule"`
}

// IsEnabled reports whether the job should be scheduled.
func (j ReportJobConfig) IsEnabled() bool {
	return j.Enabled == nil || *j.Enabled
}

// MarketDataConfig configures the market fact fetchers. The base URLs exist
// so tests can point fetchers at local servers; production leaves them empty
// and the fetchers use the public endpoints.
type MarketDataConfig struct {
	// FREDAPIKey is the api.stlouisfed.org credential; resolved from
	// FRED_API_KEY when empty. The dollar index fetch is skipped without it.
	FREDAPIKey string `yaml:"fred_api_key"`

	// GoldAPIKey is the goldapi.io credential; resolved from GOLDAPI_KEY
	// when empty. Used as a spot price fallback when Yahoo is unavailable.
	GoldAPIKey string `yaml:"goldapi_key"`

	// Timeout bounds each fetch.
	Timeout time.Duration `yaml:"timeout"`

	// Retries is how many extra attempts a failed GET is given.
	Retries int `yaml:"retries"`

	YahooBaseURL     string `yaml:"yahoo_base_url"`
	FREDBaseURL      string `yaml:"fred_base_url"`
	WorldBankBaseURL string `yaml:"worldbank_base_url"`
	GoldAPIBaseURL   string `yaml:"goldapi_base_url"`
}

// TelegramConfig configures report delivery.
type TelegramConfig struct {
	// BotToken authenticates against the Bot API; resolved from
	// TELEGRAM_BOT_TOKEN when empty. Delivery is skipped without it.
	BotToken string `yaml:"bot_token"`

	// ChatID is the production chat (TELEGRAM_CHAT_ID_METALS).
	ChatID string `yaml:"chat_id"`

	// TestChatID receives preview runs (TELEGRAM_CHAT_ID_TEST).
	TestChatID string `yaml:"test_chat_id"`

	// ThreadID posts into a forum topic when non-zero
	// (TELEGRAM_MESSAGE_THREAD_ID).
	ThreadID int64 `yaml:"thread_id"`

	// Timeout bounds each send.
	Timeout time.Duration `yaml:"timeout"`

	// BaseURL overrides the Bot API root for tests.
	BaseURL string `yaml:"base_url"`
}

// StateConfig configures counters and daily send locks.
type StateConfig struct {
	// Backend selects the store: file, sqlite, or memory.
	Backend string `yaml:"backend"`

	// Dir is where the file backend keeps counters.json and the per-job
	// sent stamps.
	Dir string `yaml:"dir"`

	// SQLitePath is the sqlite backend database file.
	SQLitePath string `yaml:"sqlite_path"`
}

// LedgerConfig configures the report run history.
type LedgerConfig struct {
	// Enabled controls whether runs are recorded at all.
	// Unset means enabled.
	Enabled *bool `yaml:"enabled"`

	// Backend selects the storage: sqlite or memory.
	Backend string `yaml:"backend"`

	// SQLitePath is the sqlite backend database file.
	SQLitePath string `yaml:"sqlite_path"`

	// Retention configures pruning of old run records.
	Retention RetentionConfig `yaml:"retention"`
}

// IsEnabled reports whether run recording is on.
func (l LedgerConfig) IsEnabled() bool {
	return l.Enabled == nil || *l.Enabled
}

// RetentionConfig configures ledger pruning.
type RetentionConfig struct {
	// Days is how long run records are kept; zero disables pruning.
	Days int `yaml:"days"`

	// Schedule is the cron expression for the prune pass.
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the slog setup.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`

	// AddSource includes source positions in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the daemon's Prometheus endpoint.
type MetricsConfig struct {
	// Enabled controls whether the daemon serves metrics at all.
	// Unset means enabled.
	Enabled *bool `yaml:"enabled"`

	// ListenAddress is the host:port the metrics server binds.
	ListenAddress string `yaml:"listen_address"`

	// Path is the metrics handler path.
	Path string `yaml:"path"`
}

// IsEnabled reports whether the metrics endpoint should be served.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// ProviderConfigs converts the configured providers into the failover
// client's configuration type. Names are emitted in catalog order first and
// remaining custom names alphabetically, so the result is deterministic.
func (c *Config) ProviderConfigs() []llm.ProviderConfig {
	emitted := make(map[string]bool, len(c.LLM.Providers))
	out := make([]llm.ProviderConfig, 0, len(c.LLM.Providers))

	emit := func(name string) {
		pc, ok := c.LLM.Providers[name]
		if !ok || emitted[name] {
			return
		}
		emitted[name] = true
		out = append(out, llm.ProviderConfig{
			Name:     name,
			APIKey:   pc.APIKey,
			Model:    pc.Model,
			Endpoint: pc.Endpoint,
			Timeout:  pc.Timeout,
			Extra:    pc.Extra,
		})
	}

	for _, name := range llm.DefaultOrder {
		emit(name)
	}
	custom := make([]string, 0, len(c.LLM.Providers))
	for name := range c.LLM.Providers {
		if !emitted[name] {
			custom = append(custom, name)
		}
	}
	sort.Strings(custom)
	for _, name := range custom {
		emit(name)
	}
	return out
}

// JobKeys returns the configured report job keys in a stable order.
func (c *Config) JobKeys() []string {
	keys := make([]string, 0, len(c.Reports.Jobs))
	for key := range c.Reports.Jobs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
