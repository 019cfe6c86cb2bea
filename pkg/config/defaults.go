package config

import (
	"time"

	"bullion-hq/assay/pkg/llm"
)

// Default values for configuration fields.
const (
	// LLM defaults
	DefaultLLMTimeout = 60 * time.Second

	// Report defaults. Schedules are staggered so the jobs never generate
	// concurrently; expressions run in the BRT location.
	DefaultGoldSchedule   = "0 9 * * *"
	DefaultSilverSchedule = "15 9 * * *"
	DefaultCopperSchedule = "30 9 * * *"

	// Market data defaults
	DefaultMarketDataTimeout = 20 * time.Second
	DefaultMarketDataRetries = 2

	// Telegram defaults
	DefaultTelegramTimeout = 30 * time.Second

	// State defaults
	DefaultStateBackend = "file"
	DefaultStateDir     = "data/state"

	// Ledger defaults
	DefaultLedgerBackend           = "sqlite"
	DefaultLedgerSQLitePath        = "data/ledger.db"
	DefaultLedgerRetentionDays     = 180
	DefaultLedgerRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
)

// DefaultJobKeys are the report jobs seeded when the file configures none.
var DefaultJobKeys = []string{"gold", "silver", "copper"}

// ApplyDefaults fills zero-valued configuration fields with defaults.
// It is idempotent and never overwrites explicitly configured values.
func ApplyDefaults(cfg *Config) {
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = DefaultLLMTimeout
	}
	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = make(map[string]ProviderConfig)
	}
	// Every catalog provider gets an entry so a credential in the
	// environment is enough to make it available.
	for _, name := range llm.DefaultOrder {
		if _, ok := cfg.LLM.Providers[name]; !ok {
			cfg.LLM.Providers[name] = ProviderConfig{}
		}
	}

	if cfg.Reports.Jobs == nil {
		cfg.Reports.Jobs = make(map[string]ReportJobConfig)
	}
	defaultSchedules := map[string]string{
		"gold":   DefaultGoldSchedule,
		"silver": DefaultSilverSchedule,
		"copper": DefaultCopperSchedule,
	}
	for _, key := range DefaultJobKeys {
		job := cfg.Reports.Jobs[key]
		if job.Schedule == "" {
			job.Schedule = defaultSchedules[key]
		}
		cfg.Reports.Jobs[key] = job
	}

	if cfg.MarketData.Timeout <= 0 {
		cfg.MarketData.Timeout = DefaultMarketDataTimeout
	}
	if cfg.MarketData.Retries <= 0 {
		cfg.MarketData.Retries = DefaultMarketDataRetries
	}

	if cfg.Telegram.Timeout <= 0 {
		cfg.Telegram.Timeout = DefaultTelegramTimeout
	}

	if cfg.State.Backend == "" {
		cfg.State.Backend = DefaultStateBackend
	}
	if cfg.State.Dir == "" {
		cfg.State.Dir = DefaultStateDir
	}

	if cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = DefaultLedgerBackend
	}
	if cfg.Ledger.SQLitePath == "" {
		cfg.Ledger.SQLitePath = DefaultLedgerSQLitePath
	}
	if cfg.Ledger.Retention.Days == 0 {
		cfg.Ledger.Retention.Days = DefaultLedgerRetentionDays
	}
	if cfg.Ledger.Retention.Schedule == "" {
		cfg.Ledger.Retention.Schedule = DefaultLedgerRetentionSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// DefaultConfig returns a fully defaulted configuration, the one used when
// no configuration file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
