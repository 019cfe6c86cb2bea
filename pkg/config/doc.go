// Package config provides configuration management for the assay daemon and
// CLI.
//
// Configuration is read from an optional YAML file, filled with defaults,
// and overridden by environment variables, in that order. The environment
// surface keeps the names the report tooling has always used (LLM_PROVIDER,
// LLM_FALLBACK_ORDER, PIAPI_API_KEY, TELEGRAM_BOT_TOKEN, FRED_API_KEY and
// friends) alongside ASSAY_-prefixed names for the remaining sections.
// Credentials support <NAME>_FILE indirection for mounted secrets.
//
// A minimal configuration file:
//
//	llm:
//	  preferred: piapi
//	  order: [piapi, groq, openai, deepseek]
//	reports:
//	  send_telegram: true
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//
// Usage:
//
//	cfg, err := config.LoadWithEnv("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := llm.New(llm.Options{
//	    Preferred: cfg.LLM.Preferred,
//	    Order:     cfg.LLM.Order,
//	    Providers: cfg.ProviderConfigs(),
//	})
//
// The daemon additionally runs a Watcher that hot-reloads the file on
// change; a reload that fails validation keeps the previous configuration.
package config
