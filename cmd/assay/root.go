package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"bullion-hq/assay/pkg/cli"
	"bullion-hq/assay/pkg/config"
	"bullion-hq/assay/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "assay",
	Short: "Assay - daily commodities reports over an LLM failover chain",
	Long: `Assay generates daily PT-BR market reports for gold, silver, and copper
and posts them to Telegram.

Reports are produced by an LLM behind a provider failover chain, fed with a
best-effort market data snapshot (Yahoo Finance, FRED, World Bank), numbered
by a persistent counter, and guarded by a daily send lock so each report goes
out at most once per day.

Configuration comes from an optional YAML file plus environment variables;
the well-known names (TELEGRAM_BOT_TOKEN, PIAPI_API_KEY, FRED_API_KEY, ...)
always win over file values. A .env file in the working directory is loaded
automatically.

For more information, visit: https://github.com/bullion-hq/assay`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// setup loads .env and the configuration, installs the default logger, and
// returns the active configuration. Commands that need config call it first.
func setup() (*config.Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.Get()

	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    os.Stderr,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	return cfg, nil
}
