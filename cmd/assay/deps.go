package main

import (
	"fmt"
	"log/slog"

	"bullion-hq/assay/pkg/config"
	"bullion-hq/assay/pkg/ledger"
	"bullion-hq/assay/pkg/marketdata"
	"bullion-hq/assay/pkg/report"
	"bullion-hq/assay/pkg/state"
	"bullion-hq/assay/pkg/telegram"
	"bullion-hq/assay/pkg/telemetry/metrics"
)

// deps holds the long-lived dependencies the report and run commands share:
// state store, run ledger, Telegram client, market data client, and metrics.
type deps struct {
	store     state.Store
	runs      ledger.Storage
	sender    report.Sender
	market    *marketdata.Client
	collector *metrics.Collector
}

// buildDeps wires the runtime dependencies from the configuration. The
// returned cleanup closes the stores and must run on every exit path.
func buildDeps(cfg *config.Config, logger *slog.Logger) (*deps, func(), error) {
	d := &deps{
		collector: metrics.NewCollector(),
	}

	store, err := state.Open(cfg.State)
	if err != nil {
		return nil, nil, fmt.Errorf("opening state store: %w", err)
	}
	d.store = store

	cleanup := func() {
		if d.runs != nil {
			_ = d.runs.Close()
		}
		_ = d.store.Close()
	}

	if cfg.Ledger.IsEnabled() {
		runs, err := ledger.Open(cfg.Ledger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("opening run ledger: %w", err)
		}
		d.runs = runs
	}

	if cfg.Telegram.BotToken != "" {
		client, err := telegram.New(telegram.Options{
			BotToken: cfg.Telegram.BotToken,
			ThreadID: cfg.Telegram.ThreadID,
			Timeout:  cfg.Telegram.Timeout,
			BaseURL:  cfg.Telegram.BaseURL,
			Logger:   logger,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("building telegram client: %w", err)
		}
		d.sender = client
	} else {
		logger.Warn("telegram bot token not configured, delivery disabled")
	}

	d.market = marketdata.New(cfg.MarketData, marketdata.Options{
		Logger:   logger,
		Recorder: d.collector.Report,
	})

	return d, cleanup, nil
}

// newRunner builds a report runner over the shared dependencies. Runners are
// cheap; the daemon builds a fresh one per scheduled firing so configuration
// reloads take effect without restarting the stores.
func (d *deps) newRunner(cfg *config.Config, logger *slog.Logger) (*report.Runner, error) {
	return report.NewRunner(report.Options{
		Config:   cfg,
		Store:    d.store,
		Ledger:   d.runs,
		Telegram: d.sender,
		Market:   d.market,
		Metrics:  d.collector,
		Logger:   logger,
	})
}
