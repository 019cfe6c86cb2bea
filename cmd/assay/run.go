package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"bullion-hq/assay/pkg/cli"
	"bullion-hq/assay/pkg/config"
	"bullion-hq/assay/pkg/ledger"
	"bullion-hq/assay/pkg/report"
	"bullion-hq/assay/pkg/schedule"
)

// jobTimeout bounds one scheduled report run end to end: market data
// gather, the full failover sweep, and delivery.
const jobTimeout = 10 * time.Minute

var runFlags struct {
	dryRun bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the report scheduler daemon",
	Long: `Start the daemon that runs the enabled report jobs on their cron
schedules, evaluated in the BRT location.

The daemon also serves Prometheus metrics, prunes old ledger records, and
hot-reloads the configuration file on change. Schedule changes require a
restart; everything else takes effect on the next run.

Examples:
  # Start with environment-only configuration
  assay run

  # Start with a config file
  assay run --config /etc/assay/config.yaml

  # Validate config without starting
  assay run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the daemon")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		for _, key := range cfg.JobKeys() {
			job := cfg.Reports.Jobs[key]
			status := "enabled"
			if !job.IsEnabled() {
				status = "disabled"
			}
			fmt.Printf("  %s: %s (%s)\n", key, job.Schedule, status)
		}
		return nil
	}

	fmt.Printf("Assay v%s\n", Version)
	if cfgFile != "" {
		fmt.Printf("Loading configuration from: %s\n", cfgFile)
	} else {
		fmt.Println("Loading configuration from environment")
	}
	fmt.Println("✓ Configuration loaded")

	d, cleanup, err := buildDeps(cfg, slog.Default())
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hot-reload the configuration file. The reload swaps the singleton;
	// each scheduled firing reads it fresh.
	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, slog.Default())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			err := watcher.Watch(ctx, func(next *config.Config) {
				config.Set(next)
				slog.Info("configuration reloaded",
					"note", "schedule changes apply after restart")
			})
			if err != nil {
				slog.Error("configuration watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	scheduler := schedule.New(slog.Default())
	jobs := 0
	for _, key := range cfg.JobKeys() {
		jobCfg := cfg.Reports.Jobs[key]
		if !jobCfg.IsEnabled() {
			slog.Info("report job disabled", "job", key)
			continue
		}
		spec, err := report.SpecFor(key)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		if err := scheduler.AddJob(key, jobCfg.Schedule, d.scheduledRun(spec)); err != nil {
			return cli.NewCommandError("run", err)
		}
		jobs++
	}
	if jobs == 0 {
		return cli.NewCommandError("run", errors.New("no report jobs enabled"))
	}

	// Prune old run records on the retention schedule.
	if d.runs != nil {
		pruner := ledger.NewPruner(d.runs, cfg.Ledger.Retention.Days, cfg.Ledger.Retention.Schedule, slog.Default())
		if err := pruner.Start(ctx); err != nil {
			slog.Warn("ledger retention scheduler not started", "error", err)
		} else {
			defer pruner.Stop()
		}
	}

	errChan := make(chan error, 1)
	var metricsSrv *http.Server
	if cfg.Telemetry.Metrics.IsEnabled() {
		metricsSrv = &http.Server{
			Addr:    cfg.Telemetry.Metrics.ListenAddress,
			Handler: d.collector.Mux(cfg.Telemetry.Metrics.Path),
		}
		go func() {
			slog.Info("metrics server listening",
				"address", metricsSrv.Addr,
				"path", cfg.Telemetry.Metrics.Path,
			)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	scheduler.Start()
	defer scheduler.Stop()

	fmt.Printf("✓ Scheduler running (%d jobs)\n", jobs)
	for _, entry := range scheduler.Entries() {
		fmt.Printf("  %s: next run %s\n", entry.Name, entry.Next.Format(time.RFC3339))
	}
	if metricsSrv != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", metricsSrv.Addr, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()
	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		if metricsSrv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", "error", err)
			}
		}

		fmt.Println("✓ Daemon stopped")
		return nil
	}
}

// scheduledRun builds the closure the scheduler fires for one job. It reads
// the configuration singleton at firing time, so reloaded settings apply.
func (d *deps) scheduledRun(spec report.Spec) func() {
	return func() {
		cfg := config.Get()
		runner, err := d.newRunner(cfg, slog.Default())
		if err != nil {
			slog.Error("building report runner failed", "job", spec.Key, "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		result, err := runner.Run(ctx, spec, report.RunOptions{
			SendTelegram: cfg.Reports.SendTelegram,
		})
		if err != nil {
			slog.Error("scheduled report run failed", "job", spec.Key, "error", err)
			return
		}
		slog.Info("scheduled report run finished",
			"job", spec.Key,
			"status", result.Status,
			"number", result.Number,
		)
	}
}
