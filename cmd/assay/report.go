package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"bullion-hq/assay/pkg/cli"
	"bullion-hq/assay/pkg/ledger"
	"bullion-hq/assay/pkg/report"
)

var reportFlags struct {
	sendTelegram bool
	force        bool
	preview      bool
	provider     string
	stateDir     string
}

var reportCmd = &cobra.Command{
	Use:       "report [gold|silver|copper]",
	Short:     "Generate a daily report once",
	ValidArgs: report.Keys(),
	Args:      cobra.OnlyValidArgs,
	Long: `Generate one or more daily reports immediately and print them to stdout.

Without arguments every configured job runs in publication order. The daily
lock still applies: a job already sent today is skipped unless --force is
given. --preview routes delivery to the test chat and leaves the lock alone.

Examples:
  # Print the gold report without delivering it
  assay report gold

  # Generate and deliver all reports
  assay report --send-telegram

  # Re-send today's silver report through a specific provider
  assay report silver --send-telegram --force --provider groq

  # Rehearse delivery against the test chat
  assay report copper --send-telegram --preview`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&reportFlags.sendTelegram, "send-telegram", false, "deliver the report to Telegram")
	reportCmd.Flags().BoolVar(&reportFlags.force, "force", false, "bypass the daily send lock")
	reportCmd.Flags().BoolVar(&reportFlags.preview, "preview", false, "deliver to the test chat and leave the daily lock alone")
	reportCmd.Flags().StringVar(&reportFlags.provider, "provider", "", "preferred LLM provider for this run")
	reportCmd.Flags().StringVar(&reportFlags.stateDir, "state-dir", "", "override the file state directory (counters and sent stamps)")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if reportFlags.stateDir != "" {
		cfg.State.Backend = "file"
		cfg.State.Dir = reportFlags.stateDir
	}

	keys := args
	if len(keys) == 0 {
		for _, key := range report.Keys() {
			if job, ok := cfg.Reports.Jobs[key]; !ok || job.IsEnabled() {
				keys = append(keys, key)
			}
		}
	}

	d, cleanup, err := buildDeps(cfg, slog.Default())
	if err != nil {
		return cli.NewCommandError("report", err)
	}
	defer cleanup()

	runner, err := d.newRunner(cfg, slog.Default())
	if err != nil {
		return cli.NewCommandError("report", err)
	}

	opts := report.RunOptions{
		Force:        reportFlags.force,
		Preview:      reportFlags.preview,
		SendTelegram: reportFlags.sendTelegram,
		Provider:     reportFlags.provider,
	}

	ctx := cli.SetupSignalHandler()
	for _, key := range keys {
		spec, err := report.SpecFor(key)
		if err != nil {
			return cli.NewCommandError("report", err)
		}
		result, err := runner.Run(ctx, spec, opts)
		if err != nil {
			return cli.NewCommandError("report", err)
		}
		if result.Status == ledger.StatusSkipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: already sent today, use --force to override\n", key)
		}
	}
	return nil
}
