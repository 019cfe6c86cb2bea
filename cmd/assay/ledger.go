package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bullion-hq/assay/pkg/cli"
	"bullion-hq/assay/pkg/ledger"
)

var ledgerFlags struct {
	job    string
	status string
	since  string
	until  string
	limit  int
	output string
	out    string
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the report run history",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded report runs, newest first",
	Long: `List recorded report runs, newest first.

Examples:
  assay ledger list --limit 20
  assay ledger list --job gold --status failed
  assay ledger list --since 2026-08-01 --output json`,
	RunE: runLedgerList,
}

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run records as JSON or CSV",
	Long: `Export run records as JSON or CSV, to stdout or a file.

Examples:
  assay ledger export --output csv --out runs.csv
  assay ledger export --job silver --since 2026-01-01 --output json`,
	RunE: runLedgerExport,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)

	for _, cmd := range []*cobra.Command{ledgerListCmd, ledgerExportCmd} {
		cmd.Flags().StringVar(&ledgerFlags.job, "job", "", "filter by report job (gold, silver, copper)")
		cmd.Flags().StringVar(&ledgerFlags.status, "status", "", "filter by run status (sent, generated, skipped, failed)")
		cmd.Flags().StringVar(&ledgerFlags.since, "since", "", "runs started at or after (RFC3339 or YYYY-MM-DD)")
		cmd.Flags().StringVar(&ledgerFlags.until, "until", "", "runs started before (RFC3339 or YYYY-MM-DD)")
		cmd.Flags().IntVar(&ledgerFlags.limit, "limit", 0, "cap the number of records (0 = no cap)")
	}
	ledgerListCmd.Flags().StringVarP(&ledgerFlags.output, "output", "o", "text", "output format (text, json)")
	ledgerExportCmd.Flags().StringVarP(&ledgerFlags.output, "output", "o", "json", "export format (json, csv)")
	ledgerExportCmd.Flags().StringVar(&ledgerFlags.out, "out", "", "write to a file instead of stdout")
}

// parseTimeFlag accepts RFC3339 timestamps or bare dates.
func parseTimeFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("cannot parse time %q (want RFC3339 or YYYY-MM-DD)", value)
}

func ledgerQuery() (*ledger.Query, error) {
	since, err := parseTimeFlag(ledgerFlags.since)
	if err != nil {
		return nil, err
	}
	until, err := parseTimeFlag(ledgerFlags.until)
	if err != nil {
		return nil, err
	}
	return &ledger.Query{
		Job:    ledgerFlags.job,
		Status: ledgerFlags.status,
		Since:  since,
		Until:  until,
		Limit:  ledgerFlags.limit,
	}, nil
}

func queryRecords(cmd *cobra.Command) ([]*ledger.Record, error) {
	cfg, err := setup()
	if err != nil {
		return nil, err
	}
	q, err := ledgerQuery()
	if err != nil {
		return nil, err
	}

	storage, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return nil, cli.NewCommandError("ledger", err)
	}
	defer storage.Close()

	records, err := storage.Query(cmd.Context(), q)
	if err != nil {
		return nil, cli.NewCommandError("ledger", err)
	}
	return records, nil
}

func runLedgerList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(ledgerFlags.output)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return fmt.Errorf("list output must be text or json, use `ledger export` for csv")
	}
	records, err := queryRecords(cmd)
	if err != nil {
		return err
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("No run records.")
		return nil
	}
	for _, r := range records {
		line := fmt.Sprintf("%s  %-7s %-9s Nº %-4d %s (%d attempts, %.1fs)",
			r.StartedAt.Format("2006-01-02 15:04"),
			r.Job, r.Status, r.Number, r.Provider, r.Attempts, r.Duration.Seconds())
		if r.Error != "" {
			line += "  error: " + r.Error
		}
		fmt.Println(line)
	}
	return nil
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(ledgerFlags.output)
	if err != nil {
		return err
	}

	var exporter ledger.Exporter
	switch format {
	case cli.FormatJSON:
		exporter = &ledger.JSONExporter{Pretty: true}
	case cli.FormatCSV:
		exporter = &ledger.CSVExporter{IncludeHeader: true}
	default:
		return fmt.Errorf("export format must be json or csv")
	}

	records, err := queryRecords(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if ledgerFlags.out != "" {
		f, err := os.Create(ledgerFlags.out)
		if err != nil {
			return cli.NewCommandError("ledger export", err)
		}
		defer f.Close()
		w = f
	}

	if err := exporter.Export(cmd.Context(), records, w); err != nil {
		return cli.NewCommandError("ledger export", err)
	}
	if ledgerFlags.out != "" {
		fmt.Printf("✓ Exported %d records to %s\n", len(records), ledgerFlags.out)
	}
	return nil
}
