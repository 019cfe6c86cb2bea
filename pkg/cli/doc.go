/*
Package cli provides shared helpers for the assay command.

Output Formatting:

Commands that print structured results (ledger listings, provider status)
select a formatter from the --output flag:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	formatter := cli.NewFormatter(format)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

CSV output for ledger exports is produced by the ledger package's own
exporter; ParseFormat still validates the flag value.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
