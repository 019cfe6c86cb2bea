package main

import (
	"testing"

	"bullion-hq/assay/pkg/report"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := []string{"run", "report", "providers", "ledger", "version", "completion"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag --%s missing", name)
		}
	}
}

func TestReportCommandValidArgs(t *testing.T) {
	keys := report.Keys()
	if len(reportCmd.ValidArgs) != len(keys) {
		t.Fatalf("ValidArgs = %v, want %v", reportCmd.ValidArgs, keys)
	}
	for i, key := range keys {
		if reportCmd.ValidArgs[i] != key {
			t.Errorf("ValidArgs[%d] = %q, want %q", i, reportCmd.ValidArgs[i], key)
		}
	}
}

func TestReportCommandFlags(t *testing.T) {
	for _, name := range []string{"send-telegram", "force", "preview", "provider", "state-dir"} {
		if reportCmd.Flags().Lookup(name) == nil {
			t.Errorf("report flag --%s missing", name)
		}
	}
}

func TestLedgerSubcommandFlags(t *testing.T) {
	shared := []string{"job", "status", "since", "until", "limit"}
	for _, name := range shared {
		if ledgerListCmd.Flags().Lookup(name) == nil {
			t.Errorf("ledger list flag --%s missing", name)
		}
		if ledgerExportCmd.Flags().Lookup(name) == nil {
			t.Errorf("ledger export flag --%s missing", name)
		}
	}
	if ledgerExportCmd.Flags().Lookup("out") == nil {
		t.Error("ledger export flag --out missing")
	}
}
