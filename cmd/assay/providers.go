package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bullion-hq/assay/pkg/cli"
	"bullion-hq/assay/pkg/llm"
)

var providersFlags struct {
	check  bool
	output string
}

// providerInfo is one row of `assay providers`.
type providerInfo struct {
	Name      string `json:"name"`
	Model     string `json:"model,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	Available bool   `json:"available"`
}

type providersResult struct {
	Order     []string       `json:"order"`
	Providers []providerInfo `json:"providers"`
	Check     *checkResult   `json:"check,omitempty"`
}

type checkResult struct {
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Attempts int     `json:"attempts"`
	Seconds  float64 `json:"seconds"`
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show the LLM provider failover chain",
	Long: `Show the resolved provider failover order and which providers hold a
credential.

With --check a one-token generation is sent through the chain, confirming
that at least one provider actually answers.

Examples:
  assay providers
  assay providers --check
  assay providers --output json`,
	RunE: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.Flags().BoolVar(&providersFlags.check, "check", false, "send a one-token probe through the chain")
	providersCmd.Flags().StringVarP(&providersFlags.output, "output", "o", "text", "output format (text, json)")
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	format, err := cli.ParseFormat(providersFlags.output)
	if err != nil {
		return err
	}

	configs := cfg.ProviderConfigs()
	registry := llm.NewRegistry(configs)
	order := registry.Resolve(cfg.LLM.Preferred, cfg.LLM.Order)

	result := providersResult{Order: order}
	for _, name := range order {
		pc, ok := registry.Lookup(name)
		if !ok {
			continue
		}
		result.Providers = append(result.Providers, providerInfo{
			Name:      name,
			Model:     pc.Model,
			Endpoint:  pc.Endpoint,
			Available: pc.Available(),
		})
	}

	if providersFlags.check {
		check, err := probeChain(cfg.LLM.Preferred, cfg.LLM.Order, configs, cfg.LLM.Timeout)
		if err != nil {
			return cli.NewCommandError("providers", err)
		}
		result.Check = check
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, result)
	}

	fmt.Printf("Failover order: %v\n", result.Order)
	for _, p := range result.Providers {
		status := "no credential"
		if p.Available {
			status = "available"
		}
		fmt.Printf("  %-10s %-30s %s\n", p.Name, p.Model, status)
	}
	if result.Check != nil {
		fmt.Printf("\n✓ Probe answered by %s (%s) in %.1fs after %d attempt(s)\n",
			result.Check.Provider, result.Check.Model, result.Check.Seconds, result.Check.Attempts)
	}
	return nil
}

// probeChain sends a minimal generation through a fresh failover client.
func probeChain(preferred string, order []string, configs []llm.ProviderConfig, timeout time.Duration) (*checkResult, error) {
	client := llm.New(llm.Options{
		Preferred: preferred,
		Order:     order,
		Providers: configs,
		Timeout:   timeout,
		Logger:    slog.Default(),
	})
	defer client.Close()

	ctx := cli.SetupSignalHandler()
	start := time.Now()
	gen, err := client.Generate(ctx, &llm.GenerationRequest{
		Messages:  llm.BuildMessages("", "ping"),
		MaxTokens: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("probe failed: %w", err)
	}

	return &checkResult{
		Provider: gen.Provider,
		Model:    gen.Model,
		Attempts: gen.Attempts,
		Seconds:  time.Since(start).Seconds(),
	}, nil
}
