package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"bullion-hq/assay/pkg/config"
	"bullion-hq/assay/pkg/ledger"
	"bullion-hq/assay/pkg/llm"
	"bullion-hq/assay/pkg/marketdata"
	"bullion-hq/assay/pkg/state"
	"bullion-hq/assay/pkg/telemetry/metrics"
)

// Fallback attribution used when the whole provider chain is down. The run
// still publishes so subscribers see the outage instead of silence.
const (
	unavailableProvider = "indisponível"
	unavailableBody     = "⚠️ Não foi possível gerar o relatório de hoje: todos os provedores LLM " +
		"estão indisponíveis no momento. A geração será retomada automaticamente na próxima execução."
)

// Generator is the slice of the failover client the runner needs.
// *llm.FailoverClient satisfies it.
type Generator interface {
	Generate(ctx context.Context, req *llm.GenerationRequest) (*llm.Generation, error)
	Providers() ([]string, error)
	Close() error
}

// Sender is the slice of the Telegram client the runner needs.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// RunOptions are the per-run switches, mirroring the CLI flags.
type RunOptions struct {
	// Force bypasses the daily lock.
	Force bool

	// Preview routes delivery to the test chat and leaves the daily lock
	// untouched, so a preview never consumes the day's real send.
	Preview bool

	// SendTelegram enables delivery.
	SendTelegram bool

	// Provider moves one provider to the front of the failover order.
	Provider string
}

// Result is the outcome of one run.
type Result struct {
	Job      string
	Status   string
	Number   int
	Title    string
	Text     string
	Provider string
	Model    string
	Attempts int
	Duration time.Duration
}

// Options wires a Runner. Config and Store are required; everything else
// degrades gracefully when absent.
type Options struct {
	Config *config.Config
	Store  state.Store

	// Ledger records run outcomes; nil disables recording.
	Ledger ledger.Storage

	// Telegram delivers reports; nil skips delivery even when requested.
	Telegram Sender

	// Market gathers the live context; nil falls back to the static
	// baseline bullets.
	Market *marketdata.Client

	// Metrics counts runs, sends, and provider activity; nil disables.
	Metrics *metrics.Collector

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Stdout receives the final report text; defaults to os.Stdout.
	Stdout io.Writer

	// NewGenerator overrides failover client construction, mainly for
	// tests. The argument is the preferred provider, possibly empty.
	NewGenerator func(preferred string) Generator
}

// Runner executes report jobs.
type Runner struct {
	cfg     *config.Config
	store   state.Store
	runs    ledger.Storage
	sender  Sender
	market  *marketdata.Client
	metrics *metrics.Collector
	logger  *slog.Logger
	stdout  io.Writer
	newGen  func(preferred string) Generator
	now     func() time.Time
}

// NewRunner builds a runner from its dependencies.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, errors.New("report: Config is required")
	}
	if opts.Store == nil {
		return nil, errors.New("report: Store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	r := &Runner{
		cfg:     opts.Config,
		store:   opts.Store,
		runs:    opts.Ledger,
		sender:  opts.Telegram,
		market:  opts.Market,
		metrics: opts.Metrics,
		logger:  logger.With("component", "report"),
		stdout:  stdout,
		newGen:  opts.NewGenerator,
		now:     time.Now,
	}
	if r.newGen == nil {
		r.newGen = r.failoverGenerator
	}
	return r, nil
}

func (r *Runner) failoverGenerator(preferred string) Generator {
	if preferred == "" {
		preferred = r.cfg.LLM.Preferred
	}
	return llm.New(llm.Options{
		Preferred: preferred,
		Order:     r.cfg.LLM.Order,
		Providers: r.cfg.ProviderConfigs(),
		Timeout:   r.cfg.LLM.Timeout,
		Logger:    r.logger,
	})
}

// Run executes one report job end to end. The final text is always written
// to stdout; delivery, the ledger, and metrics are best-effort around it.
func (r *Runner) Run(ctx context.Context, spec Spec, opts RunOptions) (*Result, error) {
	started := r.now()
	day := DayTag(started)
	logger := r.logger.With("job", spec.Key, "day", day)

	if !opts.Force && !opts.Preview {
		acquired, err := r.store.AcquireDaily(ctx, spec.Key, day)
		if err != nil {
			return nil, fmt.Errorf("acquiring daily lock: %w", err)
		}
		if !acquired {
			logger.Info("report already sent today, skipping")
			result := &Result{Job: spec.Key, Status: ledger.StatusSkipped}
			r.finish(ctx, spec, started, result, "")
			return result, nil
		}
	}

	number, err := r.store.NextCounter(ctx, spec.CounterKey)
	if err != nil {
		return nil, fmt.Errorf("advancing report counter: %w", err)
	}

	var snap *marketdata.Snapshot
	if r.market != nil {
		snap = r.market.Snapshot(ctx, spec.SnapshotRequest())
	}
	userPrompt := spec.UserPrompt(spec.ContextBlock(snap))

	result := &Result{
		Job:    spec.Key,
		Number: number,
		Title:  Title(spec.Pair, FormatDate(started), number),
	}

	body, genErr := r.generate(ctx, spec, userPrompt, opts.Provider, result)
	if genErr != nil {
		result.Status = ledger.StatusFailed
		r.finish(ctx, spec, started, result, genErr.Error())
		return nil, genErr
	}

	elapsed := result.Duration
	result.Text = ComposeMessage(result.Title, body, result.Provider, elapsed)
	fmt.Fprintln(r.stdout, result.Text)

	result.Status = ledger.StatusGenerated
	var failMsg string
	if opts.SendTelegram {
		if err := r.deliver(ctx, result.Text, opts.Preview); err != nil {
			logger.Error("telegram delivery failed", "error", err)
			result.Status = ledger.StatusFailed
			failMsg = err.Error()
			r.finish(ctx, spec, started, result, failMsg)
			return result, err
		}
		result.Status = ledger.StatusSent
		logger.Info("report delivered", "number", number, "provider", result.Provider)
	}

	r.finish(ctx, spec, started, result, failMsg)
	return result, nil
}

// generate runs the failover chain. A chain where every provider fails
// degrades to the static outage text instead of failing the run; any other
// error is terminal.
func (r *Runner) generate(ctx context.Context, spec Spec, userPrompt, preferred string, result *Result) (string, error) {
	client := r.newGen(preferred)
	defer client.Close()

	genStart := r.now()
	gen, err := client.Generate(ctx, &llm.GenerationRequest{
		Messages:    llm.BuildMessages(spec.SystemPrompt, userPrompt),
		Temperature: spec.Temperature,
		MaxTokens:   spec.MaxTokens,
	})
	result.Duration = r.now().Sub(genStart)

	if err != nil {
		var allFailed *llm.AllProvidersFailedError
		if !errors.As(err, &allFailed) {
			return "", fmt.Errorf("generating report: %w", err)
		}
		r.logger.Error("every provider failed, publishing outage notice",
			"job", spec.Key, "attempted", allFailed.Attempted, "error", allFailed.Err)
		if r.metrics != nil && len(allFailed.Attempted) > 0 {
			last := allFailed.Attempted[len(allFailed.Attempted)-1]
			r.metrics.Provider.RecordError(last, allFailed.Err)
		}
		result.Provider = unavailableProvider
		result.Attempts = len(allFailed.Attempted)
		return unavailableBody, nil
	}

	result.Provider = gen.Provider
	result.Model = gen.Model
	result.Attempts = gen.Attempts
	if r.metrics != nil {
		r.metrics.Provider.RecordRequest(gen.Provider, gen.Model)
		r.metrics.Provider.RecordGeneration(gen.Provider, result.Duration.Seconds())
		if gen.Attempts > 1 {
			// A fresh per-run client starts at the head of the chain,
			// so more than one attempt means the head was rotated out.
			if names, err := client.Providers(); err == nil && len(names) > 0 {
				r.metrics.Provider.RecordFailover(names[0], gen.Provider)
			}
		}
	}
	return strings.TrimSpace(gen.Text), nil
}

func (r *Runner) deliver(ctx context.Context, text string, preview bool) error {
	if r.sender == nil {
		r.logger.Warn("telegram not configured, skipping delivery")
		return nil
	}
	chatID := r.cfg.Telegram.ChatID
	if preview && r.cfg.Telegram.TestChatID != "" {
		chatID = r.cfg.Telegram.TestChatID
	}
	if err := r.sender.SendMessage(ctx, chatID, text); err != nil {
		if r.metrics != nil {
			r.metrics.Report.RecordSend(false)
		}
		return fmt.Errorf("sending to telegram: %w", err)
	}
	if r.metrics != nil {
		r.metrics.Report.RecordSend(true)
	}
	return nil
}

// finish writes the ledger record and the run metrics.
func (r *Runner) finish(ctx context.Context, spec Spec, started time.Time, result *Result, failMsg string) {
	seconds := r.now().Sub(started).Seconds()
	if r.metrics != nil {
		r.metrics.Report.RecordRun(spec.Key, result.Status, seconds)
	}
	if r.runs == nil {
		return
	}

	rec := ledger.NewRecord(spec.Key)
	rec.StartedAt = started.UTC()
	rec.Duration = r.now().Sub(started)
	rec.Number = result.Number
	rec.Title = result.Title
	rec.Provider = result.Provider
	rec.Model = result.Model
	rec.Attempts = result.Attempts
	rec.Status = result.Status
	rec.Error = failMsg
	if err := r.runs.Store(ctx, rec); err != nil {
		r.logger.Warn("recording run failed", "job", spec.Key, "error", err)
	}
}
