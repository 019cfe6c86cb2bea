package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner deletes run records older than the retention window, on demand or
// on a cron schedule.
type Pruner struct {
	storage  Storage
	days     int
	schedule string
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewPruner creates a pruner keeping days of history. Zero days disables
// pruning entirely.
func NewPruner(storage Storage, days int, schedule string, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		storage:  storage,
		days:     days,
		schedule: schedule,
		logger:   logger.With("component", "ledger.retention"),
		cron:     cron.New(),
	}
}

// Prune deletes records older than the retention window and returns how
// many went.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.days <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -p.days)
	deleted, err := p.storage.Delete(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning ledger: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("pruned run records",
			"deleted", deleted,
			"retention_days", p.days,
		)
	}
	return deleted, nil
}

// Start schedules pruning on the configured cron expression. With no
// schedule or no retention window it does nothing.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.days <= 0 || p.schedule == "" {
		p.logger.Debug("ledger retention not configured, scheduler idle")
		return nil
	}

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", p.schedule, err)
	}

	_, err := p.cron.AddFunc(p.schedule, func() {
		if _, err := p.Prune(ctx); err != nil {
			p.logger.Error("scheduled ledger pruning failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling ledger pruning: %w", err)
	}

	p.cron.Start()
	p.running = true
	p.logger.Info("ledger retention scheduler started",
		"schedule", p.schedule,
		"retention_days", p.days,
	)
	return nil
}

// Stop stops the scheduler and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		<-p.cron.Stop().Done()
		p.running = false
		p.logger.Info("ledger retention scheduler stopped")
	}
}
