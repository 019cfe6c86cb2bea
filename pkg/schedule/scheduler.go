// Package schedule runs the daily report jobs on cron expressions.
//
// All expressions are evaluated in the report timezone (America/Sao_Paulo,
// BRT), matching the dates printed in the reports themselves, so "0 8 * * *"
// fires at 08:00 Brasília time regardless of where the daemon runs.
package schedule

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Location is the timezone the report jobs run in.
var Location = mustLoadLocation()

func mustLoadLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// No tzdata on the host; BRT has had no DST since 2019.
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}

// Entry describes one scheduled job.
type Entry struct {
	// Name is the job name given to AddJob.
	Name string

	// Spec is the cron expression.
	Spec string

	// Next is when the job fires next.
	Next time.Time
}

// Scheduler wraps a cron runner pinned to the report timezone.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	names   map[cron.EntryID]string
	specs   map[cron.EntryID]string
	running bool
}

// New creates a stopped scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(Location)),
		logger: logger.With("component", "schedule"),
		names:  make(map[cron.EntryID]string),
		specs:  make(map[cron.EntryID]string),
	}
}

// AddJob schedules fn on the cron expression. The expression is validated
// before registration so a bad configuration fails at startup, not at the
// first missed trigger.
func (s *Scheduler) AddJob(name, spec string, fn func()) error {
	if name == "" {
		return fmt.Errorf("job name cannot be empty")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("schedule fired", "job", name)
		fn()
	})
	if err != nil {
		return fmt.Errorf("scheduling job %s: %w", name, err)
	}
	s.names[id] = name
	s.specs[id] = spec

	s.logger.Info("job scheduled", "job", name, "spec", spec, "timezone", Location.String())
	return nil
}

// Start begins firing jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.cron.Start()
		s.running = true
	}
}

// Stop stops firing and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("scheduler stopped")
	}
}

// Entries returns the scheduled jobs with their next fire times, in
// registration order.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	cronEntries := s.cron.Entries()
	entries := make([]Entry, 0, len(cronEntries))
	for _, ce := range cronEntries {
		entries = append(entries, Entry{
			Name: s.names[ce.ID],
			Spec: s.specs[ce.ID],
			Next: ce.Next,
		})
	}
	return entries
}
