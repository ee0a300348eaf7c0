package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RescanScheduler runs periodic full rescans of the rules directory on a
// cron schedule. It backstops the filesystem watcher, which can miss
// events on some platforms and across network mounts.
type RescanScheduler struct {
	schedule string
	reload   func() error
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewRescanScheduler creates a new rescan scheduler. The reload callback
// is invoked on every tick of the schedule.
func NewRescanScheduler(schedule string, reload func() error, logger *slog.Logger) *RescanScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RescanScheduler{
		schedule: schedule,
		reload:   reload,
		cron:     cron.New(),
		logger:   logger.With("component", "manager.scheduler"),
	}
}

// Start begins scheduled rescans based on the cron expression.
//
// Common cron expressions:
//   - "@hourly"      - Every hour
//   - "0 3 * * *"    - Daily at 3 AM
//   - "*/15 * * * *" - Every 15 minutes
//
// If the schedule is empty, the scheduler does nothing.
func (s *RescanScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("rescan schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runRescan); err != nil {
		return fmt.Errorf("failed to schedule rescan: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("rescan scheduler started", "schedule", s.schedule)

	// Stop when the context is cancelled
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runRescan executes one rescan cycle.
func (s *RescanScheduler) runRescan() {
	s.logger.Info("starting scheduled rules rescan")

	if err := s.reload(); err != nil {
		s.logger.Error("scheduled rescan failed", "error", err)
		return
	}

	s.logger.Debug("scheduled rescan completed")
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *RescanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		s.running = false
		s.logger.Info("rescan scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *RescanScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled rescan time, or nil when nothing
// is scheduled.
func (s *RescanScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
