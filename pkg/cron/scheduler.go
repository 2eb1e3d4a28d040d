// Package cron re-runs the loader on a schedule using robfig/cron.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs a single job on a cron expression. A tick that fires while
// the previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	timeout time.Duration
	logger  *slog.Logger
}

// NewScheduler creates a scheduler for job. Each run gets its own context
// bounded by timeout (no bound when zero).
func NewScheduler(job Job, timeout time.Duration, logger *slog.Logger) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	// Standard 5-field format, seconds disabled
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:    c,
		job:     job,
		timeout: timeout,
		logger:  logger,
	}
}

// Start registers the job on the cron expression and begins scheduling.
func (s *Scheduler) Start(expr string) error {
	if _, err := s.cron.AddFunc(expr, s.run); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", expr),
		slog.Time("next_run", s.Next()),
	)
	return nil
}

// Next returns when the job fires next, or the zero time when not scheduled.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop stops scheduling. The returned context is done once a running job
// has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow runs the job once, synchronously, outside any schedule.
func (s *Scheduler) RunNow() error {
	return s.execute()
}

func (s *Scheduler) run() {
	// failures are logged in execute; the schedule keeps going
	_ = s.execute()
}

func (s *Scheduler) execute() error {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error("loader job failed",
			slog.Duration("took", time.Since(start)),
			slog.Any("error", err),
		)
		return err
	}
	s.logger.Info("loader job completed", slog.Duration("took", time.Since(start)))
	return nil
}
