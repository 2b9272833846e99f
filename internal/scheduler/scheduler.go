// Package scheduler triggers digest runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/runner"
)

// Runner is the part of runner.Runner the scheduler needs.
type Runner interface {
	Run(ctx context.Context, keys []string) (*runner.Result, error)
}

// Scheduler runs one digest per cron tick. A tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	keys   []string
	logger *zap.SugaredLogger
	ctx    context.Context
}

// New parses cfg and registers the digest job. Standard 5-field
// expressions and descriptors such as @daily are accepted.
func New(cfg config.ScheduleConfig, r Runner, keys []string, logger *zap.SugaredLogger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: schedule timezone: %w", config.ErrInvalidConfig, err)
	}

	s := &Scheduler{
		runner: r,
		keys:   keys,
		logger: logger,
		ctx:    context.Background(),
	}
	cl := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(cfg.Cron, s.tick); err != nil {
		return nil, fmt.Errorf("%w: invalid SCHEDULE_CRON %q: %w", config.ErrInvalidConfig, cfg.Cron, err)
	}
	return s, nil
}

// Start begins scheduling. Runs are cancelled when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Infow("scheduler started", "next_run", s.Next())
}

// Stop stops scheduling and waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Infow("scheduler stopped")
}

// Next returns the next scheduled run time, or the zero time when not started.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) tick() {
	if s.ctx.Err() != nil {
		return
	}
	s.logger.Infow("scheduled run triggered")

	res, err := s.runner.Run(s.ctx, s.keys)
	switch {
	case err != nil:
		s.logger.Errorw("scheduled run failed", "error", err)
	case !res.Succeeded():
		s.logger.Errorw("scheduled run delivered nothing", "run_id", res.RunID)
	default:
		s.logger.Infow("scheduled run completed", "run_id", res.RunID, "next_run", s.Next())
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
