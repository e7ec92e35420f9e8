// Package scheduler wires the cron loop that triggers ingestion cycles
// when the ingest service runs in daemon mode.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/cuongbtq/jobfeed-etl/internal/ingest"
)

// Runner executes one ingestion cycle
type Runner interface {
	Run(ctx context.Context) (*ingest.RunSummary, error)
}

// Scheduler wraps robfig/cron and fires pipeline runs on a fixed
// schedule. Triggers that land while a run is still in flight are
// skipped, keeping at most one run active at a time.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string
	logger *slog.Logger
}

// New creates a scheduler firing per the given cron spec, e.g. "@daily"
// or "@every 6h".
func New(runner Runner, spec string, logger *slog.Logger) *Scheduler {
	cronLog := &cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.SkipIfStillRunning(cronLog)),
		),
		runner: runner,
		spec:   spec,
		logger: logger,
	}
}

// Start registers the ingest job and starts the cron loop. One cycle is
// triggered immediately so a fresh deployment does not sit idle until
// the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	entryID, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", slog.String("spec", s.spec))

	// Going through WrappedJob keeps the immediate run inside the
	// skip-if-still-running chain.
	go s.cron.Entry(entryID).WrappedJob.Run()

	return nil
}

// Stop halts the cron loop and waits for an in-flight scheduled run to
// finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	summary, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("Scheduled run failed", slog.String("error", err.Error()))
		return
	}

	s.logger.Info("Scheduled run complete",
		slog.String("run_id", summary.RunID),
		slog.Int("records_created", summary.RecordsCreated),
		slog.Int("records_updated", summary.RecordsUpdated),
	)
}

// cronLogger adapts slog to the cron.Logger interface. Cron's own
// chatter goes to debug; job panics and schedule errors surface at
// error level.
type cronLogger struct {
	logger *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{slog.Any("error", err)}, keysAndValues...)
	l.logger.Error(msg, args...)
}
