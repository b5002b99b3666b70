package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = 10 * time.Minute

type Job struct {
	Name     string
	Schedule string // standard 5-field cron expression, evaluated in UTC
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	logger  *log.Logger
	entries map[string]cron.EntryID
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

func New(logger *log.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// Register validates the schedule and adds the job. A failing run is logged
// and never unschedules the job.
func (s *Scheduler) Register(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("scheduler: job %q has no Run func", job.Name)
	}
	if _, exists := s.entries[job.Name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", job.Name)
	}

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	id, err := s.cron.AddFunc(job.Schedule, func() {
		s.runOnce(job, timeout)
	})
	if err != nil {
		return fmt.Errorf("scheduler: job %q: invalid schedule %q: %w", job.Name, job.Schedule, err)
	}

	s.entries[job.Name] = id
	s.logger.Info("Scheduled job registered", "job", job.Name, "schedule", job.Schedule)
	return nil
}

func (s *Scheduler) runOnce(job Job, timeout time.Duration) {
	correlationID := log.GenerateCorrelationID()
	ctx, cancel := context.WithTimeout(log.WithCorrelationID(context.Background(), correlationID), timeout)
	defer cancel()

	logger := s.logger.WithCorrelationID(ctx).With("job", job.Name)
	ctx = log.ContextWithLogger(ctx, logger)

	start := time.Now()
	logger.Info("Scheduled job started")

	if err := job.Run(ctx); err != nil {
		logger.Error("Scheduled job failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}

	logger.Info("Scheduled job finished", "duration_ms", time.Since(start).Milliseconds())
}

// Next reports the next activation of a registered job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", "jobs", len(s.entries))
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out with jobs still running")
		return ctx.Err()
	}
}
