package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RegisterValidatesJobs(t *testing.T) {
	s := New(log.NewDiscardLogger())
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Register(Job{Name: "aggregate-analytics", Schedule: "15 0 * * *", Run: noop}))

	err := s.Register(Job{Name: "aggregate-analytics", Schedule: "15 0 * * *", Run: noop})
	assert.ErrorContains(t, err, "already registered")

	err = s.Register(Job{Name: "broken", Schedule: "not a cron", Run: noop})
	assert.ErrorContains(t, err, "invalid schedule")

	err = s.Register(Job{Name: "empty", Schedule: "* * * * *"})
	assert.ErrorContains(t, err, "no Run func")
}

func TestScheduler_NextRunIsUTC(t *testing.T) {
	s := New(log.NewDiscardLogger())
	require.NoError(t, s.Register(Job{Name: "process-emails", Schedule: "*/15 * * * *", Run: func(context.Context) error { return nil }}))

	s.Start()
	defer func() { _ = s.Stop(context.Background()) }()

	next, ok := s.Next("process-emails")
	require.True(t, ok)
	assert.Equal(t, time.UTC, next.Location())
	assert.Zero(t, next.Minute()%15)

	_, ok = s.Next("missing")
	assert.False(t, ok)
}

func TestScheduler_RunOnceLogsFailureAndCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	s := New(log.NewLogger(&buf, slog.LevelInfo))

	var sawLogger atomic.Bool
	s.runOnce(Job{
		Name: "aggregate-analytics",
		Run: func(ctx context.Context) error {
			_, ok := ctx.Value(log.LoggerKeyForContext).(*log.Logger)
			sawLogger.Store(ok)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return errors.New("database unavailable")
		},
	}, time.Minute)

	assert.True(t, sawLogger.Load())
	assert.Contains(t, buf.String(), "Scheduled job failed")
	assert.Contains(t, buf.String(), "database unavailable")
	assert.Contains(t, buf.String(), `"job":"aggregate-analytics"`)
}

func TestScheduler_RunOnceLogsSuccess(t *testing.T) {
	var buf bytes.Buffer
	s := New(log.NewLogger(&buf, slog.LevelInfo))

	s.runOnce(Job{Name: "noop", Run: func(context.Context) error { return nil }}, time.Second)
	assert.Contains(t, buf.String(), "Scheduled job finished")
}

func TestScheduler_FiresRegisteredJob(t *testing.T) {
	s := New(log.NewDiscardLogger())

	var runs atomic.Int32
	require.NoError(t, s.Register(Job{Name: "tick", Schedule: "@every 1s", Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
