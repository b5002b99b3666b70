package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackoff(attempts int) *ExponentialBackoff {
	eb := NewExponentialBackoff(&Config{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2})
	eb.sleep = func(context.Context, time.Duration) error { return nil }
	return eb
}

func TestExecute_SucceedsAfterTransientFailures(t *testing.T) {
	eb := newTestBackoff(3)
	calls := 0

	err := eb.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("provider returned 503"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecute_StopsOnPermanentError(t *testing.T) {
	eb := newTestBackoff(5)
	calls := 0
	permanent := errors.New("invalid api key")

	err := eb.Execute(context.Background(), func(context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
	assert.False(t, IsMaxRetriesExceeded(err))
}

func TestExecute_ExhaustsAttempts(t *testing.T) {
	eb := newTestBackoff(2)

	err := eb.Execute(context.Background(), func(context.Context) error {
		return errors.New("dial tcp: connection refused")
	})

	assert.True(t, IsMaxRetriesExceeded(err))
}

func TestExecute_RespectsCancelledContext(t *testing.T) {
	eb := newTestBackoff(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := eb.Execute(ctx, func(context.Context) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestCalculateDelay_IsCapped(t *testing.T) {
	eb := NewExponentialBackoff(&Config{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Multiplier: 2})

	assert.Equal(t, 100*time.Millisecond, eb.calculateDelay(1))
	assert.Equal(t, 200*time.Millisecond, eb.calculateDelay(2))
	assert.Equal(t, 300*time.Millisecond, eb.calculateDelay(3))
}
