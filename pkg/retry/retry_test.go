package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	cfg := DefaultConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("first attempt succeeds", func(t *testing.T) {
		calls := 0
		err := Do(ctx, fastConfig(3), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		var notified []int
		cfg := fastConfig(3)
		cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { notified = append(notified, attempt) }

		err := Do(ctx, cfg, func() error {
			calls++
			if calls < 3 {
				return errors.New("dial tcp: connection refused")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, notified)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := Do(ctx, fastConfig(3), func() error {
			calls++
			return errors.New("persistent error")
		})
		assert.EqualError(t, err, "persistent error")
		assert.Equal(t, 3, calls)
	})

	t.Run("non retryable error stops immediately", func(t *testing.T) {
		cfg := fastConfig(5)
		cfg.Retryable = MatchMessages("connection refused")
		calls := 0
		err := Do(ctx, cfg, func() error {
			calls++
			return errors.New("password authentication failed")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts is invalid", func(t *testing.T) {
		err := Do(ctx, Config{}, func() error { return nil })
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cfg := fastConfig(10)
		cfg.InitialDelay = time.Second
		cfg.MaxDelay = time.Second
		calls := 0
		err := Do(cctx, cfg, func() error {
			calls++
			cancel()
			return errors.New("temporary")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastConfig(2), func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("i/o timeout")
		}
		return "connected", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "connected", got)
}

func TestBackoff(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, backoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, backoff(1, cfg))
	assert.Equal(t, 400*time.Millisecond, backoff(2, cfg))
	assert.Equal(t, time.Second, backoff(10, cfg))
	assert.Equal(t, 100*time.Millisecond, backoff(-1, cfg))
}

func TestWithJitter(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := withJitter(time.Second)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
	assert.Equal(t, time.Duration(0), withJitter(0))
}

func TestDatabaseConfig(t *testing.T) {
	cfg := DatabaseConfig()
	require.NotNil(t, cfg.Retryable)
	assert.True(t, cfg.Retryable(errors.New("FATAL: the database system is starting up")))
	assert.True(t, cfg.Retryable(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")))
	assert.False(t, cfg.Retryable(errors.New("relation \"issues\" does not exist")))
}
