package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (s statusErr) Error() string   { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) StatusCode() int { return int(s) }

func fastConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.RateLimitDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := WithRetryConfig(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("edit overwrite: %w", statusErr(503))
		}
		return nil
	}, nil, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestFatalStopsImmediately(t *testing.T) {
	sentinel := errors.New("forbidden")
	attempts := 0
	err := WithRetryConfig(context.Background(), func() error {
		attempts++
		return Fatal(sentinel)
	}, nil, fastConfig())

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, attempts)
}

func TestMaxAttemptsKeepsLastError(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 2
	var retried []int
	cfg.OnRetry = func(attempt int, _ error) { retried = append(retried, attempt) }

	err := WithRetryConfig(context.Background(), func() error { return statusErr(429) }, nil, cfg)

	require.Error(t, err)
	assert.Equal(t, 429, StatusCode(err))
	assert.Equal(t, []int{1}, retried)
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error { return nil }, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassification(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", statusErr(502))
	assert.True(t, IsServerError(wrapped))
	assert.False(t, IsRateLimitError(wrapped))
	assert.True(t, DefaultClassifier(statusErr(429)))
	assert.False(t, DefaultClassifier(errors.New("plain")))
	assert.Zero(t, StatusCode(errors.New("plain")))
	assert.Nil(t, Fatal(nil))
}

func TestAdaptiveLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 1, 0.5)

	lim.RateLimited()
	assert.Equal(t, 2.0, lim.CurrentLimit())
	lim.RateLimited()
	lim.RateLimited()
	assert.Equal(t, 1.0, lim.CurrentLimit())

	require.NoError(t, lim.Wait(context.Background()))
}
