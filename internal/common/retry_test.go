package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	fastOpts := RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return nil
		}, fastOpts)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, fastOpts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return errors.New("still broken")
		}, fastOpts)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable error stops immediately", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return &RetryableError{Err: errors.New("fatal"), Retryable: false}
		}, fastOpts)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()
		err := WithRetry(cancelCtx, func() error {
			return errors.New("transient")
		}, fastOpts)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrAPIRateLimit))
	assert.True(t, IsRetryable(ErrAPIUnavailable))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
	assert.False(t, IsRetryable(errors.New("plain")))
}
