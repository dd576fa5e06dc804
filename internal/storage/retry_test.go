package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:    maxRetries,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("connection reset"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsAtBound(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(2), func(ctx context.Context) error {
		calls++
		return Transient(errors.New("write conflict"))
	})

	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 3, calls, "one attempt plus two retries")
}

func TestRetry_DoesNotRetryDomainErrors(t *testing.T) {
	for _, domainErr := range []error{ErrNotFound, ErrRoomNotFound, &ConflictError{}} {
		calls := 0
		err := Retry(context.Background(), fastPolicy(5), func(ctx context.Context) error {
			calls++
			return domainErr
		})

		assert.Same(t, domainErr, err)
		assert.Equal(t, 1, calls)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := fastPolicy(5)
	policy.InitialDelay = time.Hour

	calls := 0
	err := Retry(ctx, policy, func(ctx context.Context) error {
		calls++
		cancel()
		return Transient(errors.New("timeout"))
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 1, calls)
}

func TestConflictError_Is(t *testing.T) {
	err := error(&ConflictError{})
	assert.ErrorIs(t, err, ErrBookingConflict)

	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestTransient_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Transient(cause)

	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, cause)
	assert.Same(t, err, Transient(err))
	assert.Nil(t, Transient(nil))
}
