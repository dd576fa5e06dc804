package storage

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultMaxRetries    = 3
	DefaultInitialDelay  = 50 * time.Millisecond
	DefaultMaxDelay      = 1 * time.Second
	DefaultBackoffFactor = 2.0
)

type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    DefaultMaxRetries,
		InitialDelay:  DefaultInitialDelay,
		MaxDelay:      DefaultMaxDelay,
		BackoffFactor: DefaultBackoffFactor,
	}
}

// Retry runs fn and repeats it while it fails with ErrTransient, at most
// MaxRetries extra times. Any other failure is returned immediately.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := policy.InitialDelay
	if policy.BackoffFactor < 1 {
		policy.BackoffFactor = 1
	}

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Transient(fmt.Errorf("retry aborted: %w (last error: %v)", ctx.Err(), lastErr))
			case <-timer.C:
			}
			delay = time.Duration(float64(delay) * policy.BackoffFactor)
			if policy.MaxDelay > 0 && delay > policy.MaxDelay {
				delay = policy.MaxDelay
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("operation failed after %d retries: %w", policy.MaxRetries, lastErr)
}
