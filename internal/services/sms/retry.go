// File: internal/services/sms/retry.go
package sms

import (
	"context"
	"time"
)

// RetryConfig defines simple retry behavior
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryConfig provides sensible defaults
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		Delay:       500 * time.Millisecond,
	}
}

// RetryWithBackoff executes fn until it succeeds, returns a non-retryable
// error, or runs out of attempts. The delay doubles after each failure.
func RetryWithBackoff(ctx context.Context, config *RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := config.Delay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		// Don't wait after last attempt
		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return lastErr
}

// retryingProvider wraps a Provider with RetryWithBackoff.
type retryingProvider struct {
	Provider
	retry *RetryConfig
}

// WithRetry returns p with every send retried according to rc.
func WithRetry(p Provider, rc *RetryConfig) Provider {
	return &retryingProvider{Provider: p, retry: rc}
}

func (r *retryingProvider) SendDeliveryCode(ctx context.Context, msg Message) error {
	return RetryWithBackoff(ctx, r.retry, func(ctx context.Context) error {
		return r.Provider.SendDeliveryCode(ctx, msg)
	})
}
