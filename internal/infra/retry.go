package infra

import (
	"context"
	"errors"
	"time"
)

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying; WithRetry returns it unwrapped
// right away.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// WithRetry calls fn up to maxAttempts times, waiting 1s, 2s, 4s… between
// attempts. It returns the last error, or ctx.Err() if the context ends
// while waiting. attempt starts at 0.
func WithRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	return WithBackoff(ctx, maxAttempts, time.Second, fn)
}

// WithBackoff is WithRetry with base as the first wait.
func WithBackoff(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base << uint(i-1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		lastErr = fn(i)
		if lastErr == nil {
			return nil
		}
		var p *permanentError
		if errors.As(lastErr, &p) {
			return p.err
		}
	}
	return lastErr
}
