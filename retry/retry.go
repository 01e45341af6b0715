// Package retry runs an operation a bounded number of times.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrExhausted matches any error returned after the final attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// ExhaustedError carries the last attempt's error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v after %d attempts: %v", ErrExhausted, e.Attempts, e.Err)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

type config struct {
	onRetry func(attempt int, err error)
}

// Option configures Do.
type Option func(*config)

// OnRetry is called after every failed attempt that will be retried.
func OnRetry(fn func(attempt int, err error)) Option {
	return func(c *config) {
		c.onRetry = fn
	}
}

// Do calls op until it succeeds or maxAttempts calls have failed.
// Attempts are numbered from 1. Context cancellation stops retrying and
// returns the context error.
func Do(ctx context.Context, maxAttempts int, op func(ctx context.Context, attempt int) error, opts ...Option) error {
	_, err := Value(ctx, maxAttempts, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, op(ctx, attempt)
	}, opts...)
	return err
}

// Value is Do for operations that produce a result. Attempts follow each
// other immediately.
func Value[T any](ctx context.Context, maxAttempts int, op func(ctx context.Context, attempt int) (T, error), opts ...Option) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	attempt := 0
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(0), uint64(maxAttempts-1)),
		ctx,
	)
	notify := func(err error, _ time.Duration) {
		if cfg.onRetry != nil {
			cfg.onRetry(attempt, err)
		}
	}

	result, err := backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		return op(ctx, attempt)
	}, policy, notify)
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}
	if attempt < maxAttempts {
		// backoff.Permanent
		return zero, err
	}
	return zero, &ExhaustedError{Attempts: attempt, Err: err}
}
