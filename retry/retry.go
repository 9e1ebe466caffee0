// Package retry executes an operation up to a fixed number of attempts,
// waiting a constant delay between failures and surfacing the last failure
// once the attempt budget is exhausted.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy controls how an operation is retried. It is created once per call
// site and never mutated; the runner itself keeps no state between calls, so
// concurrent callers never interfere.
type Policy struct {
	// Attempts is the maximum number of executions, including the first.
	Attempts int
	// Delay is the fixed wait between a failed attempt and the next one.
	// No backoff, no jitter, and no wait after the final failure.
	Delay time.Duration
}

// DefaultPolicy matches the defaults used by the frontend's fetch wrapper:
// two attempts with 400ms between them.
func DefaultPolicy() Policy {
	return Policy{Attempts: 2, Delay: 400 * time.Millisecond}
}

// Validate reports whether the policy is usable.
func (p Policy) Validate() error {
	if p.Attempts < 1 {
		return errors.New("retry: attempts must be at least 1")
	}
	if p.Delay < 0 {
		return errors.New("retry: delay cannot be negative")
	}
	return nil
}

// Do runs op until it succeeds or the attempt budget is exhausted. Every
// failure is treated as retryable; callers must not hand in operations known
// to fail deterministically. On exhaustion the error from the last attempt is
// returned, earlier errors are discarded.
//
// The inter-attempt wait observes ctx, so a cancelled context aborts the
// sequence with ctx.Err(). The operation itself receives ctx but is given no
// timeout of its own.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value. The first successful
// attempt returns its result immediately with no further attempts or delay.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.Validate(); err != nil {
		return zero, err
	}

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		// No wait after the last permitted attempt.
		if attempt == p.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(p.Delay):
		}
	}

	return zero, lastErr
}
