package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoValue_ImmediateSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	start := time.Now()

	v, err := DoValue(context.Background(), Policy{Attempts: 3, Delay: 200 * time.Millisecond},
		func(ctx context.Context) (string, error) {
			calls++
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, calls, "success on the first attempt must not re-invoke")
	assert.Less(t, time.Since(start), 150*time.Millisecond, "no delay may be incurred on immediate success")
}

func TestDoValue_EventualSuccess(t *testing.T) {
	t.Parallel()

	const delay = 30 * time.Millisecond
	calls := 0
	start := time.Now()

	v, err := DoValue(context.Background(), Policy{Attempts: 3, Delay: delay},
		func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", fmt.Errorf("attempt %d failed", calls)
			}
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
	assert.GreaterOrEqual(t, time.Since(start), 2*delay, "two failures mean two delays")
}

func TestDoValue_Exhaustion(t *testing.T) {
	t.Parallel()

	const delay = 20 * time.Millisecond
	calls := 0
	start := time.Now()

	_, err := DoValue(context.Background(), Policy{Attempts: 3, Delay: delay},
		func(ctx context.Context) (int, error) {
			calls++
			return 0, fmt.Errorf("boom %d", calls)
		})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "operation must be invoked exactly Attempts times")
	assert.EqualError(t, err, "boom 3", "the last attempt's error must surface, not an earlier one")
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 2*delay, "attempts-1 delays are incurred")
	assert.Less(t, elapsed, 10*delay, "no extra delay after the final failure")
}

func TestDoValue_SingleAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	start := time.Now()

	_, err := DoValue(context.Background(), Policy{Attempts: 1, Delay: time.Second},
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("x")
		})

	require.EqualError(t, err, "x")
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "a single failing attempt fails with zero delay")
}

func TestDoValue_NeverOverInvokes(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := DoValue(context.Background(), Policy{Attempts: 5, Delay: 0},
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("always")
		})

	require.Error(t, err)
	assert.Equal(t, 5, calls)
}

func TestDoValue_LastErrorIdentity(t *testing.T) {
	t.Parallel()

	attemptErrs := []error{errors.New("first"), errors.New("second"), errors.New("third")}
	calls := 0

	_, err := DoValue(context.Background(), Policy{Attempts: 3, Delay: 0},
		func(ctx context.Context) (int, error) {
			defer func() { calls++ }()
			return 0, attemptErrs[calls]
		})

	require.Error(t, err)
	assert.Same(t, attemptErrs[2], err, "the surfaced error is the final attempt's error value")
	assert.NotErrorIs(t, err, attemptErrs[0])
}

func TestDo_PassesThroughResult(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), Policy{Attempts: 2, Delay: 0}, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoValue_InvalidPolicy(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := DoValue(context.Background(), Policy{Attempts: 0, Delay: 0},
		func(ctx context.Context) (int, error) {
			calls++
			return 0, nil
		})

	require.Error(t, err)
	assert.Zero(t, calls, "an invalid policy must not invoke the operation")

	_, err = DoValue(context.Background(), Policy{Attempts: 1, Delay: -time.Second},
		func(ctx context.Context) (int, error) { return 0, nil })
	require.Error(t, err)
}

func TestDoValue_ContextCancelledDuringWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := DoValue(ctx, Policy{Attempts: 3, Delay: 5 * time.Second},
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("transient")
		})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation during the wait aborts the sequence")
}

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	assert.Equal(t, 2, p.Attempts)
	assert.Equal(t, 400*time.Millisecond, p.Delay)
	require.NoError(t, p.Validate())
}
