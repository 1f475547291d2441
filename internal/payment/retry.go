package payment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

const (
	maxShift = 62
	// maxBackoff bounds a single wait between retries.
	maxBackoff = 30 * time.Second
)

// Exponential returns base * 2^attempt, capped at maxBackoff.
// Negative attempts are treated as 0.
func Exponential(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	} else if attempt > maxShift {
		attempt = maxShift
	}

	multiplier := int64(1) << attempt
	if int64(base) > math.MaxInt64/multiplier {
		return maxBackoff
	}
	return min(time.Duration(int64(base)*multiplier), maxBackoff)
}

// SleepWithContext sleeps for d or until ctx is done.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}

// retrier runs an operation under the per-kind retry policy.
type retrier struct {
	sleep func(ctx context.Context, d time.Duration) error
}

// do calls op until it succeeds, fails with a kind that has no retries left,
// or ctx is done. Every error it returns is a *GatewayError.
// The policy is chosen by the kind of the most recent failure.
func (r retrier) do(ctx context.Context, name string, op func(ctx context.Context) error) (int, *GatewayError) {
	attempts := 0
	retries := 0
	for {
		attempts++
		err := op(ctx)
		if err == nil {
			return attempts, nil
		}

		gwErr := Classify(err)
		strategy := RetryStrategyFor(gwErr.Kind)
		if retries >= strategy.MaxRetries {
			return attempts, gwErr
		}

		retries++
		wait := Exponential(strategy.Backoff, retries-1)
		slog.Warn("Payment attempt failed, retrying",
			"operation", name,
			"kind", gwErr.Kind,
			"attempt", attempts,
			"max_retries", strategy.MaxRetries,
			"backoff", wait,
			"error", err,
		)

		if err := r.sleep(ctx, wait); err != nil {
			return attempts, Classify(err)
		}
	}
}
