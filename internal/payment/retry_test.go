package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponential(t *testing.T) {
	tests := []struct {
		base    time.Duration
		attempt int
		want    time.Duration
	}{
		{time.Second, 0, time.Second},
		{time.Second, 1, 2 * time.Second},
		{2 * time.Second, 2, 8 * time.Second},
		{time.Second, -3, time.Second},
		{5 * time.Second, 4, maxBackoff},
		{time.Second, 100, maxBackoff},
		{0, 3, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Exponential(tt.base, tt.attempt), "base=%v attempt=%d", tt.base, tt.attempt)
	}
}

func TestSleepWithContext(t *testing.T) {
	assert.NoError(t, SleepWithContext(context.Background(), 0))
	assert.NoError(t, SleepWithContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SleepWithContext(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

// recordSleeps returns a retrier that records waits instead of sleeping.
func recordSleeps() (*retrier, *[]time.Duration) {
	var waits []time.Duration
	return &retrier{sleep: func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}}, &waits
}

func failing(errs ...error) (func(context.Context) error, *int) {
	calls := 0
	return func(context.Context) error {
		calls++
		if calls <= len(errs) {
			return errs[calls-1]
		}
		return nil
	}, &calls
}

func TestRetrier_RecoversFromNetworkErrors(t *testing.T) {
	r, waits := recordSleeps()
	netErr := NewGatewayError(KindNetwork, "", nil)
	op, calls := failing(netErr, netErr)

	attempts, err := r.do(context.Background(), "test", op)

	require.Nil(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, *calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *waits)
}

func TestRetrier_GivesUpAfterMaxRetries(t *testing.T) {
	r, waits := recordSleeps()
	netErr := NewGatewayError(KindNetwork, "", nil)
	op, calls := failing(netErr, netErr, netErr, netErr, netErr)

	attempts, err := r.do(context.Background(), "test", op)

	require.NotNil(t, err)
	assert.Equal(t, KindNetwork, err.Kind)
	assert.Equal(t, 4, attempts, "first call plus three retries")
	assert.Equal(t, 4, *calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, *waits)
}

func TestRetrier_TerminalKindsAreNotRetried(t *testing.T) {
	for _, kind := range []Kind{KindUserRejected, KindInsufficientBalance, KindInvalidAddress, KindUnavailable} {
		t.Run(string(kind), func(t *testing.T) {
			r, waits := recordSleeps()
			op, calls := failing(NewGatewayError(kind, "", nil))

			attempts, err := r.do(context.Background(), "test", op)

			require.NotNil(t, err)
			assert.Equal(t, kind, err.Kind)
			assert.Equal(t, 1, attempts)
			assert.Equal(t, 1, *calls)
			assert.Empty(t, *waits)
		})
	}
}

func TestRetrier_UnclassifiedErrorsRetryOnce(t *testing.T) {
	r, waits := recordSleeps()
	op, calls := failing(errors.New("boom"), errors.New("boom again"))

	attempts, err := r.do(context.Background(), "test", op)

	require.NotNil(t, err)
	assert.Equal(t, KindUnknown, err.Kind)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, *calls)
	assert.Equal(t, []time.Duration{time.Second}, *waits)
}

func TestRetrier_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &retrier{sleep: func(ctx context.Context, d time.Duration) error {
		cancel()
		return SleepWithContext(ctx, d)
	}}
	op, calls := failing(NewGatewayError(KindNetwork, "", nil))

	attempts, err := r.do(ctx, "test", op)

	require.NotNil(t, err)
	assert.Equal(t, KindUserRejected, err.Kind)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, *calls)
}
