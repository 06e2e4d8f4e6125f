package retry

import (
	"context"
	"testing"
	"time"

	"github.com/tedbot101/Stalker-Recon/internal/platform/errors"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
	"github.com/tedbot101/Stalker-Recon/internal/testutil"
)

func fastExecutor(attempts int) *Executor {
	return NewExecutor(attempts, time.Millisecond, 4*time.Millisecond, logx.NewSilent())
}

func TestExecutor_Run_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastExecutor(3).Run(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return nil
	})

	testutil.AssertNoError(t, err, "run")
	testutil.AssertEqual(t, calls, 1, "no retries on success")
}

func TestExecutor_Run_RecoversAfterTransientFailure(t *testing.T) {
	calls := 0
	err := fastExecutor(3).Run(context.Background(), "op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.ErrConnectionFailed
		}
		return nil
	})

	testutil.AssertNoError(t, err, "third attempt succeeds")
	testutil.AssertEqual(t, calls, 3, "two retries consumed")
}

func TestExecutor_Run_BoundedAttempts(t *testing.T) {
	calls := 0
	err := fastExecutor(3).Run(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return errors.ErrServiceUnavailable
	})

	testutil.AssertEqual(t, calls, 3, "never more than maxAttempts invocations")
	testutil.AssertTrue(t, errors.Is(err, errors.ErrServiceUnavailable), "last failure surfaces")
}

func TestExecutor_Run_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	err := fastExecutor(3).Run(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return errors.ErrUnauthorized
	})

	testutil.AssertEqual(t, calls, 1, "definitive errors are not retried")
	testutil.AssertTrue(t, errors.Is(err, errors.ErrUnauthorized), "original error returned")
}

func TestExecutor_Run_HonorsRetryAfterHint(t *testing.T) {
	hint := 30 * time.Millisecond
	calls := 0

	start := time.Now()
	err := fastExecutor(2).Run(context.Background(), "op", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &errors.RetryAfterError{Service: "certspotter", After: hint}
		}
		return nil
	})
	elapsed := time.Since(start)

	testutil.AssertNoError(t, err, "second attempt succeeds")
	testutil.AssertTrue(t, elapsed >= hint, "server hint overrides shorter computed backoff")
}

func TestExecutor_Run_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastExecutor(3).Run(ctx, "op", func(ctx context.Context) error {
		calls++
		return nil
	})

	testutil.AssertEqual(t, calls, 0, "no attempt after cancellation")
	testutil.AssertTrue(t, errors.Is(err, context.Canceled), "context error surfaces")
}

func TestExecutor_Backoff(t *testing.T) {
	e := NewExecutor(5, 4*time.Second, 10*time.Second, logx.NewSilent())

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 4 * time.Second},
		{2, 8 * time.Second},
		{3, 10 * time.Second}, // 16s capped
		{4, 10 * time.Second},
	}

	for _, tt := range tests {
		got := e.backoff(tt.attempt)
		testutil.AssertEqual(t, got, tt.want, "backoff for attempt")
	}
}
