package quota

import (
	"context"
	"testing"
	"time"

	"github.com/tedbot101/Stalker-Recon/internal/platform/errors"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
	"github.com/tedbot101/Stalker-Recon/internal/testutil"
)

func newTestKeeper(t *testing.T, window time.Duration) *Keeper {
	t.Helper()
	return NewKeeper(window, logx.NewSilent())
}

func TestKeeper_Register(t *testing.T) {
	tests := []struct {
		name    string
		service string
		budget  int
		keys    []string
		wantErr bool
	}{
		{
			name:    "valid registration",
			service: "certspotter",
			budget:  10,
			keys:    []string{"k1"},
		},
		{
			name:    "empty service name",
			service: "",
			budget:  10,
			keys:    []string{"k1"},
			wantErr: true,
		},
		{
			name:    "non-positive budget",
			service: "censys",
			budget:  0,
			keys:    []string{"k1"},
			wantErr: true,
		},
		{
			name:    "empty key list is a configuration error",
			service: "virustotal",
			budget:  4,
			keys:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keeper := newTestKeeper(t, time.Second)
			err := keeper.Register(tt.service, tt.budget, tt.keys)
			if tt.wantErr {
				testutil.AssertTrue(t, errors.Is(err, errors.ErrInvalidInput), "expected invalid input sentinel")
				return
			}
			testutil.AssertNoError(t, err, "registration should succeed")
			testutil.AssertTrue(t, keeper.Registered(tt.service), "service should be registered")
		})
	}
}

func TestKeeper_Acquire_RotatesKeysRoundRobin(t *testing.T) {
	keeper := newTestKeeper(t, time.Minute)
	keys := []string{"k1", "k2", "k3"}
	testutil.AssertNoError(t, keeper.Register("certspotter", 100, keys), "register")

	counts := make(map[string]int)
	const total = 10
	for i := 0; i < total; i++ {
		key, err := keeper.Acquire(context.Background(), "certspotter")
		testutil.AssertNoError(t, err, "acquire")
		testutil.AssertEqual(t, key, keys[i%len(keys)], "strict round-robin order")
		counts[key]++
	}

	// 10 acquires over 3 keys: usage spread is 4/3/3.
	testutil.AssertEqual(t, counts["k1"], 4, "first key usage")
	testutil.AssertEqual(t, counts["k2"], 3, "second key usage")
	testutil.AssertEqual(t, counts["k3"], 3, "third key usage")
}

func TestKeeper_Acquire_BlocksUntilWindowFrees(t *testing.T) {
	window := 120 * time.Millisecond
	keeper := newTestKeeper(t, window)
	testutil.AssertNoError(t, keeper.Register("certspotter", 1, []string{"k1"}), "register")

	_, err := keeper.Acquire(context.Background(), "certspotter")
	testutil.AssertNoError(t, err, "first acquire consumes the only slot")

	start := time.Now()
	_, err = keeper.Acquire(context.Background(), "certspotter")
	elapsed := time.Since(start)

	testutil.AssertNoError(t, err, "second acquire eventually succeeds")
	testutil.AssertTrue(t, elapsed >= window-20*time.Millisecond,
		"second acquire must wait for the oldest slot to leave the window")
}

func TestKeeper_Acquire_NeverExceedsBudgetInWindow(t *testing.T) {
	window := 150 * time.Millisecond
	keeper := newTestKeeper(t, window)
	testutil.AssertNoError(t, keeper.Register("censys", 3, []string{"k1"}), "register")

	for i := 0; i < 3; i++ {
		_, err := keeper.Acquire(context.Background(), "censys")
		testutil.AssertNoError(t, err, "within budget")
	}
	testutil.AssertEqual(t, keeper.InFlight("censys"), 3, "budget fully consumed")

	// The fourth slot only opens once the first timestamp ages out.
	start := time.Now()
	_, err := keeper.Acquire(context.Background(), "censys")
	testutil.AssertNoError(t, err, "fourth acquire succeeds after the window slides")
	testutil.AssertTrue(t, time.Since(start) >= window-30*time.Millisecond, "fourth acquire waited")
	testutil.AssertTrue(t, keeper.InFlight("censys") <= 3, "sliding window invariant holds")
}

func TestKeeper_Acquire_CancelledContext(t *testing.T) {
	keeper := newTestKeeper(t, time.Minute)
	testutil.AssertNoError(t, keeper.Register("certspotter", 1, []string{"k1"}), "register")

	_, err := keeper.Acquire(context.Background(), "certspotter")
	testutil.AssertNoError(t, err, "slot consumed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = keeper.Acquire(ctx, "certspotter")
	testutil.AssertTrue(t, errors.Is(err, context.DeadlineExceeded), "blocked acquire honors cancellation")
}

func TestKeeper_Acquire_UnregisteredService(t *testing.T) {
	keeper := newTestKeeper(t, time.Minute)

	_, err := keeper.Acquire(context.Background(), "shodan")
	testutil.AssertTrue(t, errors.Is(err, errors.ErrInvalidInput), "unknown service is an input error")
}

func TestKeeper_Suspend_RefundsSlotAndPauses(t *testing.T) {
	keeper := newTestKeeper(t, time.Minute)
	testutil.AssertNoError(t, keeper.Register("virustotal", 4, []string{"k1"}), "register")

	_, err := keeper.Acquire(context.Background(), "virustotal")
	testutil.AssertNoError(t, err, "acquire")
	testutil.AssertEqual(t, keeper.InFlight("virustotal"), 1, "one slot consumed")

	keeper.Suspend("virustotal", 80*time.Millisecond)
	testutil.AssertEqual(t, keeper.InFlight("virustotal"), 0, "throttled request refunded")

	start := time.Now()
	_, err = keeper.Acquire(context.Background(), "virustotal")
	testutil.AssertNoError(t, err, "acquire after suspension lifts")
	testutil.AssertTrue(t, time.Since(start) >= 50*time.Millisecond, "suspension observed")
}

func TestKeeper_Suspend_UnknownServiceIsNoop(t *testing.T) {
	keeper := newTestKeeper(t, time.Minute)
	keeper.Suspend("shodan", time.Second) // must not panic
}
