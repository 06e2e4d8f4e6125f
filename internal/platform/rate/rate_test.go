package rate

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	l := New(0, 0)

	if l.Rate() != 1 {
		t.Errorf("expected default rate 1, got %f", l.Rate())
	}
	if l.Burst() != 1 {
		t.Errorf("expected default burst 1, got %d", l.Burst())
	}
}

func TestLimiter_Allow_ConsumesBurst(t *testing.T) {
	l := New(1, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("expected burst token %d to be available", i+1)
		}
	}
	if l.Allow() {
		t.Error("expected empty bucket to deny")
	}
}

func TestLimiter_Refill(t *testing.T) {
	l := New(100, 1)

	if !l.Allow() {
		t.Fatal("expected initial token")
	}
	if l.Allow() {
		t.Fatal("expected empty bucket")
	}

	time.Sleep(20 * time.Millisecond) // 100/s refills within ~10ms

	if !l.Allow() {
		t.Error("expected bucket to refill over time")
	}
}

func TestLimiter_Wait_PacesOperations(t *testing.T) {
	l := New(50, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 4; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("unexpected wait error: %v", err)
		}
	}
	elapsed := time.Since(start)

	// 1 burst token + 3 refills at 50/s = at least ~60ms total.
	if elapsed < 40*time.Millisecond {
		t.Errorf("operations not paced: 4 waits completed in %v", elapsed)
	}
}

func TestLimiter_Wait_CanceledContext(t *testing.T) {
	l := New(0.1, 1)
	l.Allow() // drain

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := New(1, 10)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("expected exactly the burst to be granted, got %d", allowed)
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(0.1, 2)
	l.Allow()
	l.Allow()

	if l.Allow() {
		t.Fatal("expected drained bucket")
	}

	l.Reset()

	if !l.Allow() {
		t.Error("expected full bucket after reset")
	}
}
