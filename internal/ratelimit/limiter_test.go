package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestLimiterWait tests per-worker delay enforcement.
func TestLimiterWait(t *testing.T) {
	t.Parallel()

	t.Run("first dispatch is immediate", func(t *testing.T) {
		t.Parallel()

		l := New(time.Hour, time.Hour)
		slept := false
		l.sleep = func(ctx context.Context, d time.Duration) error {
			slept = true
			return nil
		}

		if err := l.Wait(context.Background(), 0); err != nil {
			t.Fatal(err)
		}
		if slept {
			t.Error("first dispatch should not sleep")
		}
	})

	t.Run("second dispatch waits the remaining delay", func(t *testing.T) {
		t.Parallel()

		l := New(10*time.Second, 10*time.Second)
		now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		var slept time.Duration
		l.sleep = func(ctx context.Context, d time.Duration) error {
			slept = d
			return nil
		}

		if err := l.Wait(context.Background(), 0); err != nil {
			t.Fatal(err)
		}
		now = now.Add(3 * time.Second)
		if err := l.Wait(context.Background(), 0); err != nil {
			t.Fatal(err)
		}

		if slept != 7*time.Second {
			t.Errorf("slept %v, want 7s remaining of the 10s delay", slept)
		}
	})

	t.Run("workers are independent", func(t *testing.T) {
		t.Parallel()

		l := New(time.Hour, time.Hour)
		slept := false
		l.sleep = func(ctx context.Context, d time.Duration) error {
			slept = true
			return nil
		}

		if err := l.Wait(context.Background(), 0); err != nil {
			t.Fatal(err)
		}
		// A different worker's first dispatch must not inherit worker 0's clock.
		if err := l.Wait(context.Background(), 1); err != nil {
			t.Fatal(err)
		}
		if slept {
			t.Error("worker 1 should not wait on worker 0's schedule")
		}
	})

	t.Run("drawn delay stays within bounds", func(t *testing.T) {
		t.Parallel()

		l := New(2*time.Second, 5*time.Second)
		for range 1000 {
			d := l.draw()
			if d < 2*time.Second || d > 5*time.Second {
				t.Fatalf("draw() = %v, out of [2s, 5s]", d)
			}
		}
	})

	t.Run("cancellation aborts the wait", func(t *testing.T) {
		t.Parallel()

		l := New(time.Hour, time.Hour)
		ctx, cancel := context.WithCancel(context.Background())

		if err := l.Wait(ctx, 0); err != nil {
			t.Fatal(err)
		}
		cancel()
		if err := l.Wait(ctx, 0); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}
