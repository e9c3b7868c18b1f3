// Package ratelimit spaces fetch dispatches with randomized delays.
//
// Each worker independently waits a fresh uniform-random delay in
// [min, max] since its own last dispatch. The jitter keeps concurrent
// workers from falling into lockstep, which reads as bot traffic.
package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Limiter enforces a randomized minimum interval between dispatches,
// tracked per worker. Workers identify themselves by index; there is no
// cross-worker ordering guarantee, only each worker's own spacing.
type Limiter struct {
	min time.Duration
	max time.Duration

	mu   sync.Mutex
	last map[int]time.Time

	// now and sleep are replaceable in tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter with the given delay bounds. A max below min is
// treated as equal to min (fixed delay).
func New(minDelay, maxDelay time.Duration) *Limiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Limiter{
		min:   minDelay,
		max:   maxDelay,
		last:  make(map[int]time.Time),
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Wait blocks until at least a freshly drawn delay has elapsed since the
// worker's previous dispatch, then records the new dispatch time. The first
// call for a worker returns immediately. Returns early with the context's
// error on cancellation, without recording a dispatch.
func (l *Limiter) Wait(ctx context.Context, worker int) error {
	l.mu.Lock()
	prev, seen := l.last[worker]
	l.mu.Unlock()

	if seen {
		delay := l.draw()
		elapsed := l.now().Sub(prev)
		if remaining := delay - elapsed; remaining > 0 {
			if err := l.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}

	l.mu.Lock()
	l.last[worker] = l.now()
	l.mu.Unlock()
	return nil
}

// draw picks a uniform-random delay from [min, max].
func (l *Limiter) draw() time.Duration {
	if l.max == l.min {
		return l.min
	}
	return l.min + rand.N(l.max-l.min)
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
