package proxy

import (
	"context"
	"sync"
	"time"
)

// Direct is the sentinel endpoint meaning "no proxy, connect directly".
const Direct = ""

// Default pool tuning.
const (
	// DefaultFailureThreshold is the number of consecutive failures that
	// quarantines an endpoint.
	DefaultFailureThreshold = 3

	// DefaultCooldown is how long a quarantined endpoint is excluded
	// from selection.
	DefaultCooldown = 5 * time.Minute
)

// Record tracks the health of a single proxy endpoint.
// Owned exclusively by the Pool; mutated only through Report/Quarantine.
type Record struct {
	// Endpoint is the proxy URL.
	Endpoint string

	// Successes counts successful fetches since the last quarantine.
	Successes int

	// ConsecutiveFailures counts failures since the last success.
	// Reset to zero by any success.
	ConsecutiveFailures int

	// LastUsed is when the endpoint was last handed out.
	LastUsed time.Time

	// QuarantinedUntil is the end of the current cooldown window.
	// Zero when the endpoint is not quarantined.
	QuarantinedUntil time.Time
}

// score is the selection weight: successes minus twice the consecutive
// failure count. Higher is healthier.
func (r *Record) score() int {
	return r.Successes - 2*r.ConsecutiveFailures
}

// Pool selects and tracks proxy endpoints.
//
// Design decision: The pool is the single owner of all Records and guards
// them with one mutex. Workers never hold this lock across a fetch; they
// acquire an endpoint, release the lock, and report the outcome afterwards.
// A condition variable wakes blocked acquirers when reports or cooldown
// expiries change eligibility.
type Pool struct {
	mu   sync.Mutex
	cond *sync.Cond

	records []*Record
	rotate  bool

	// allowDirect permits falling back to a direct connection when every
	// endpoint is quarantined, instead of blocking for the earliest cooldown.
	allowDirect bool

	failureThreshold int
	cooldown         time.Duration

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// Option configures a Pool.
type Option func(*Pool)

// WithCooldown sets the quarantine cooldown window.
func WithCooldown(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.cooldown = d
		}
	}
}

// WithFailureThreshold sets the consecutive-failure count that quarantines
// an endpoint.
func WithFailureThreshold(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.failureThreshold = n
		}
	}
}

// WithDirectFallback permits returning the direct sentinel when all
// endpoints are quarantined rather than blocking.
func WithDirectFallback() Option {
	return func(p *Pool) {
		p.allowDirect = true
	}
}

// withClock replaces the pool's clock. Used by tests to control time.
func withClock(now func() time.Time) Option {
	return func(p *Pool) {
		p.now = now
	}
}

// NewPool creates a pool over the given endpoints. Rotation disabled or an
// empty endpoint list yields a pool that always returns the direct sentinel.
func NewPool(endpoints []string, rotate bool, opts ...Option) *Pool {
	p := &Pool{
		rotate:           rotate,
		failureThreshold: DefaultFailureThreshold,
		cooldown:         DefaultCooldown,
		now:              time.Now,
	}
	p.cond = sync.NewCond(&p.mu)

	for _, e := range endpoints {
		p.records = append(p.records, &Record{Endpoint: e})
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire returns the healthiest non-quarantined endpoint.
// It returns the direct sentinel when the pool is empty or rotation is
// disabled. When every endpoint is quarantined it blocks until the earliest
// cooldown expires, the context is cancelled, or direct fallback is allowed.
func (p *Pool) Acquire(ctx context.Context) (string, error) {
	return p.AcquireExcluding(ctx, Direct)
}

// AcquireExcluding is Acquire but skips the given endpoint when any other
// endpoint is eligible. The scheduler uses this to hand a retrying task a
// different proxy from the one that just failed.
func (p *Pool) AcquireExcluding(ctx context.Context, exclude string) (string, error) {
	if !p.rotate || len(p.records) == 0 {
		return Direct, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return Direct, err
		}

		now := p.now()
		best := p.selectLocked(now, exclude)
		if best == nil && exclude != Direct {
			// Only the excluded endpoint is eligible; better to reuse it
			// than to block or go direct.
			best = p.selectLocked(now, Direct)
		}
		if best != nil {
			best.LastUsed = now
			return best.Endpoint, nil
		}

		if p.allowDirect {
			return Direct, nil
		}

		// Everything is quarantined. Sleep until the earliest cooldown
		// expires, then re-evaluate. A concurrent Report may also free an
		// endpoint and broadcast earlier.
		wait := p.earliestExpiryLocked(now).Sub(now)
		p.waitLocked(ctx, wait)
	}
}

// selectLocked returns the best eligible record, or nil when none is
// selectable. Quarantined records whose cooldown has elapsed are revived
// with a neutral score before selection. Caller holds p.mu.
func (p *Pool) selectLocked(now time.Time, exclude string) *Record {
	var best *Record
	for _, r := range p.records {
		if !r.QuarantinedUntil.IsZero() {
			if now.Before(r.QuarantinedUntil) {
				continue
			}
			// Cooldown elapsed: re-enter with a neutral score.
			r.QuarantinedUntil = time.Time{}
			r.Successes = 0
			r.ConsecutiveFailures = 0
		}
		if r.Endpoint == exclude && len(p.records) > 1 {
			continue
		}
		if best == nil {
			best = r
			continue
		}
		if r.score() > best.score() ||
			(r.score() == best.score() && r.LastUsed.Before(best.LastUsed)) {
			best = r
		}
	}
	return best
}

// earliestExpiryLocked returns the soonest quarantine end among all records.
// Caller holds p.mu and has established that all records are quarantined.
func (p *Pool) earliestExpiryLocked(now time.Time) time.Time {
	earliest := now.Add(p.cooldown)
	for _, r := range p.records {
		if !r.QuarantinedUntil.IsZero() && r.QuarantinedUntil.Before(earliest) {
			earliest = r.QuarantinedUntil
		}
	}
	return earliest
}

// waitLocked releases p.mu for at most d while waiting for a broadcast.
// Caller holds p.mu; the lock is held again on return.
func (p *Pool) waitLocked(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	done := make(chan struct{})
	timer := time.NewTimer(d)
	go func() {
		select {
		case <-timer.C:
		case <-ctx.Done():
		case <-done:
			return
		}
		p.cond.Broadcast()
	}()

	p.cond.Wait()
	close(done)
	timer.Stop()
}

// Report records the outcome of a fetch through the endpoint.
// A success resets the consecutive failure count; reaching the failure
// threshold quarantines the endpoint for the cooldown window.
// Reports for the direct sentinel are no-ops.
func (p *Pool) Report(endpoint string, success bool) {
	if endpoint == Direct {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.findLocked(endpoint)
	if r == nil {
		return
	}

	if success {
		r.Successes++
		r.ConsecutiveFailures = 0
	} else {
		r.ConsecutiveFailures++
		if r.ConsecutiveFailures >= p.failureThreshold {
			r.QuarantinedUntil = p.now().Add(p.cooldown)
		}
	}
	p.cond.Broadcast()
}

// Quarantine immediately quarantines the endpoint regardless of its score.
// Used when a fetch through it hit a challenge page: a blocked exit address
// stays blocked, so there is no point burning further attempts on it.
func (p *Pool) Quarantine(endpoint string) {
	if endpoint == Direct {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if r := p.findLocked(endpoint); r != nil {
		r.ConsecutiveFailures = p.failureThreshold
		r.QuarantinedUntil = p.now().Add(p.cooldown)
	}
	p.cond.Broadcast()
}

// findLocked returns the record for an endpoint. Caller holds p.mu.
func (p *Pool) findLocked(endpoint string) *Record {
	for _, r := range p.records {
		if r.Endpoint == endpoint {
			return r
		}
	}
	return nil
}

// Size returns the number of endpoints in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

// Snapshot returns a copy of all records for diagnostics.
func (p *Pool) Snapshot() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Record, len(p.records))
	for i, r := range p.records {
		out[i] = *r
	}
	return out
}
