package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/serpharvest/serpharvest/internal/dedup"
	"github.com/serpharvest/serpharvest/internal/fetcher"
	"github.com/serpharvest/serpharvest/internal/model"
)

// DefaultMaxRetries is the retry budget per task.
const DefaultMaxRetries = 3

// HandlerFunc consumes a successful fetch. Extraction happens here; a
// returned error is classified through the fetch error taxonomy and
// feeds back into the retry policy.
type HandlerFunc func(ctx context.Context, task *model.FetchTask, res *fetcher.Result) error

// BackoffFunc returns how long to wait before retry number attempt
// (1-based).
type BackoffFunc func(attempt int) time.Duration

// DefaultBackoff doubles a one second base per attempt, capped at 30s.
func DefaultBackoff(attempt int) time.Duration {
	d := time.Second << (attempt - 1)
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

// ProxySource hands out proxy endpoints for fetch attempts.
// *proxy.Pool satisfies it.
type ProxySource interface {
	Acquire(ctx context.Context) (string, error)
	AcquireExcluding(ctx context.Context, exclude string) (string, error)
}

// directSource is used when no pool is wired. Every task goes direct.
type directSource struct{}

func (directSource) Acquire(context.Context) (string, error)                   { return "", nil }
func (directSource) AcquireExcluding(context.Context, string) (string, error) { return "", nil }

// Waiter enforces the inter-request delay per worker.
// *ratelimit.Limiter satisfies it.
type Waiter interface {
	Wait(ctx context.Context, worker int) error
}

type nopWaiter struct{}

func (nopWaiter) Wait(context.Context, int) error { return nil }

// entry wraps a task with scheduler-private retry bookkeeping.
type entry struct {
	task *model.FetchTask

	// exclude is the proxy the previous attempt used. Retries avoid it.
	exclude string

	// blockedFree records whether the single uncounted retry after a
	// block has been spent.
	blockedFree bool
}

// Scheduler owns the task queue, the worker pool, and the retry policy.
type Scheduler struct {
	fetch   fetcher.Fetcher
	handle  HandlerFunc
	proxies ProxySource
	limiter Waiter
	visited *dedup.VisitedSet
	backoff BackoffFunc
	logger  *slog.Logger

	concurrency int
	maxRetries  int

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*entry
	inflight int
	stopped  bool
	failures []model.TaskFailure
	accepted int

	events chan Event
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithConcurrency sets the worker count. Default is 1; result pages are
// throttled hard enough that more workers rarely help without a large
// proxy pool.
func WithConcurrency(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMaxRetries sets the retry budget per task.
func WithMaxRetries(n int) Option {
	return func(s *Scheduler) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithBackoff replaces the retry delay policy.
func WithBackoff(f BackoffFunc) Option {
	return func(s *Scheduler) {
		if f != nil {
			s.backoff = f
		}
	}
}

// WithProxySource wires a proxy pool. Without one every task goes direct.
func WithProxySource(p ProxySource) Option {
	return func(s *Scheduler) {
		if p != nil {
			s.proxies = p
		}
	}
}

// WithLimiter wires the inter-request rate limiter.
func WithLimiter(w Waiter) Option {
	return func(s *Scheduler) {
		if w != nil {
			s.limiter = w
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEvents enables the event stream with the given buffer size.
// Events are dropped, never blocked on, when the consumer lags.
func WithEvents(buffer int) Option {
	return func(s *Scheduler) {
		s.events = make(chan Event, buffer)
	}
}

// New builds a Scheduler around a fetcher and a success handler.
func New(fetch fetcher.Fetcher, handle HandlerFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		fetch:       fetch,
		handle:      handle,
		proxies:     directSource{},
		limiter:     nopWaiter{},
		visited:     dedup.New(),
		backoff:     DefaultBackoff,
		concurrency: 1,
		maxRetries:  DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Submit queues a task unless its keyword/purpose pair was already
// submitted this run or the scheduler is stopped. Returns whether the
// task was accepted.
func (s *Scheduler) Submit(task *model.FetchTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	// The stopped check runs first so a rejected task does not burn its
	// dedup slot.
	if !s.visited.TryVisitTask(task) {
		return false
	}
	task.State = model.TaskPending
	s.queue = append(s.queue, &entry{task: task})
	s.accepted++
	s.cond.Broadcast()
	return true
}

// Visited reports whether a keyword/purpose pair was already submitted.
func (s *Scheduler) Visited(keyword string, purpose model.Purpose) bool {
	return s.visited.Visited(keyword, purpose)
}

// Accepted returns how many tasks Submit has accepted so far.
func (s *Scheduler) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// Failures returns the terminal failure records collected so far.
func (s *Scheduler) Failures() []model.TaskFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TaskFailure, len(s.failures))
	copy(out, s.failures)
	return out
}

// Events returns the event stream, or nil when WithEvents was not set.
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// Stop asks the workers to finish their current task and exit. Queued
// tasks are abandoned and retries are not requeued.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cond.Broadcast()
}

// Run starts the worker pool and blocks until Stop is called or the
// context is cancelled. Submit may be called before and during Run.
func (s *Scheduler) Run(ctx context.Context) error {
	// Wake blocked workers when the context dies.
	stopWake := context.AfterFunc(ctx, func() {
		s.cond.Broadcast()
	})
	defer stopWake()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range s.concurrency {
		g.Go(func() error {
			return s.worker(ctx, i)
		})
	}
	return g.Wait()
}

// Drain blocks until the queue is empty and no task is in flight.
// The expander calls it between depth rounds.
func (s *Scheduler) Drain(ctx context.Context) error {
	stopWake := context.AfterFunc(ctx, func() {
		s.cond.Broadcast()
	})
	defer stopWake()

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) > 0 || s.inflight > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.stopped {
			return nil
		}
		s.cond.Wait()
	}
	return nil
}

// worker loops: dequeue, rate limit, acquire proxy, fetch, dispatch.
func (s *Scheduler) worker(ctx context.Context, id int) error {
	for {
		e := s.dequeue(ctx)
		if e == nil {
			return ctx.Err()
		}

		if err := s.limiter.Wait(ctx, id); err != nil {
			s.finish(e, err)
			return err
		}

		s.attempt(ctx, id, e)

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// dequeue pops the next entry, blocking while the queue is empty.
// Returns nil when the scheduler stops or the context dies. The popped
// entry counts as inflight until finish runs.
func (s *Scheduler) dequeue(ctx context.Context) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.stopped || ctx.Err() != nil {
			return nil
		}
		if len(s.queue) > 0 {
			e := s.queue[0]
			s.queue = s.queue[1:]
			s.inflight++
			e.task.State = model.TaskInflight
			return e
		}
		s.cond.Wait()
	}
}

// attempt performs one fetch attempt and routes the outcome through the
// retry policy.
func (s *Scheduler) attempt(ctx context.Context, worker int, e *entry) {
	task := e.task

	endpoint, err := s.acquire(ctx, e)
	if err != nil {
		s.finish(e, err)
		return
	}
	task.Proxy = endpoint

	s.emit(Event{Type: EventTaskStarted, Task: task})
	s.logger.Debug("fetching",
		"worker", worker,
		"keyword", task.Keyword,
		"purpose", task.Purpose,
		"page", task.Page,
		"attempt", task.Retries+1,
	)

	res, err := s.fetch.Fetch(ctx, task, endpoint)
	if err == nil {
		err = s.handle(ctx, task, res)
	}
	if err == nil {
		task.State = model.TaskSucceeded
		s.emit(Event{Type: EventTaskSucceeded, Task: task})
		s.finish(e, nil)
		return
	}

	s.dispose(e, err)
}

// acquire picks the proxy for this attempt, avoiding the endpoint the
// previous failed attempt used when the pool has an alternative.
func (s *Scheduler) acquire(ctx context.Context, e *entry) (string, error) {
	if e.exclude != "" {
		return s.proxies.AcquireExcluding(ctx, e.exclude)
	}
	return s.proxies.Acquire(ctx)
}

// dispose applies the retry policy to a failed attempt.
//
// A detected block gets one retry that does not count against the
// budget; the fetcher has already quarantined the proxy by the time the
// error reaches us. Everything retryable after that burns budget.
func (s *Scheduler) dispose(e *entry, cause error) {
	task := e.task
	kind := fetcher.KindOf(cause)

	if kind == fetcher.KindBlocked && !e.blockedFree {
		e.blockedFree = true
		e.exclude = task.Proxy
		task.State = model.TaskRetrying
		s.logger.Warn("block detected, retrying with fresh proxy",
			"keyword", task.Keyword,
			"purpose", task.Purpose,
			"proxy", task.Proxy,
		)
		s.emit(Event{Type: EventProxyBlocked, Task: task, Err: cause})
		s.requeue(e, 0)
		return
	}

	retryable := fetcher.Retryable(cause) || kind == fetcher.KindBlocked
	if retryable && task.Retries < s.maxRetries {
		task.Retries++
		e.exclude = task.Proxy
		task.State = model.TaskRetrying
		delay := s.backoff(task.Retries)
		s.logger.Warn("fetch failed, will retry",
			"keyword", task.Keyword,
			"purpose", task.Purpose,
			"kind", kind.String(),
			"attempt", task.Retries,
			"backoff", delay,
			"error", cause,
		)
		s.emit(Event{Type: EventTaskRetried, Task: task, Err: cause})
		s.requeue(e, delay)
		return
	}

	task.State = model.TaskFailed
	s.logger.Error("task failed",
		"keyword", task.Keyword,
		"purpose", task.Purpose,
		"kind", kind.String(),
		"attempts", task.Retries+1,
		"error", cause,
	)
	s.emit(Event{Type: EventTaskFailed, Task: task, Err: cause})
	s.recordFailure(task, cause)
	s.finish(e, cause)
}

// requeue puts an entry back on the queue after delay. The entry keeps
// its inflight slot until it is queued again so Drain cannot observe an
// empty scheduler with a retry still pending.
func (s *Scheduler) requeue(e *entry, delay time.Duration) {
	enqueue := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.inflight--
		if s.stopped {
			s.cond.Broadcast()
			return
		}
		e.task.State = model.TaskPending
		s.queue = append(s.queue, e)
		s.cond.Broadcast()
	}
	if delay <= 0 {
		enqueue()
		return
	}
	time.AfterFunc(delay, enqueue)
}

// finish releases an entry's inflight slot.
func (s *Scheduler) finish(e *entry, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.cond.Broadcast()
}

// recordFailure appends a terminal failure record.
func (s *Scheduler) recordFailure(task *model.FetchTask, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, model.TaskFailure{
		Keyword:  task.Keyword,
		Purpose:  task.Purpose,
		Page:     task.Page,
		Attempts: task.Retries + 1,
		Reason:   cause.Error(),
	})
}
