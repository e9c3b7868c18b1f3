package scheduler

import "github.com/serpharvest/serpharvest/internal/model"

// EventType labels a scheduler event.
type EventType string

const (
	// EventTaskStarted fires when a worker begins a fetch attempt.
	EventTaskStarted EventType = "task_started"

	// EventTaskSucceeded fires when a task's fetch and handler complete.
	EventTaskSucceeded EventType = "task_succeeded"

	// EventTaskRetried fires when a failed attempt is requeued.
	EventTaskRetried EventType = "task_retried"

	// EventTaskFailed fires when a task exhausts its retry budget.
	EventTaskFailed EventType = "task_failed"

	// EventProxyBlocked fires when a block page quarantines a proxy and
	// the task gets its uncounted retry.
	EventProxyBlocked EventType = "proxy_blocked"
)

// Event is a point-in-time progress notification. The Task pointer is
// live scheduler state; consumers should read, not mutate.
type Event struct {
	Type EventType
	Task *model.FetchTask
	Err  error
}

// emit publishes an event without ever blocking a worker. Events are
// dropped when the buffer is full or no stream was requested.
func (s *Scheduler) emit(ev Event) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}
