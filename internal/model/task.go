package model

import (
	"fmt"
	"strings"
)

// Purpose identifies what a fetch task is for.
// The same keyword may be fetched once per purpose: once to scrape its
// search results page and once to query the suggestion API.
type Purpose string

const (
	// PurposeScrape fetches and renders a search results page for a keyword.
	PurposeScrape Purpose = "scrape"

	// PurposeSuggest queries the autocomplete suggestion API for a keyword prefix.
	PurposeSuggest Purpose = "suggest"
)

// TaskState tracks a task through its lifecycle.
// Transitions: pending -> inflight -> {succeeded | retrying -> inflight ... | failed}.
//
// Design decision: The state machine is explicit rather than implied by
// goroutine position so the retry policy is independent of the concurrency
// primitive driving it. The scheduler is the only writer.
type TaskState string

const (
	// TaskPending means the task is queued and waits for a worker.
	TaskPending TaskState = "pending"

	// TaskInflight means a worker is currently fetching the task.
	TaskInflight TaskState = "inflight"

	// TaskSucceeded means the fetch completed and was dispatched downstream.
	TaskSucceeded TaskState = "succeeded"

	// TaskRetrying means the task failed recoverably and is queued again.
	TaskRetrying TaskState = "retrying"

	// TaskFailed means the retry budget is exhausted. Terminal.
	TaskFailed TaskState = "failed"
)

// FetchTask is one unit of work for the scheduler.
//
// A task is created by the engine (scrape flow) or the expander (suggest flow),
// attempted up to a bounded number of retries by the scheduler, and then either
// produces a SerpResult/KeywordNode batch or a terminal failure record.
//
// Design decision: Retries and Proxy are the only mutable fields; everything
// else is fixed at creation. The scheduler rewrites them on retry rather than
// allocating a new task so in-flight bookkeeping stays keyed on task identity.
type FetchTask struct {
	// Keyword is the target keyword or suggestion prefix.
	Keyword string `json:"keyword"`

	// Purpose selects the scrape flow or the suggest flow.
	Purpose Purpose `json:"purpose"`

	// Page is the 1-based result page number. Always 1 for suggest tasks.
	Page int `json:"page"`

	// Depth is the expansion depth of the keyword (0 for seeds).
	Depth int `json:"depth"`

	// Parent is the keyword this task was derived from. Empty for seeds.
	Parent string `json:"parent,omitempty"`

	// Retries is the number of attempts already consumed.
	Retries int `json:"retries"`

	// Proxy is the endpoint assigned for the current attempt.
	// Empty when fetching directly.
	Proxy string `json:"proxy,omitempty"`

	// State is the task's position in its lifecycle.
	State TaskState `json:"state"`
}

// VisitedKey returns the deduplication key for the task: the normalized
// keyword combined with the purpose, plus the page number for paginated
// scrapes. Two tasks with the same key refer to the same fetch and must
// not both run.
func (t *FetchTask) VisitedKey() string {
	key := VisitedKey(t.Keyword, t.Purpose)
	if t.Page > 1 {
		key = fmt.Sprintf("%s\x00p%d", key, t.Page)
	}
	return key
}

// VisitedKey builds the process-wide dedup key for a keyword and purpose.
// Normalization lower-cases the keyword and collapses internal whitespace so
// "Cat  Food" and "cat food" claim the same slot.
func VisitedKey(keyword string, purpose Purpose) string {
	return fmt.Sprintf("%s\x00%s", NormalizeKeyword(keyword), purpose)
}

// NormalizeKeyword lower-cases a keyword and collapses runs of whitespace
// into single spaces. This is the canonical form used for deduplication;
// display strings keep their original casing.
func NormalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(strings.ToLower(keyword)), " ")
}
