package model

import (
	"time"

	"github.com/google/uuid"
)

// RunKind distinguishes the two harvest flows.
type RunKind string

const (
	// RunScrape is a SERP scraping run.
	RunScrape RunKind = "scrape"

	// RunExpand is a keyword expansion run.
	RunExpand RunKind = "expand"
)

// RunMetadata records the provenance of a completed harvest run.
// It is attached to exports and persisted alongside results.
type RunMetadata struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Kind is the flow that produced the run.
	Kind RunKind `json:"kind"`

	// Language is the ISO 639 language code used for queries.
	Language string `json:"language"`

	// Country is the ISO 3166 country code used for geo-targeting.
	Country string `json:"country"`

	// Seeds are the input keywords, in the order provided.
	Seeds []string `json:"seeds"`

	// MaxDepth is the configured expansion depth limit.
	// Zero for scrape runs.
	MaxDepth int `json:"max_depth,omitempty"`

	// GeneratedAt is the run completion timestamp.
	GeneratedAt time.Time `json:"generated_at"`

	// TaskCount is the total number of fetch tasks attempted.
	TaskCount int `json:"task_count"`

	// FailedTasks is the number of tasks that exhausted their retry budget.
	FailedTasks int `json:"failed_tasks"`
}

// NewRunMetadata creates run metadata with a fresh ID and the current time.
func NewRunMetadata(kind RunKind, language, country string, seeds []string) RunMetadata {
	return RunMetadata{
		ID:          uuid.NewString(),
		Kind:        kind,
		Language:    language,
		Country:     country,
		Seeds:       seeds,
		GeneratedAt: time.Now(),
	}
}

// TaskFailure records a task that was dropped after exhausting its retries.
// Failures are diagnostics: they are reported but never abort the run.
type TaskFailure struct {
	// Keyword is the task's target keyword.
	Keyword string `json:"keyword"`

	// Purpose is the task's flow.
	Purpose Purpose `json:"purpose"`

	// Page is the task's result page number.
	Page int `json:"page"`

	// Attempts is the number of attempts consumed.
	Attempts int `json:"attempts"`

	// Reason is the final error message.
	Reason string `json:"reason"`
}
