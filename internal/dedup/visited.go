// Package dedup provides the process-wide visited set guarding duplicate
// fetches and expansions.
package dedup

import (
	"sync"

	"github.com/serpharvest/serpharvest/internal/model"
)

// VisitedSet atomically records which (keyword, purpose) pairs have been
// claimed. It is the single synchronization point preventing duplicate
// work under concurrent workers: whichever worker claims a key first owns
// the fetch, all later claims are rejected.
//
// Design decision: The critical section is a map probe under one mutex and
// nothing else. Workers block here for nanoseconds, never for I/O.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates an empty VisitedSet.
func New() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// TryVisit checks-and-marks the pair in one atomic step.
// Returns true only for the first caller to claim the key.
func (v *VisitedSet) TryVisit(keyword string, purpose model.Purpose) bool {
	return v.claim(model.VisitedKey(keyword, purpose))
}

// TryVisitTask claims a task's key, which additionally carries the page
// number for paginated scrapes.
func (v *VisitedSet) TryVisitTask(task *model.FetchTask) bool {
	return v.claim(task.VisitedKey())
}

func (v *VisitedSet) claim(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

// Visited reports whether the pair has already been claimed, without
// claiming it.
func (v *VisitedSet) Visited(keyword string, purpose model.Purpose) bool {
	key := model.VisitedKey(keyword, purpose)

	v.mu.Lock()
	defer v.mu.Unlock()

	_, ok := v.seen[key]
	return ok
}

// Len returns the number of claimed keys.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}
