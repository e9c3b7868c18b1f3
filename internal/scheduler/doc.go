// Package scheduler runs fetch tasks through a bounded worker pool with
// per-worker rate limiting, proxy rotation, and a bounded retry policy.
//
// Submission is idempotent: a keyword/purpose pair is accepted once per
// run no matter how many times it is discovered. The scheduler is the
// only writer of task state.
package scheduler
