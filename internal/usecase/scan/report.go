package scan

import (
	"time"
)

// Status summarizes how a pipeline run went.
type Status string

const (
	StatusSucceeded       Status = "succeeded"
	StatusPartiallyFailed Status = "partially_failed"
	StatusFailed          Status = "failed"
)

// FeedFailure records one feed that could not be fetched.
type FeedFailure struct {
	Feed  string
	Error string
}

// ItemFailure records one article that could not be processed.
type ItemFailure struct {
	Title string
	Stage string // "score" or "notify"
	Error string
}

// Report carries the outcome of one pipeline run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	FeedsScanned   int
	Fetched        int
	Scored         int
	FallbackScored int
	Ranked         int
	Sent           int
	// Suppressed counts articles held back by the dedup store;
	// Undeliverable counts articles dropped because no transport is
	// enabled. Undeliverable items also appear in ItemFailures.
	Suppressed    int
	Undeliverable int
	Failed        int

	FeedFailures []FeedFailure
	ItemFailures []ItemFailure
}

// Status derives the overall run status. A run with no successful feed
// fetch is failed; partial feed or item failures degrade the run without
// failing it.
func (r *Report) Status() Status {
	if r.FeedsScanned > 0 && len(r.FeedFailures) == r.FeedsScanned {
		return StatusFailed
	}
	if len(r.FeedFailures) > 0 || len(r.ItemFailures) > 0 {
		return StatusPartiallyFailed
	}
	return StatusSucceeded
}
