// Package store persists completed run sessions to a JSONL history log
// and provides read-back for the history command. One store instance is
// created per watchman invocation in cmd/watchman/wiring.go.
package store

import "time"

// Writer persists completed runs to durable storage.
type Writer interface {
	Append(rec RunRecord) error
	Close() error
}

// Reader retrieves runs recorded in the current session.
type Reader interface {
	Runs() ([]RunRecord, error)
	SessionSummary() (SessionSummary, error)
}

// Store combines Writer and Reader into a single session-scoped handle.
type Store interface {
	Writer
	Reader
}

// RunRecord summarises one completed run session.
type RunRecord struct {
	SessionID   string    `json:"session_id"`
	RunID       string    `json:"run_id"`
	Branch      string    `json:"branch,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	Duration    float64   `json:"duration_s"`
	Passed      bool      `json:"passed"`
	Tests       int       `json:"tests"`
	Failed      int       `json:"failed,omitempty"`
	Skipped     int       `json:"skipped,omitempty"`
	NoTests     bool      `json:"no_tests,omitempty"`
	Interrupted bool      `json:"interrupted,omitempty"`
	OnlyChanged bool      `json:"only_changed,omitempty"`
	WatchAll    bool      `json:"watch_all,omitempty"`
	PathPattern string    `json:"path_pattern,omitempty"`
	NamePattern string    `json:"name_pattern,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// SessionSummary summarises the current watch session.
type SessionSummary struct {
	SessionID string
	StartedAt time.Time
	Runs      int
	Passed    int
	Failed    int
}
