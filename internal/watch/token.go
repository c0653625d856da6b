// Package watch implements the interactive watch-mode controller: an
// event-driven loop that maps key input to configuration changes and
// run sessions, and hosts pluggable interactive extensions.
package watch

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Token identifies one run session. The controller mints a fresh token
// per run and interrupts the previous one when a new run supersedes it.
// Interruption is advisory: the runner decides how to wind down, and the
// controller discards stale completions by comparing tokens by identity.
type Token struct {
	id          uuid.UUID
	watchMode   bool
	interrupted atomic.Bool
}

// NewToken creates a token for a new run session.
func NewToken(watchMode bool) *Token {
	return &Token{
		id:        uuid.New(),
		watchMode: watchMode,
	}
}

// ID returns the session identifier, used for log correlation and
// history records.
func (t *Token) ID() uuid.UUID { return t.id }

// WatchMode reports whether this run was triggered from watch mode.
func (t *Token) WatchMode() bool { return t.watchMode }

// Interrupt marks the run as superseded. Idempotent.
func (t *Token) Interrupt() { t.interrupted.Store(true) }

// Interrupted reports whether the run has been superseded. Runners poll
// this to stop early; late results are discarded either way.
func (t *Token) Interrupted() bool { return t.interrupted.Load() }
