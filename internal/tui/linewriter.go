package tui

import (
	"strings"
	"sync"
)

// LineWriter adapts run output for the TUI. A '\n' commits the pending
// text as one line on the Lines channel; a '\r' discards the pending
// text so prompt redraws replace the prompt row instead of stacking.
// Writes never block: when the channel is full the line is dropped.
type LineWriter struct {
	mu      sync.Mutex
	pending strings.Builder
	lines   chan string
}

// NewLineWriter creates a LineWriter buffering up to size lines.
func NewLineWriter(size int) *LineWriter {
	return &LineWriter{lines: make(chan string, size)}
}

// Lines returns the channel of committed lines.
func (w *LineWriter) Lines() <-chan string { return w.lines }

// Partial returns the uncommitted text, the content of the prompt row.
func (w *LineWriter) Partial() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending.String()
}

// Write implements io.Writer.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, b := range p {
		switch b {
		case '\n':
			select {
			case w.lines <- w.pending.String():
			default:
			}
			w.pending.Reset()
		case '\r':
			w.pending.Reset()
		default:
			w.pending.WriteByte(b)
		}
	}
	return len(p), nil
}
