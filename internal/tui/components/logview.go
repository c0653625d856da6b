// Package components holds reusable TUI widgets.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// LogView is a scrollable run log that wraps bubbles/viewport. In
// follow mode (default), appended lines keep the view pinned to the
// bottom; scrolling up with the keys or mouse leaves follow mode, and
// scrolling back to the bottom re-enters it.
type LogView struct {
	vp     viewport.Model
	lines  []string
	follow bool
	width  int
	height int
}

// NewLogView creates a LogView with the given dimensions, initially in
// follow mode.
func NewLogView(w, h int) LogView {
	vp := viewport.New(w, h)
	return LogView{
		vp:     vp,
		follow: true,
		width:  w,
		height: h,
	}
}

// AppendLine appends a pre-rendered line to the log. In follow mode the
// viewport scrolls to the bottom.
func (v LogView) AppendLine(rendered string) LogView {
	v.lines = append(v.lines, rendered)
	v.vp.SetContent(strings.Join(v.lines, "\n"))
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// SetSize resizes the log view to the given dimensions.
func (v LogView) SetSize(w, h int) LogView {
	v.width = w
	v.height = h
	v.vp.Width = w
	v.vp.Height = h
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// Following reports whether follow mode is currently active.
func (v LogView) Following() bool {
	return v.follow
}

// Update handles bubbletea messages (scroll keys, mouse events).
func (v LogView) Update(msg tea.Msg) (LogView, tea.Cmd) {
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg:
		v.follow = v.vp.AtBottom()
	}
	return v, cmd
}

// View renders the visible log content.
func (v LogView) View() string {
	return v.vp.View()
}
