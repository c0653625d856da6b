package components

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewLogView(t *testing.T) {
	lv := NewLogView(80, 24)
	if !lv.Following() {
		t.Error("NewLogView: expected follow mode to be enabled by default")
	}
	if lv.width != 80 || lv.height != 24 {
		t.Errorf("dimensions: got %dx%d, want 80x24", lv.width, lv.height)
	}
}

func TestLogView_AppendLine(t *testing.T) {
	lv := NewLogView(80, 10)
	lv = lv.AppendLine("line 1")
	lv = lv.AppendLine("line 2")
	lv = lv.AppendLine("line 3")

	if len(lv.lines) != 3 {
		t.Errorf("expected 3 lines, got %d", len(lv.lines))
	}

	view := lv.View()
	for _, want := range []string{"line 1", "line 2", "line 3"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q: %q", want, view)
		}
	}
}

func TestLogView_AppendLine_FollowsBottom(t *testing.T) {
	lv := NewLogView(80, 2)
	for i := 0; i < 20; i++ {
		lv = lv.AppendLine(fmt.Sprintf("line %02d", i))
	}
	if !lv.vp.AtBottom() {
		t.Error("expected viewport pinned to bottom in follow mode")
	}
	if !strings.Contains(lv.View(), "line 19") {
		t.Errorf("expected newest line visible, got %q", lv.View())
	}
}

func TestLogView_SetSize(t *testing.T) {
	lv := NewLogView(80, 10)
	lv = lv.SetSize(100, 20)
	if lv.width != 100 || lv.height != 20 {
		t.Errorf("SetSize: got %dx%d, want 100x20", lv.width, lv.height)
	}
	if lv.vp.Width != 100 || lv.vp.Height != 20 {
		t.Errorf("viewport dimensions: got %dx%d, want 100x20", lv.vp.Width, lv.vp.Height)
	}
}

func TestLogView_View_Empty(t *testing.T) {
	lv := NewLogView(80, 10)
	// Should not panic; returns viewport content (may be empty or whitespace).
	_ = lv.View()
}

// scrollableLV returns a LogView with enough content to be scrollable,
// scrolled to the top so AtBottom() is false.
func scrollableLV(t *testing.T) LogView {
	t.Helper()
	lv := NewLogView(80, 2)
	for i := 0; i < 20; i++ {
		lv = lv.AppendLine(fmt.Sprintf("line %02d", i))
	}
	lv.vp.YOffset = 0
	if lv.vp.AtBottom() {
		t.Skip("viewport content does not exceed height — cannot test scroll path")
	}
	return lv
}

func TestLogView_Update_KeyAwayFromBottomLeavesFollow(t *testing.T) {
	lv := scrollableLV(t)
	if !lv.Following() {
		t.Fatal("precondition: follow should be on")
	}
	lv2, _ := lv.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if lv2.Following() {
		t.Error("expected follow mode off after scrolling away from bottom")
	}
}

func TestLogView_Update_MouseAwayFromBottomLeavesFollow(t *testing.T) {
	lv := scrollableLV(t)
	lv2, _ := lv.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	if lv2.Following() {
		t.Error("expected follow mode off after mouse scroll away from bottom")
	}
}

func TestLogView_Update_NonScrollMsgKeepsFollow(t *testing.T) {
	lv := scrollableLV(t)
	lv2, _ := lv.Update(tea.WindowSizeMsg{Width: 80, Height: 2})
	if !lv2.Following() {
		t.Error("expected follow mode to remain on after non-key/mouse msg")
	}
}

func TestLogView_Update_AtBottomKeepsFollow(t *testing.T) {
	// Large height so all lines fit and the viewport is always at bottom.
	lv := NewLogView(80, 100)
	for i := 0; i < 3; i++ {
		lv = lv.AppendLine(fmt.Sprintf("line %d", i))
	}
	if !lv.vp.AtBottom() {
		t.Skip("expected viewport to be at bottom for this test case")
	}
	lv2, _ := lv.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if !lv2.Following() {
		t.Error("expected follow mode to remain on when viewport is at bottom")
	}
}
