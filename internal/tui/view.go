package tui

import (
	"fmt"
	"strings"
)

// View renders the TUI: header bar, scrollable run log, prompt row,
// footer bar.
func (m Model) View() string {
	return m.renderHeader() + "\n" +
		m.log.View() + "\n" +
		m.renderPrompt() + "\n" +
		m.renderFooter()
}

func (m Model) renderHeader() string {
	state := "idle"
	if m.running {
		state = m.theme.runningStyle.Render("running")
	}

	parts := []string{"watchman"}
	if m.project != "" {
		parts = append(parts, m.project)
	}
	parts = append(parts,
		fmt.Sprintf("state: %s", state),
		fmt.Sprintf("last: %s", m.lastLabel()),
	)

	content := strings.Join(parts, "  │  ")
	return m.theme.headerStyle.Width(m.width).Render(content)
}

// lastLabel summarizes the most recent completed run for the header.
func (m Model) lastLabel() string {
	switch {
	case !m.ranOnce:
		return "—"
	case m.last.Interrupted:
		return "interrupted"
	case m.last.Err != nil:
		return failStyle.Render("runner error")
	case m.last.NoTests:
		return "no tests"
	case m.last.Passed:
		return passStyle.Render(fmt.Sprintf("✓ %d passed", m.last.Tests-m.last.Skipped))
	default:
		return failStyle.Render(fmt.Sprintf("✗ %d of %d failed", m.last.Failed, m.last.Tests))
	}
}

// renderPrompt shows the uncommitted output line, where pattern prompts
// echo their input.
func (m Model) renderPrompt() string {
	partial := m.writer.Partial()
	if partial == "" {
		return ""
	}
	return promptStyle.Render(partial)
}

func (m Model) renderFooter() string {
	left := "w usage  ·  enter rerun"
	right := "q to quit"

	gap := m.width - len(left) - len(right)
	if gap < 2 {
		gap = 2
	}

	return footerStyle.Width(m.width).Render(
		left + strings.Repeat(" ", gap) + right,
	)
}
