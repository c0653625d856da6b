package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.Watchman/internal/watch"
)

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.log = m.log.SetSize(msg.Width, m.logHeight())
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd

	case eventMsg:
		return m.handleEvent(watch.Event(msg))

	case lineMsg:
		m.log = m.log.AppendLine(string(msg))
		return m, waitForLine(m.writer.Lines())
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		// Ask the controller to wind down; EventQuit closes the program.
		m.keys.OnKey(watch.KeyQuit)
		return m, nil
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd
	default:
		m.keys.OnKey(msg.String())
		return m, nil
	}
}

func (m Model) handleEvent(ev watch.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case watch.EventRunStarted:
		m.running = true
	case watch.EventRunFinished:
		m.running = false
		m.ranOnce = true
		m.last = ev.Result
	case watch.EventQuit:
		m.done = true
		return m, tea.Quit
	}
	return m, waitForEvent(m.events)
}

// logHeight is the rows left for the log between header and prompt row
// plus footer.
func (m Model) logHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}
