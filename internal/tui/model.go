package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.Watchman/internal/tui/components"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/watch"
)

// KeySink receives the keys the TUI does not handle itself.
// *watch.Controller satisfies this interface.
type KeySink interface {
	OnKey(key string)
}

// Options configures the watch TUI.
type Options struct {
	Keys        KeySink
	Events      <-chan watch.Event
	Writer      *LineWriter // run output source; its Partial renders as the prompt row
	Project     string
	AccentColor string
}

// Model is the bubbletea model for the watch TUI.
type Model struct {
	keys   KeySink
	events <-chan watch.Event
	writer *LineWriter

	log     components.LogView
	theme   Theme
	project string
	width   int
	height  int

	running bool
	ranOnce bool
	last    watch.RunResult
	done    bool
}

// eventMsg wraps a controller event as a bubbletea message.
type eventMsg watch.Event

// lineMsg carries one committed output line.
type lineMsg string

// New creates a Model consuming events and output lines from the
// controller wiring.
func New(opts Options) Model {
	return Model{
		keys:    opts.Keys,
		events:  opts.Events,
		writer:  opts.Writer,
		log:     components.NewLogView(80, 21),
		theme:   NewTheme(opts.AccentColor),
		project: opts.Project,
		width:   80,
		height:  24,
	}
}

// Init starts listening for controller events and output lines.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), waitForLine(m.writer.Lines()))
}

// Done reports whether the session ended.
func (m Model) Done() bool { return m.done }

// waitForEvent returns a command that blocks on the event channel.
func waitForEvent(ch <-chan watch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventMsg(watch.Event{Kind: watch.EventQuit})
		}
		return eventMsg(ev)
	}
}

// waitForLine returns a command that blocks on the output line channel.
func waitForLine(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-ch
		if !ok {
			return nil
		}
		return lineMsg(line)
	}
}
