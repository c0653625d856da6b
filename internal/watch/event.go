package watch

// EventKind identifies the type of a controller event.
type EventKind int

const (
	EventRunStarted  EventKind = iota // a run session was triggered
	EventRunFinished                  // the current run completed
	EventQuit                         // the quit key was pressed
)

// Event is a structured notification emitted by the controller for
// collaborators outside the loop: the interactive front end, the run
// history store, and notifications. Sends are non-blocking; a slow
// consumer drops events rather than stalling the loop.
type Event struct {
	Kind   EventKind
	Config RunConfig
	Token  *Token
	Result RunResult // set for EventRunFinished
}
