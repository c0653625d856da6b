// Package gotest parses the `go test -json` event stream.
package gotest

import "time"

// Action is the event kind emitted by the go test JSON protocol.
type Action string

const (
	ActionStart  Action = "start"
	ActionRun    Action = "run"
	ActionPause  Action = "pause"
	ActionCont   Action = "cont"
	ActionOutput Action = "output"
	ActionPass   Action = "pass"
	ActionFail   Action = "fail"
	ActionSkip   Action = "skip"
)

// Event is one decoded test event. Events without a Test name describe
// the enclosing package.
type Event struct {
	Time    time.Time `json:"Time"`
	Action  Action    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"` // seconds
	Output  string    `json:"Output"`
}

// PackageLevel reports whether the event describes a package rather
// than an individual test.
func (e Event) PackageLevel() bool { return e.Test == "" }

// Summary accumulates per-test results across a stream.
type Summary struct {
	Passed  int
	Failed  int
	Skipped int
	Elapsed float64 // sum of package elapsed times, seconds

	// FailedTests lists "package.Test" names in completion order.
	FailedTests []string

	// BuildFailed is set when a package fails without running any
	// tests, which is how compile errors surface in the stream.
	BuildFailed bool

	packageTests map[string]int
}

// Observe folds one event into the summary.
func (s *Summary) Observe(ev Event) {
	if s.packageTests == nil {
		s.packageTests = make(map[string]int)
	}

	if ev.PackageLevel() {
		switch ev.Action {
		case ActionPass, ActionFail, ActionSkip:
			s.Elapsed += ev.Elapsed
			if ev.Action == ActionFail && s.packageTests[ev.Package] == 0 {
				s.BuildFailed = true
			}
		}
		return
	}

	switch ev.Action {
	case ActionPass:
		s.Passed++
		s.packageTests[ev.Package]++
	case ActionFail:
		s.Failed++
		s.packageTests[ev.Package]++
		s.FailedTests = append(s.FailedTests, ev.Package+"."+ev.Test)
	case ActionSkip:
		s.Skipped++
		s.packageTests[ev.Package]++
	}
}

// Total returns the number of completed tests.
func (s *Summary) Total() int { return s.Passed + s.Failed + s.Skipped }

// OK reports whether every test passed and nothing failed to build.
func (s *Summary) OK() bool { return s.Failed == 0 && !s.BuildFailed }
