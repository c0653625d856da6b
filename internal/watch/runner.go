package watch

import (
	"context"
	"io"
	"time"
)

// RunRequest carries everything the execution engine needs for one run
// session.
type RunRequest struct {
	Config RunConfig
	Token  *Token
	Output io.Writer

	// OnComplete must be called exactly once per request, even when the
	// engine fails internally. The controller discards completions for
	// superseded tokens.
	OnComplete func(RunResult)
}

// RunResult summarizes one completed run session.
type RunResult struct {
	Passed      bool
	Tests       int
	Failed      int
	Skipped     int
	Duration    time.Duration
	NoTests     bool // no test targets matched the configuration
	Interrupted bool // run was superseded before finishing
	Err         error
}

// Runner is the external test-execution engine. Run executes one
// session for the given request; the controller invokes it on its own
// goroutine, so implementations may block until completion.
type Runner interface {
	Run(ctx context.Context, req RunRequest) error
}
