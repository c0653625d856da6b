// Package runner executes test runs by spawning `go test -json` and
// streaming parsed results back to the watch controller.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"

	"github.com/LISSConsulting/LISSTech.Watchman/internal/gotest"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/watch"
)

// interruptPoll is how often an in-flight run checks its token.
const interruptPoll = 50 * time.Millisecond

// ChangeDetector reports files touched since the last commit.
// *git.Runner satisfies this interface.
type ChangeDetector interface {
	ChangedFiles() ([]string, error)
	LastCommitFiles() ([]string, error)
}

// GoTest implements watch.Runner by spawning the go toolchain as a
// subprocess and parsing its JSON event stream.
type GoTest struct {
	// Command is the test executable. Defaults to "go".
	Command string

	// BaseArgs precede the computed flags. Defaults to ["test", "-json"].
	BaseArgs []string

	// SnapshotEnv, when non-empty, names an environment variable set to
	// the snapshot mode ("new" or "all") for runs that update snapshots.
	SnapshotEnv string

	// Git scopes only-changed runs. When nil, only-changed runs fall
	// back to the full suite.
	Git ChangeDetector

	Logger *log.Logger
}

// NewGoTest creates a GoTest runner with default command and args.
func NewGoTest(git ChangeDetector, logger *log.Logger) *GoTest {
	return &GoTest{
		Command:  "go",
		BaseArgs: []string{"test", "-json"},
		Git:      git,
		Logger:   logger,
	}
}

// Run executes one test session for the request. It blocks until the
// subprocess exits or the run token is interrupted, then reports the
// outcome through req.OnComplete exactly once.
func (g *GoTest) Run(ctx context.Context, req watch.RunRequest) error {
	start := time.Now()
	cfg := req.Config

	targets, err := g.targets(cfg)
	if err != nil {
		req.OnComplete(watch.RunResult{Duration: time.Since(start), Err: err})
		return err
	}
	if len(targets) == 0 {
		fmt.Fprintln(req.Output, noTargetsMessage(cfg))
		req.OnComplete(watch.RunResult{
			Passed:   cfg.PassWithNoTests,
			NoTests:  true,
			Duration: time.Since(start),
		})
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Cancel the subprocess as soon as the token is interrupted.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(interruptPoll)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if req.Token.Interrupted() {
					cancel()
					return
				}
			}
		}
	}()

	cmd := exec.CommandContext(runCtx, g.command(), g.buildArgs(cfg, targets)...)
	cmd.Dir = cfg.RootDir
	cmd.Env = g.buildEnv(cfg)
	cmd.Stderr = req.Output

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		err = fmt.Errorf("runner: stdout pipe: %w", err)
		req.OnComplete(watch.RunResult{Duration: time.Since(start), Err: err})
		return err
	}

	if err := cmd.Start(); err != nil {
		err = fmt.Errorf("runner: start %s: %w", g.command(), err)
		req.OnComplete(watch.RunResult{Duration: time.Since(start), Err: err})
		return err
	}

	var summary gotest.Summary
	for ev := range gotest.ParseStream(stdout) {
		if ev.Action == gotest.ActionOutput {
			io.WriteString(req.Output, ev.Output)
		}
		summary.Observe(ev)
	}

	waitErr := cmd.Wait()
	interrupted := req.Token.Interrupted() || runCtx.Err() != nil

	res := watch.RunResult{
		Tests:       summary.Total(),
		Failed:      summary.Failed,
		Skipped:     summary.Skipped,
		Duration:    time.Since(start),
		Interrupted: interrupted,
	}

	switch {
	case interrupted:
		// Superseded runs are neither passed nor failed.
	case waitErr != nil && summary.Failed == 0 && !summary.BuildFailed:
		// Non-zero exit without reported failures means the toolchain
		// itself broke, not the tests.
		res.Err = fmt.Errorf("runner: %s exited: %w", g.command(), waitErr)
	case summary.Total() == 0 && !summary.BuildFailed:
		res.NoTests = true
		res.Passed = cfg.PassWithNoTests
		fmt.Fprintln(req.Output, noTargetsMessage(cfg))
	default:
		res.Passed = summary.OK()
	}

	if g.Logger != nil {
		g.Logger.Debug("run finished",
			"tests", res.Tests, "failed", res.Failed,
			"interrupted", res.Interrupted, "duration", res.Duration)
	}

	req.OnComplete(res)
	return res.Err
}

func (g *GoTest) command() string {
	if g.Command == "" {
		return "go"
	}
	return g.Command
}

// buildArgs constructs the subprocess arguments for one run.
func (g *GoTest) buildArgs(cfg watch.RunConfig, targets []string) []string {
	args := g.BaseArgs
	if args == nil {
		args = []string{"test", "-json"}
	}
	args = append(args[:len(args):len(args)], targets...)
	if cfg.TestNamePattern != "" {
		args = append(args, "-run", cfg.TestNamePattern)
	}
	if cfg.Verbose {
		args = append(args, "-v")
	}
	return args
}

// buildEnv returns the subprocess environment, adding the snapshot
// variable when this run updates snapshots.
func (g *GoTest) buildEnv(cfg watch.RunConfig) []string {
	env := os.Environ()
	if g.SnapshotEnv != "" && cfg.UpdateSnapshot != watch.SnapshotNone {
		env = append(env, fmt.Sprintf("%s=%s", g.SnapshotEnv, cfg.UpdateSnapshot))
	}
	return env
}

// noTargetsMessage mirrors the footer wording for empty match sets.
func noTargetsMessage(cfg watch.RunConfig) string {
	switch {
	case cfg.TestPathPattern != "":
		return fmt.Sprintf("No tests found matching path pattern %q.", cfg.TestPathPattern)
	case cfg.OnlyChanged && !cfg.WatchAll:
		return "No tests found related to changed files."
	default:
		return "No test packages found."
	}
}
