package watch

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRunner records every request and lets tests complete runs manually.
type fakeRunner struct {
	mu       sync.Mutex
	requests []RunRequest
	started  chan RunRequest
	auto     bool // complete immediately with result
	result   RunResult
}

func newFakeRunner(auto bool) *fakeRunner {
	return &fakeRunner{
		started: make(chan RunRequest, 16),
		auto:    auto,
		result:  RunResult{Passed: true, Tests: 1},
	}
}

func (f *fakeRunner) Run(_ context.Context, req RunRequest) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	f.started <- req
	if f.auto {
		req.OnComplete(f.result)
	}
	return nil
}

func (f *fakeRunner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// nextRun waits for the runner to receive a request.
func nextRun(t *testing.T, f *fakeRunner) RunRequest {
	t.Helper()
	select {
	case req := <-f.started:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a runner invocation")
		return RunRequest{}
	}
}

// noRun asserts that no further run starts within a short window.
func noRun(t *testing.T, f *fakeRunner) {
	t.Helper()
	select {
	case req := <-f.started:
		t.Fatalf("unexpected runner invocation with config %+v", req.Config)
	case <-time.After(50 * time.Millisecond):
	}
}

// waitIdle waits until the controller has processed the completion for
// the current run and returned to idle.
func waitIdle(t *testing.T, c *Controller) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !c.Running() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("controller never returned to idle")
}

type controllerEnv struct {
	c   *Controller
	r   *fakeRunner
	out *safeBuffer
}

// safeBuffer guards the output buffer against concurrent runner writes.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newControllerEnv(t *testing.T, cfg RunConfig, auto bool, plugins ...Plugin) *controllerEnv {
	t.Helper()
	reg := NewRegistry()
	reserved := make(map[string]bool)
	for _, k := range ReservedKeys() {
		reserved[k] = true
	}
	for _, p := range plugins {
		if err := reg.add(p, p.Prompt(), reserved); err != nil {
			t.Fatalf("register plugin: %v", err)
		}
	}

	env := &controllerEnv{r: newFakeRunner(auto), out: &safeBuffer{}}
	env.c = NewController(Options{
		Config:      cfg,
		Runner:      env.r,
		Registry:    reg,
		Output:      env.out,
		Interactive: true,
	})
	return env
}

func TestController_InitialRunCarriesConfiguration(t *testing.T) {
	cfg := RunConfig{TestPathPattern: "test-*", PassWithNoTests: false}
	env := newControllerEnv(t, cfg, false)
	env.c.Start(context.Background())

	req := nextRun(t, env.r)
	if req.Config.TestPathPattern != "test-*" {
		t.Errorf("TestPathPattern = %q, want %q", req.Config.TestPathPattern, "test-*")
	}
	if !req.Token.WatchMode() {
		t.Error("run token not marked as watch mode")
	}
	if !req.Config.PassWithNoTests {
		t.Error("PassWithNoTests not forced for a watch-mode run")
	}
	if env.r.calls() != 1 {
		t.Errorf("runner invoked %d times, want 1", env.r.calls())
	}
}

func TestController_RerunAfterCompletion(t *testing.T) {
	env := newControllerEnv(t, RunConfig{}, false)
	env.c.Start(context.Background())

	req1 := nextRun(t, env.r)
	req1.OnComplete(RunResult{Passed: true})
	waitIdle(t, env.c)

	env.c.OnKey(KeyRerun)
	req2 := nextRun(t, env.r)
	req2.OnComplete(RunResult{Passed: true})
	waitIdle(t, env.c)

	env.c.OnKey(KeyRerun)
	nextRun(t, env.r)

	if env.r.calls() != 3 {
		t.Errorf("runner invoked %d times, want 3 (initial + two reruns)", env.r.calls())
	}
}

func TestController_RerunWhileRunningCoalesces(t *testing.T) {
	env := newControllerEnv(t, RunConfig{}, false)
	env.c.Start(context.Background())

	req1 := nextRun(t, env.r)

	// Multiple rerun presses while running queue exactly one follow-up.
	env.c.OnKey(KeyRerun)
	env.c.OnKey(KeyRerun)
	env.c.OnKey(KeyRerun)
	noRun(t, env.r)

	req1.OnComplete(RunResult{Passed: true})
	req2 := nextRun(t, env.r)
	req2.OnComplete(RunResult{Passed: true})
	waitIdle(t, env.c)
	noRun(t, env.r)

	if env.r.calls() != 2 {
		t.Errorf("runner invoked %d times, want 2", env.r.calls())
	}
}

func TestController_ConfigChangeInterruptsInFlightRun(t *testing.T) {
	env := newControllerEnv(t, RunConfig{}, false)
	env.c.Start(context.Background())

	req1 := nextRun(t, env.r)
	env.c.OnKey(KeyWatchAll)
	req2 := nextRun(t, env.r)

	if !req1.Token.Interrupted() {
		t.Error("superseded token not interrupted")
	}
	if req2.Token.Interrupted() {
		t.Error("fresh token already interrupted")
	}
	if !req2.Config.WatchAll {
		t.Error("new run does not carry the watch-all configuration")
	}

	// The stale completion must not flip the controller back to idle.
	req1.OnComplete(RunResult{Passed: false})
	time.Sleep(20 * time.Millisecond)
	if !env.c.Running() {
		t.Error("stale completion changed controller state")
	}

	req2.OnComplete(RunResult{Passed: true})
	waitIdle(t, env.c)
}

func TestController_UpdateSnapshotIsOneShot(t *testing.T) {
	env := newControllerEnv(t, RunConfig{}, false)
	env.c.Start(context.Background())
	req := nextRun(t, env.r)
	req.OnComplete(RunResult{Passed: true})
	waitIdle(t, env.c)

	env.c.OnKey(KeyUpdateSnapshot)
	req = nextRun(t, env.r)
	if req.Config.UpdateSnapshot != SnapshotAll {
		t.Errorf("UpdateSnapshot = %q after update key, want %q", req.Config.UpdateSnapshot, SnapshotAll)
	}
	req.OnComplete(RunResult{Passed: true})
	waitIdle(t, env.c)

	// The very next run, with no key in between except the trigger,
	// must not update snapshots again.
	env.c.OnKey(KeyRerun)
	req = nextRun(t, env.r)
	if req.Config.UpdateSnapshot != SnapshotNone {
		t.Errorf("UpdateSnapshot = %q on following run, want %q", req.Config.UpdateSnapshot, SnapshotNone)
	}
}

func TestController_PassWithNoTestsForcedOnEveryRun(t *testing.T) {
	env := newControllerEnv(t, RunConfig{PassWithNoTests: false}, false)
	env.c.Start(context.Background())

	for _, key := range []string{KeyWatchAll, KeyOnlyChanged, KeyUpdateSnapshot} {
		env.c.OnKey(key)
	}
	// Initial run plus one per key press; every one must carry the
	// forced flag.
	for i := 0; i < 4; i++ {
		req := nextRun(t, env.r)
		if !req.Config.PassWithNoTests {
			t.Errorf("run %d: PassWithNoTests = false, want forced true", i+1)
		}
	}
}

func TestController_PluginFocusSuppressesBuiltins(t *testing.T) {
	p := &focusPlugin{keys: []string{"x"}, prompt: "hold focus"}
	env := newControllerEnv(t, RunConfig{}, false, p)
	env.c.Start(context.Background())
	nextRun(t, env.r)

	env.c.OnKey("x")
	if p.enterCalls != 1 {
		t.Fatalf("enterCalls = %d, want 1", p.enterCalls)
	}

	// Built-in actions are swallowed while the plugin holds focus.
	env.c.OnKey(KeyWatchAll)
	noRun(t, env.r)

	env.c.OnKey("x") // even the plugin's own trigger is just forwarded
	if p.enterCalls != 1 {
		t.Error("plugin re-entered while already focused")
	}

	p.ctl.End()
	env.c.OnKey(KeyWatchAll)
	req := nextRun(t, env.r)
	if !req.Config.WatchAll {
		t.Error("watch-all not dispatched after focus release")
	}
}

func TestController_PluginUpdateAndRun(t *testing.T) {
	p := &focusPlugin{keys: []string{"x"}, prompt: "mutate"}
	env := newControllerEnv(t, RunConfig{}, false, p)
	env.c.Start(context.Background())
	nextRun(t, env.r)

	env.c.OnKey("x")
	p.ctl.UpdateAndRun(p.lastCfg.WithTestNamePattern("TestBar"))
	p.ctl.End()

	req := nextRun(t, env.r)
	if req.Config.TestNamePattern != "TestBar" {
		t.Errorf("TestNamePattern = %q, want %q", req.Config.TestNamePattern, "TestBar")
	}
}

func TestController_PatternPromptEndToEnd(t *testing.T) {
	env := newControllerEnv(t, RunConfig{}, false)
	env.c.Start(context.Background())
	req := nextRun(t, env.r)
	req.OnComplete(RunResult{Passed: true})
	waitIdle(t, env.c)

	env.c.OnKey(KeyPathPattern)
	for _, r := range "pkg" {
		env.c.OnKey(string(r))
	}
	env.c.OnKey("enter")

	req = nextRun(t, env.r)
	if req.Config.TestPathPattern != "pkg" {
		t.Errorf("TestPathPattern = %q, want %q", req.Config.TestPathPattern, "pkg")
	}
}

func TestController_QuitClosesDoneAndInterrupts(t *testing.T) {
	env := newControllerEnv(t, RunConfig{}, false)
	env.c.Start(context.Background())
	req := nextRun(t, env.r)

	env.c.OnKey(KeyQuit)

	select {
	case <-env.c.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after quit key")
	}
	if !req.Token.Interrupted() {
		t.Error("in-flight run not interrupted on quit")
	}
}

func TestController_RunnerFailureKeepsLoopAlive(t *testing.T) {
	env := newControllerEnv(t, RunConfig{}, false)
	env.c.Start(context.Background())
	req := nextRun(t, env.r)

	req.OnComplete(RunResult{Passed: false, Err: context.DeadlineExceeded})
	waitIdle(t, env.c)

	// The loop still accepts reruns after a failed run.
	env.c.OnKey(KeyRerun)
	nextRun(t, env.r)
}

func TestController_UsageFooter(t *testing.T) {
	t.Run("interactive lists key prompts", func(t *testing.T) {
		env := newControllerEnv(t, RunConfig{}, false)
		env.c.Start(context.Background())
		if !strings.Contains(env.out.String(), "Watch Usage") {
			t.Error("interactive footer missing usage block")
		}
	})

	t.Run("non-interactive omits key prompts", func(t *testing.T) {
		r := newFakeRunner(false)
		out := &safeBuffer{}
		c := NewController(Options{
			Config:      RunConfig{},
			Runner:      r,
			Output:      out,
			Interactive: false,
		})
		c.Start(context.Background())
		nextRun(t, r)
		if strings.Contains(out.String(), "Press") {
			t.Error("non-interactive footer lists per-key prompts")
		}
		if !strings.Contains(out.String(), "Watch mode is active.") {
			t.Error("non-interactive footer missing minimal summary")
		}
	})
}

func TestController_EventsEmitted(t *testing.T) {
	events := make(chan Event, 16)
	r := newFakeRunner(false)
	c := NewController(Options{
		Config:      RunConfig{},
		Runner:      r,
		Output:      &safeBuffer{},
		Interactive: true,
		Events:      events,
	})
	c.Start(context.Background())
	req := nextRun(t, r)

	ev := <-events
	if ev.Kind != EventRunStarted {
		t.Fatalf("first event = %v, want EventRunStarted", ev.Kind)
	}

	req.OnComplete(RunResult{Passed: true, Tests: 4})
	ev = <-events
	if ev.Kind != EventRunFinished || ev.Result.Tests != 4 {
		t.Fatalf("second event = %+v, want EventRunFinished with 4 tests", ev)
	}
}
