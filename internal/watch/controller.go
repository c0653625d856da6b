package watch

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Options configures a Controller.
type Options struct {
	Config      RunConfig
	Runner      Runner
	Registry    *Registry // may be nil when no plugins are configured
	Output      io.Writer
	Interactive bool
	Logger      *log.Logger
	Events      chan<- Event // optional; sends never block
}

// Controller owns the watch loop: the current configuration snapshot,
// the focus lock, and the Idle/Running run state. All mutation happens
// under one mutex, interleaving key events and run completions without
// parallel access, as the Go rendition of a single-threaded event loop.
type Controller struct {
	mu          sync.Mutex
	cfg         RunConfig
	runner      Runner
	registry    *Registry
	dispatcher  *Dispatcher
	out         io.Writer
	interactive bool
	logger      *log.Logger
	events      chan<- Event

	ctx     context.Context
	running bool
	queued  bool // at most one coalesced rerun while a run is in flight
	current *Token

	pathPrompt *patternPrompt
	namePrompt *patternPrompt

	quitOnce sync.Once
	quitCh   chan struct{}
}

// NewController builds a Controller. The incoming configuration is
// normalized: PassWithNoTests is forced on and exactly one of
// Watch/WatchAll is derived.
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	c := &Controller{
		cfg:         opts.Config.Normalized(),
		runner:      opts.Runner,
		registry:    registry,
		out:         opts.Output,
		interactive: opts.Interactive,
		logger:      logger,
		events:      opts.Events,
		quitCh:      make(chan struct{}),
	}
	c.pathPrompt = newPatternPrompt(pathPattern, c.out)
	c.namePrompt = newPatternPrompt(namePattern, c.out)
	c.dispatcher = NewDispatcher(registry, DispatchHooks{
		Builtin:      c.builtin,
		Config:       func() RunConfig { return c.cfg },
		UpdateAndRun: c.updateAndRun,
	}, logger)
	return c
}

// Start prints the initial usage footer and triggers the first run.
// ctx bounds every run session started by the controller.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
	c.printUsage()
	c.triggerRun()
}

// Done is closed when the quit key is pressed.
func (c *Controller) Done() <-chan struct{} { return c.quitCh }

// OnKey feeds one key into the dispatcher. Safe to call from the input
// goroutine while runs are outstanding.
func (c *Controller) OnKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatcher.OnKey(key)
}

// Config returns the current configuration snapshot.
func (c *Controller) Config() RunConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Running reports whether a run session is in flight.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// builtin executes the built-in action for key and reports whether key
// was one. Called by the dispatcher with the controller lock held.
func (c *Controller) builtin(key string) bool {
	switch key {
	case KeyQuit:
		c.quit()
	case KeyRerun:
		// A rerun during a run coalesces into one queued follow-up
		// instead of interrupting; config-changing actions restart
		// immediately.
		if c.running {
			c.queued = true
		} else {
			c.triggerRun()
		}
	case KeyWatchAll:
		c.cfg = c.cfg.WithWatchAll()
		c.triggerRun()
	case KeyOnlyChanged:
		c.cfg = c.cfg.WithOnlyChanged()
		c.triggerRun()
	case KeyUpdateSnapshot:
		c.cfg = c.cfg.WithUpdateSnapshot(SnapshotAll)
		c.triggerRun()
	case KeyClearFilters:
		c.cfg = c.cfg.ClearFilters()
		c.triggerRun()
	case KeyPathPattern:
		c.dispatcher.Focus(c.pathPrompt)
	case KeyNamePattern:
		c.dispatcher.Focus(c.namePrompt)
	case KeyShowUsage:
		c.printUsage()
	default:
		return false
	}
	return true
}

// updateAndRun replaces the configuration and triggers a run. Invoked
// by plugins through their EnterControl and by Applier plugins; the
// lock is already held.
func (c *Controller) updateAndRun(cfg RunConfig) {
	c.cfg = cfg.Normalized()
	c.triggerRun()
}

// triggerRun supersedes any in-flight run and starts a new session with
// the current configuration. Caller holds the lock.
func (c *Controller) triggerRun() {
	if c.current != nil && c.running {
		c.current.Interrupt()
	}

	tok := NewToken(true)
	c.current = tok
	c.running = true

	fmt.Fprintln(c.out, "\nDetermining test suites to run...")
	c.emit(Event{Kind: EventRunStarted, Config: c.cfg, Token: tok})

	req := RunRequest{
		Config: c.cfg,
		Token:  tok,
		Output: c.out,
		OnComplete: func(res RunResult) {
			c.complete(tok, res)
		},
	}

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		if err := c.runner.Run(ctx, req); err != nil {
			c.logger.Error("runner failed", "err", err)
		}
	}()
}

// complete handles a run completion. A completion for a superseded
// token is a no-op; otherwise one-shot flags are cleared, the usage
// footer is reprinted, and an at-most-once queued rerun fires.
func (c *Controller) complete(tok *Token, res RunResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok != c.current {
		return // stale completion, silently ignored
	}

	c.cfg = c.cfg.ClearOneShot()
	c.running = false
	c.emit(Event{Kind: EventRunFinished, Config: c.cfg, Token: tok, Result: res})

	if res.Err != nil {
		// Runner failure is non-fatal; the loop keeps going.
		c.logger.Warn("run finished with error", "err", res.Err)
	}

	c.printUsage()

	if c.queued {
		c.queued = false
		c.triggerRun()
	}
}

// quit interrupts any in-flight run and signals shutdown. Idempotent.
func (c *Controller) quit() {
	if c.current != nil && c.running {
		c.current.Interrupt()
	}
	c.emit(Event{Kind: EventQuit, Config: c.cfg})
	c.quitOnce.Do(func() { close(c.quitCh) })
}

func (c *Controller) printUsage() {
	fmt.Fprint(c.out, Usage(c.registry, c.cfg, c.interactive))
}

// emit sends an event without blocking; slow consumers drop events.
func (c *Controller) emit(ev Event) {
	if c.events == nil {
		return
	}
	select {
	case c.events <- ev:
	default:
	}
}
