package watch

import (
	"github.com/charmbracelet/log"
)

// DispatchHooks connects the dispatcher to the controller without
// giving it ownership of controller state.
type DispatchHooks struct {
	// Builtin executes a built-in action for key and reports whether
	// the key was one. Only consulted in the idle state.
	Builtin func(key string) bool

	// Config returns the current configuration snapshot (read view).
	Config func() RunConfig

	// UpdateAndRun replaces the configuration and triggers a run.
	UpdateAndRun func(cfg RunConfig)
}

// Dispatcher routes incoming keys. It is an explicit two-state machine:
// idle (keys go to built-ins, then to plugin triggers) or focused (one
// plugin owns all input until it releases focus). Unmapped keys are a
// no-op, never an error.
type Dispatcher struct {
	registry *Registry
	hooks    DispatchHooks
	logger   *log.Logger
	focused  Plugin
}

// NewDispatcher creates a Dispatcher over the given plugin registry.
func NewDispatcher(registry *Registry, hooks DispatchHooks, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		registry: registry,
		hooks:    hooks,
		logger:   logger,
	}
}

// Focused returns the plugin currently holding focus, or nil when idle.
func (d *Dispatcher) Focused() Plugin { return d.focused }

// OnKey processes one key.
func (d *Dispatcher) OnKey(key string) {
	if d.focused != nil {
		// Focused plugins see keys only if they opted in; everything
		// else is swallowed, not queued.
		if kh, ok := d.focused.(KeyHandler); ok {
			kh.OnKey(key)
		}
		return
	}

	if d.hooks.Builtin != nil && d.hooks.Builtin(key) {
		return
	}

	p := d.registry.ByKey(key)
	if p == nil {
		return
	}

	if ap, ok := p.(Applier); ok {
		d.hooks.UpdateAndRun(ap.Apply(d.hooks.Config()))
		return
	}

	d.Focus(p)
}

// Focus transfers exclusive input to p and invokes its Enter. A panic
// inside Enter is a plugin fault: it is logged and focus is
// force-released so the controller never hangs on a broken plugin.
func (d *Dispatcher) Focus(p Plugin) {
	d.focused = p
	ctl := EnterControl{
		UpdateAndRun: d.hooks.UpdateAndRun,
		End:          d.releaseFunc(p),
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("plugin panicked in Enter, releasing focus", "plugin", p.Prompt(), "panic", r)
			if d.focused == p {
				d.focused = nil
			}
		}
	}()
	p.Enter(d.hooks.Config(), ctl)
}

// releaseFunc builds the End callback for p. Release happens at most
// once: a second call, or a call after a fault already released focus,
// is a no-op.
func (d *Dispatcher) releaseFunc(p Plugin) func() {
	return func() {
		if d.focused == p {
			d.focused = nil
		}
	}
}
