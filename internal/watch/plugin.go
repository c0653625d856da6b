package watch

// Plugin is an interactive watch extension. Implementations are
// resolved from locators at controller start and held for the
// controller's lifetime.
type Plugin interface {
	// Keys returns the trigger keys that route input to this plugin.
	// Must be non-empty and must not collide with built-in keys or
	// another plugin's keys.
	Keys() []string

	// Prompt returns the one-line description shown in the usage
	// footer. Footer ordering is lexicographic by this string.
	Prompt() string

	// Enter is invoked when a trigger key is pressed while no other
	// plugin holds focus. The plugin owns all key input until it calls
	// ctl.End exactly once.
	Enter(cfg RunConfig, ctl EnterControl)
}

// Applier is an optional capability: plugins that implement it perform
// an immediate configuration mutation on keypress and never take focus.
// Apply takes precedence over Enter.
type Applier interface {
	Apply(cfg RunConfig) RunConfig
}

// KeyHandler is an optional capability: a focused plugin that
// implements it receives the keys pressed while it holds focus.
// Without it, keys arriving during focus are swallowed.
type KeyHandler interface {
	OnKey(key string)
}

// EnterControl is the focus-session handle passed to Plugin.Enter.
// Its callbacks must be invoked from the plugin's Enter or OnKey call
// stack: the loop is cooperative and single-threaded, and the
// controller does not synchronize callbacks fired from other
// goroutines.
type EnterControl struct {
	// UpdateAndRun replaces the current configuration and triggers a
	// run. The plugin may call it zero or more times before End.
	UpdateAndRun func(cfg RunConfig)

	// End releases exclusive focus. Must be called exactly once; a
	// plugin that never calls it blocks further input by contract.
	End func()
}
