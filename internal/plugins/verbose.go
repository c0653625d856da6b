package plugins

import "github.com/LISSConsulting/LISSTech.Watchman/internal/watch"

// verbosePlugin toggles verbose test output. The toggle persists until
// pressed again.
type verbosePlugin struct{}

func newVerbose(*Resolver, string) (watch.Plugin, error) { return verbosePlugin{}, nil }

func (verbosePlugin) Keys() []string { return []string{"v"} }

func (verbosePlugin) Prompt() string { return "toggle verbose test output" }

func (verbosePlugin) Enter(watch.RunConfig, watch.EnterControl) {}

func (verbosePlugin) Apply(cfg watch.RunConfig) watch.RunConfig {
	cfg.Verbose = !cfg.Verbose
	return cfg
}
