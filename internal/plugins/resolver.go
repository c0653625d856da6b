// Package plugins resolves watch plugin locators and ships the built-in
// plugin set.
package plugins

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"plugin"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/LISSConsulting/LISSTech.Watchman/internal/notify"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/watch"
)

// Factory constructs one plugin instance for a session rooted at dir.
type Factory func(r *Resolver, rootDir string) (watch.Plugin, error)

// builtins maps locator names to shipped plugin factories.
var builtins = map[string]Factory{
	"verbose":  newVerbose,
	"snapshot": newSnapshot,
	"notify":   newNotify,
}

// Resolver maps configured locators to plugin instances. Bare names
// resolve against the built-in set; locators ending in .so are loaded as
// Go plugin objects exposing a `New` symbol.
type Resolver struct {
	// Out receives plugin output during focus sessions. Defaults to
	// os.Stdout; watch sessions point it at the controller's writer.
	Out io.Writer

	// Notifier backs the shipped notify plugin. Nil when notifications
	// are not configured.
	Notifier *notify.Notifier
}

// NewResolver creates a Resolver over the built-in plugin set.
func NewResolver() *Resolver { return &Resolver{Out: os.Stdout} }

// Resolve returns the plugin for locator. Unknown names get a closest
// match suggestion.
func (r *Resolver) Resolve(locator, rootDir string) (watch.Plugin, error) {
	if strings.HasSuffix(locator, ".so") {
		return loadShared(locator, rootDir)
	}

	factory, ok := builtins[locator]
	if !ok {
		if suggestion := closest(locator); suggestion != "" {
			return nil, fmt.Errorf("plugins: unknown plugin %q (did you mean %q?)", locator, suggestion)
		}
		return nil, fmt.Errorf("plugins: unknown plugin %q", locator)
	}
	return factory(r, rootDir)
}

// Names returns the built-in locator names, sorted.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// closest returns the nearest built-in name within edit distance 3.
func closest(locator string) string {
	best, bestDist := "", 4
	for name := range builtins {
		if d := levenshtein.ComputeDistance(locator, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// loadShared opens a compiled plugin object. Relative paths resolve
// against the session root.
func loadShared(locator, rootDir string) (watch.Plugin, error) {
	path := locator
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, path)
	}
	obj, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("plugins: open %q: %w", locator, err)
	}
	sym, err := obj.Lookup("New")
	if err != nil {
		return nil, fmt.Errorf("plugins: %q has no New symbol: %w", locator, err)
	}
	ctor, ok := sym.(func() watch.Plugin)
	if !ok {
		return nil, fmt.Errorf("plugins: %q: New is %T, want func() watch.Plugin", locator, sym)
	}
	return ctor(), nil
}
