package watch

import (
	"fmt"
	"sort"
)

// Resolver turns a plugin locator into a Plugin. Locators are resolved
// relative to the project root so plugins are addressable by name or by
// project-relative path. Resolution errors are fatal at startup.
type Resolver interface {
	Resolve(locator, rootDir string) (Plugin, error)
}

// Registry indexes loaded plugins by trigger key and keeps the footer
// display order. At most one plugin per key; collisions are load-time
// errors so the dispatch table is never ambiguous.
type Registry struct {
	plugins []Plugin
	byKey   map[string]Plugin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Plugin)}
}

// LoadPlugins resolves every locator and registers the results,
// validating trigger keys against the reserved built-in table and
// against each other. Any failure aborts the load: watch mode must not
// start with an ambiguous dispatch table.
func LoadPlugins(resolver Resolver, locators []string, rootDir string, reserved []string) (*Registry, error) {
	reg := NewRegistry()
	reservedSet := make(map[string]bool, len(reserved))
	for _, k := range reserved {
		reservedSet[k] = true
	}

	for _, loc := range locators {
		p, err := resolver.Resolve(loc, rootDir)
		if err != nil {
			return nil, fmt.Errorf("registry: load plugin %q: %w", loc, err)
		}
		if err := reg.add(p, loc, reservedSet); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// add validates and registers a single plugin.
func (r *Registry) add(p Plugin, locator string, reserved map[string]bool) error {
	keys := p.Keys()
	if len(keys) == 0 {
		return fmt.Errorf("registry: plugin %q declares no trigger keys", locator)
	}
	if p.Prompt() == "" {
		return fmt.Errorf("registry: plugin %q declares no prompt", locator)
	}
	for _, k := range keys {
		if k == "" {
			return fmt.Errorf("registry: plugin %q declares an empty trigger key", locator)
		}
		if reserved[k] {
			return fmt.Errorf("registry: plugin %q binds %q, which is reserved for a built-in action", locator, k)
		}
		if other, taken := r.byKey[k]; taken {
			return fmt.Errorf("registry: plugin %q binds %q, already bound by %q", locator, k, other.Prompt())
		}
	}
	for _, k := range keys {
		r.byKey[k] = p
	}
	r.plugins = append(r.plugins, p)
	return nil
}

// ByKey returns the plugin bound to key, or nil.
func (r *Registry) ByKey(key string) Plugin {
	return r.byKey[key]
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int { return len(r.plugins) }

// PromptLine is one plugin entry in the usage footer.
type PromptLine struct {
	Key    string // first trigger key, for display
	Prompt string
}

// Prompts returns footer lines in lexicographic order by prompt text,
// independent of registration order.
func (r *Registry) Prompts() []PromptLine {
	lines := make([]PromptLine, 0, len(r.plugins))
	for _, p := range r.plugins {
		lines = append(lines, PromptLine{Key: p.Keys()[0], Prompt: p.Prompt()})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Prompt < lines[j].Prompt })
	return lines
}
