package watch

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// stubPlugin is a minimal Plugin for registry tests.
type stubPlugin struct {
	keys   []string
	prompt string
}

func (s *stubPlugin) Keys() []string                 { return s.keys }
func (s *stubPlugin) Prompt() string                 { return s.prompt }
func (s *stubPlugin) Enter(_ RunConfig, _ EnterControl) {}

// mapResolver resolves locators from a fixed table.
type mapResolver map[string]Plugin

func (m mapResolver) Resolve(locator, _ string) (Plugin, error) {
	p, ok := m[locator]
	if !ok {
		return nil, fmt.Errorf("unknown locator %q", locator)
	}
	return p, nil
}

func TestLoadPlugins(t *testing.T) {
	t.Run("loads and indexes by key", func(t *testing.T) {
		resolver := mapResolver{
			"one": &stubPlugin{keys: []string{"x"}, prompt: "do x"},
			"two": &stubPlugin{keys: []string{"y", "z"}, prompt: "do y"},
		}
		reg, err := LoadPlugins(resolver, []string{"one", "two"}, "/proj", ReservedKeys())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reg.Len() != 2 {
			t.Errorf("Len() = %d, want 2", reg.Len())
		}
		if reg.ByKey("z") != resolver["two"] {
			t.Error("ByKey(z) did not return the second plugin")
		}
		if reg.ByKey("nope") != nil {
			t.Error("ByKey for unbound key should be nil")
		}
	})

	t.Run("resolution failure is fatal", func(t *testing.T) {
		_, err := LoadPlugins(mapResolver{}, []string{"missing"}, "/proj", nil)
		if err == nil {
			t.Fatal("expected error for unknown locator")
		}
		if !strings.Contains(err.Error(), "missing") {
			t.Errorf("error %q does not name the locator", err)
		}
	})
}

func TestRegistry_KeyCollisions(t *testing.T) {
	tests := []struct {
		name     string
		plugins  map[string]Plugin
		locators []string
		wantErr  string
	}{
		{
			"reserved built-in key",
			map[string]Plugin{"bad": &stubPlugin{keys: []string{KeyQuit}, prompt: "steal quit"}},
			[]string{"bad"},
			"reserved",
		},
		{
			"duplicate key across plugins",
			map[string]Plugin{
				"one": &stubPlugin{keys: []string{"x"}, prompt: "first"},
				"two": &stubPlugin{keys: []string{"x"}, prompt: "second"},
			},
			[]string{"one", "two"},
			"already bound",
		},
		{
			"no trigger keys",
			map[string]Plugin{"empty": &stubPlugin{prompt: "keyless"}},
			[]string{"empty"},
			"no trigger keys",
		},
		{
			"no prompt",
			map[string]Plugin{"mute": &stubPlugin{keys: []string{"x"}}},
			[]string{"mute"},
			"no prompt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPlugins(mapResolver(tt.plugins), tt.locators, "/proj", ReservedKeys())
			if err == nil {
				t.Fatal("expected load error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_PromptsSortedLexicographically(t *testing.T) {
	// Registration order is deliberately not alphabetical.
	resolver := mapResolver{
		"c": &stubPlugin{keys: []string{"3"}, prompt: "zebra action"},
		"a": &stubPlugin{keys: []string{"5"}, prompt: "alpha action"},
		"b": &stubPlugin{keys: []string{"7"}, prompt: "middle action"},
	}
	reg, err := LoadPlugins(resolver, []string{"c", "a", "b"}, "/proj", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := reg.Prompts()
	want := []string{"alpha action", "middle action", "zebra action"}
	if len(got) != len(want) {
		t.Fatalf("got %d prompts, want %d", len(got), len(want))
	}
	for i, line := range got {
		if line.Prompt != want[i] {
			t.Errorf("prompt[%d] = %q, want %q", i, line.Prompt, want[i])
		}
	}
}

func TestLoadPlugins_ErrorWrapsResolver(t *testing.T) {
	sentinel := errors.New("boom")
	resolver := failingResolver{err: sentinel}
	_, err := LoadPlugins(resolver, []string{"x"}, "/proj", nil)
	if !errors.Is(err, sentinel) {
		t.Errorf("error %v does not wrap resolver error", err)
	}
}

type failingResolver struct{ err error }

func (f failingResolver) Resolve(_, _ string) (Plugin, error) { return nil, f.err }
