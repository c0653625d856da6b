package watch

import "testing"

func TestRunConfig_Normalized(t *testing.T) {
	tests := []struct {
		name string
		in   RunConfig
		want RunConfig
	}{
		{
			"forces pass with no tests",
			RunConfig{PassWithNoTests: false},
			RunConfig{Watch: true, PassWithNoTests: true, UpdateSnapshot: SnapshotNone},
		},
		{
			"derives watch when neither sub-mode set",
			RunConfig{},
			RunConfig{Watch: true, PassWithNoTests: true, UpdateSnapshot: SnapshotNone},
		},
		{
			"watch all wins when both requested",
			RunConfig{Watch: true, WatchAll: true},
			RunConfig{WatchAll: true, PassWithNoTests: true, UpdateSnapshot: SnapshotNone},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalized()
			if got.Watch != tt.want.Watch || got.WatchAll != tt.want.WatchAll {
				t.Errorf("watch flags = %v/%v, want %v/%v", got.Watch, got.WatchAll, tt.want.Watch, tt.want.WatchAll)
			}
			if !got.PassWithNoTests {
				t.Error("PassWithNoTests not forced to true")
			}
			if got.UpdateSnapshot != tt.want.UpdateSnapshot {
				t.Errorf("UpdateSnapshot = %q, want %q", got.UpdateSnapshot, tt.want.UpdateSnapshot)
			}
		})
	}
}

func TestRunConfig_WatchModesExclusive(t *testing.T) {
	t.Run("watch all clears watch and only-changed", func(t *testing.T) {
		cfg := RunConfig{Watch: true, OnlyChanged: true}.WithWatchAll()
		if !cfg.WatchAll || cfg.Watch || cfg.OnlyChanged {
			t.Errorf("WithWatchAll() = watchAll=%v watch=%v onlyChanged=%v, want true/false/false",
				cfg.WatchAll, cfg.Watch, cfg.OnlyChanged)
		}
	})

	t.Run("only changed clears watch all", func(t *testing.T) {
		cfg := RunConfig{WatchAll: true}.WithOnlyChanged()
		if !cfg.OnlyChanged || !cfg.Watch || cfg.WatchAll {
			t.Errorf("WithOnlyChanged() = onlyChanged=%v watch=%v watchAll=%v, want true/true/false",
				cfg.OnlyChanged, cfg.Watch, cfg.WatchAll)
		}
	})

	t.Run("only changed leaves watch all untouched when already false", func(t *testing.T) {
		cfg := RunConfig{Watch: true}.WithOnlyChanged()
		if cfg.WatchAll {
			t.Error("WithOnlyChanged() set watchAll")
		}
	})
}

func TestRunConfig_OneShotSnapshot(t *testing.T) {
	cfg := RunConfig{}.Normalized().WithUpdateSnapshot(SnapshotAll)
	if cfg.UpdateSnapshot != SnapshotAll {
		t.Fatalf("UpdateSnapshot = %q, want %q", cfg.UpdateSnapshot, SnapshotAll)
	}
	cfg = cfg.ClearOneShot()
	if cfg.UpdateSnapshot != SnapshotNone {
		t.Errorf("after ClearOneShot UpdateSnapshot = %q, want %q", cfg.UpdateSnapshot, SnapshotNone)
	}
}

func TestRunConfig_Patterns(t *testing.T) {
	cfg := RunConfig{}.WithTestPathPattern("pkg/.*").WithTestNamePattern("TestFoo")
	if cfg.TestPathPattern != "pkg/.*" || cfg.TestNamePattern != "TestFoo" {
		t.Errorf("patterns = %q/%q, want pkg/.*/TestFoo", cfg.TestPathPattern, cfg.TestNamePattern)
	}
	if !cfg.HasFilters() {
		t.Error("HasFilters() = false with patterns set")
	}

	cfg = cfg.ClearFilters()
	if cfg.HasFilters() {
		t.Error("HasFilters() = true after ClearFilters")
	}
	if cfg.TestPathPattern != "" || cfg.TestNamePattern != "" {
		t.Errorf("patterns not cleared: %q/%q", cfg.TestPathPattern, cfg.TestNamePattern)
	}
}

func TestRunConfig_TransitionsAreCopies(t *testing.T) {
	orig := RunConfig{Watch: true}
	_ = orig.WithWatchAll()
	if orig.WatchAll || !orig.Watch {
		t.Error("transition mutated the original configuration")
	}
}
