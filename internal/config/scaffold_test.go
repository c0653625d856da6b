package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScaffoldProject(t *testing.T) {
	t.Run("creates all files in empty directory", func(t *testing.T) {
		dir := t.TempDir()

		created, err := ScaffoldProject(dir)
		if err != nil {
			t.Fatal(err)
		}

		expected := []string{
			filepath.Join(dir, "watchman.toml"),
			filepath.Join(dir, ".gitignore"),
		}

		if len(created) != len(expected) {
			t.Fatalf("created %d files, want %d: %v", len(created), len(expected), created)
		}
		for i, want := range expected {
			if created[i] != want {
				t.Errorf("created[%d] = %q, want %q", i, created[i], want)
			}
		}

		// The generated config must load cleanly.
		if _, err := Load(filepath.Join(dir, "watchman.toml")); err != nil {
			t.Errorf("generated config does not load: %v", err)
		}

		content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(content), ".watchman/") {
			t.Errorf(".gitignore missing state entry, got %q", content)
		}
	})

	t.Run("existing files left untouched", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "watchman.toml"), "[project]\nname = \"keep\"\n")
		writeFile(t, filepath.Join(dir, ".gitignore"), ".watchman/\n")

		created, err := ScaffoldProject(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(created) != 0 {
			t.Errorf("created %v, want nothing", created)
		}

		cfg, err := Load(filepath.Join(dir, "watchman.toml"))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Project.Name != "keep" {
			t.Errorf("existing config overwritten: %q", cfg.Project.Name)
		}
	})

	t.Run("appends to existing gitignore", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".gitignore"), "node_modules")

		created, err := ScaffoldProject(dir)
		if err != nil {
			t.Fatal(err)
		}

		found := false
		for _, path := range created {
			if filepath.Base(path) == ".gitignore" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected .gitignore in created list, got %v", created)
		}

		content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		if err != nil {
			t.Fatal(err)
		}
		got := string(content)
		if !strings.Contains(got, "node_modules") || !strings.Contains(got, ".watchman/") {
			t.Errorf("unexpected .gitignore content: %q", got)
		}
		if !strings.Contains(got, "node_modules\n") {
			t.Errorf("missing newline before appended entry: %q", got)
		}
	})
}
