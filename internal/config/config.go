// Package config parses watchman.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultAccentColor is the default TUI accent color (indigo).
const DefaultAccentColor = "#7D56F4"

// hexColorRe matches a 6-digit hex color string like "#7D56F4".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config is the top-level watchman.toml configuration.
type Config struct {
	Project       ProjectConfig       `toml:"project"`
	Runner        RunnerConfig        `toml:"runner"`
	Watch         WatchConfig         `toml:"watch"`
	History       HistoryConfig       `toml:"history"`
	TUI           TUIConfig           `toml:"tui"`
	Notifications NotificationsConfig `toml:"notifications"`
	Logging       LoggingConfig       `toml:"logging"`

	// Root is the directory the configuration was loaded from, or the
	// working directory when running on defaults. Relative paths like
	// history.dir anchor here, so commands run from a subdirectory see
	// the same history the watch session wrote.
	Root string `toml:"-"`
}

// ProjectConfig identifies the project.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// RunnerConfig controls the test subprocess invocation.
type RunnerConfig struct {
	Command     string   `toml:"command"`
	Args        []string `toml:"args"`
	SnapshotEnv string   `toml:"snapshot_env"` // env var exported on snapshot-updating runs
}

// WatchConfig controls watch mode behavior.
type WatchConfig struct {
	Plugins     []string `toml:"plugins"`
	OnlyChanged bool     `toml:"only_changed"` // start in only-changed mode
}

// HistoryConfig controls the run history log.
type HistoryConfig struct {
	Dir       string `toml:"dir"`
	Retention int    `toml:"retention"` // number of session logs to keep; 0 = unlimited
}

// TUIConfig controls the terminal UI appearance.
type TUIConfig struct {
	AccentColor string `toml:"accent_color"`
}

// NotificationsConfig controls webhook/ntfy.sh notifications.
type NotificationsConfig struct {
	URL       string `toml:"url"`
	OnFail    bool   `toml:"on_fail"`
	OnRecover bool   `toml:"on_recover"`
}

// LoggingConfig controls the session logger.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	if c.Runner.Command == "" {
		errs = append(errs, fmt.Errorf("runner.command must not be empty"))
	}

	if c.History.Retention < 0 {
		errs = append(errs, fmt.Errorf("history.retention must be >= 0 (0 = unlimited)"))
	}

	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. \"#7D56F4\")"))
	}

	if c.Notifications.URL != "" {
		u, parseErr := url.ParseRequestURI(c.Notifications.URL)
		if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("notifications.url must be a valid http or https URL"))
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of debug, info, warn, error"))
	}

	return errors.Join(errs...)
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Project: ProjectConfig{Name: ""},
		Runner: RunnerConfig{
			Command:     "go",
			Args:        []string{"test", "-json"},
			SnapshotEnv: "",
		},
		Watch: WatchConfig{
			Plugins:     nil,
			OnlyChanged: false,
		},
		History: HistoryConfig{
			Dir:       ".watchman/history",
			Retention: 20,
		},
		TUI: TUIConfig{
			AccentColor: DefaultAccentColor,
		},
		Notifications: NotificationsConfig{
			URL:       "",
			OnFail:    true,
			OnRecover: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads watchman.toml from the given path. If path is empty, it
// walks up from the current working directory looking for watchman.toml.
// Returns an error if the file contains unknown keys (likely typos).
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := findConfig()
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := Defaults()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s (possible typos?)", path, joinKeys(keys))
	}

	cfg.Root = filepath.Dir(path)
	if cfg.Project.Name == "" {
		cfg.Project.Name = DetectProjectName(cfg.Root)
	}

	return &cfg, nil
}

// LoadOrDefaults loads watchman.toml found by walking up from the
// working directory, or returns the defaults when no file exists. A
// file that exists but fails to parse is still an error.
func LoadOrDefaults() (*Config, error) {
	found, err := findConfig()
	if err != nil {
		dir, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, fmt.Errorf("config: get working directory: %w", wdErr)
		}
		cfg := Defaults()
		cfg.Root = dir
		cfg.Project.Name = DetectProjectName(dir)
		return &cfg, nil
	}
	return Load(found)
}

// joinKeys formats a slice of key names for display.
func joinKeys(keys []string) string {
	return strings.Join(keys, ", ")
}

// findConfig walks up from the current directory looking for watchman.toml.
func findConfig() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("config: get working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "watchman.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config: watchman.toml not found (searched up from %s)", dir)
		}
		dir = parent
	}
}

// InitFile writes a default watchman.toml template to the given directory.
func InitFile(dir string) (string, error) {
	path := filepath.Join(dir, "watchman.toml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: watchman.toml already exists at %s", path)
	}

	content := `# watchman.toml — interactive test watch configuration
# Place this file in the root of your project.

[project]
name = ""

[runner]
command = "go"
args = ["test", "-json"]
snapshot_env = ""  # env var exported on snapshot-updating runs (empty = none)

[watch]
plugins = []         # built-in names ("verbose", "snapshot") or paths to .so files
only_changed = false # start sessions scoped to changed files

[history]
dir = ".watchman/history"
retention = 20  # number of session logs to keep; 0 = unlimited

[tui]
accent_color = "#7D56F4"  # hex color for header/accent elements

[notifications]
url = ""          # ntfy.sh topic URL or any HTTP webhook (empty = disabled)
on_fail = true    # notify when a run goes red
on_recover = true # notify when runs go green again

[logging]
level = "info"  # debug, info, warn, error
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}
