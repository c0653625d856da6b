package watch

// SnapshotMode controls snapshot updating for a single run.
type SnapshotMode string

const (
	SnapshotNone SnapshotMode = "none"
	SnapshotNew  SnapshotMode = "new"
	SnapshotAll  SnapshotMode = "all"
)

// RunConfig is an immutable snapshot of the run configuration. Every
// transition returns a new value; the controller replaces its current
// snapshot and never hands a mutable reference to plugins or the runner.
type RunConfig struct {
	Watch           bool
	WatchAll        bool
	OnlyChanged     bool
	UpdateSnapshot  SnapshotMode
	TestPathPattern string // empty means no filter
	TestNamePattern string // empty means no filter
	PassWithNoTests bool
	Verbose         bool

	// Static for the session.
	RootDir      string
	WatchPlugins []string
}

// Normalized returns a copy safe to enter watch mode with: an empty
// match set must not fail while watching, so PassWithNoTests is forced,
// and exactly one of Watch/WatchAll is made true (WatchAll wins when
// both were requested).
func (c RunConfig) Normalized() RunConfig {
	c.PassWithNoTests = true
	if c.WatchAll {
		c.Watch = false
	} else {
		c.Watch = true
	}
	if c.UpdateSnapshot == "" {
		c.UpdateSnapshot = SnapshotNone
	}
	return c
}

// WithOnlyChanged restricts the next runs to tests affected by changed
// files. Switches to plain watch mode: watch-all and only-changed are
// mutually exclusive.
func (c RunConfig) WithOnlyChanged() RunConfig {
	c.OnlyChanged = true
	c.Watch = true
	c.WatchAll = false
	return c
}

// WithWatchAll runs the full suite on every trigger, clearing the
// only-changed restriction.
func (c RunConfig) WithWatchAll() RunConfig {
	c.WatchAll = true
	c.Watch = false
	c.OnlyChanged = false
	return c
}

// WithUpdateSnapshot requests snapshot updating for the next run.
// The flag is one-shot: ClearOneShot resets it after the run completes.
func (c RunConfig) WithUpdateSnapshot(mode SnapshotMode) RunConfig {
	c.UpdateSnapshot = mode
	return c
}

// ClearOneShot resets fields whose effect applies to exactly one run.
// Applied unconditionally after every completed run.
func (c RunConfig) ClearOneShot() RunConfig {
	c.UpdateSnapshot = SnapshotNone
	return c
}

// WithTestPathPattern sets the filename filter. Patterns persist across
// runs until explicitly replaced or cleared.
func (c RunConfig) WithTestPathPattern(pattern string) RunConfig {
	c.TestPathPattern = pattern
	return c
}

// WithTestNamePattern sets the test name filter.
func (c RunConfig) WithTestNamePattern(pattern string) RunConfig {
	c.TestNamePattern = pattern
	return c
}

// ClearFilters removes both pattern filters.
func (c RunConfig) ClearFilters() RunConfig {
	c.TestPathPattern = ""
	c.TestNamePattern = ""
	return c
}

// HasFilters reports whether any pattern filter is active.
func (c RunConfig) HasFilters() bool {
	return c.TestPathPattern != "" || c.TestNamePattern != ""
}
