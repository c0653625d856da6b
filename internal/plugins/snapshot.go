package plugins

import "github.com/LISSConsulting/LISSTech.Watchman/internal/watch"

// snapshotPlugin requests a run that updates only new snapshots, as
// opposed to the built-in update key which refreshes all of them. The
// request applies to one run.
type snapshotPlugin struct{}

func newSnapshot(*Resolver, string) (watch.Plugin, error) { return snapshotPlugin{}, nil }

func (snapshotPlugin) Keys() []string { return []string{"s"} }

func (snapshotPlugin) Prompt() string { return "write new snapshots only" }

func (snapshotPlugin) Enter(watch.RunConfig, watch.EnterControl) {}

func (snapshotPlugin) Apply(cfg watch.RunConfig) watch.RunConfig {
	return cfg.WithUpdateSnapshot(watch.SnapshotNew)
}
