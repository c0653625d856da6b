package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LISSConsulting/LISSTech.Watchman/internal/config"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/plugins"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/store"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/watch"
)

// watchFlags carries the watch command's configuration overrides.
type watchFlags struct {
	all             bool
	onlyChanged     bool
	testPathPattern string
	testNamePattern string
	updateSnapshots string
	verbose         bool
	noTUI           bool
}

func watchCmd() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch mode: run tests interactively on key commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeWatch(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "run all tests, ignoring change scoping")
	cmd.Flags().BoolVar(&flags.onlyChanged, "only-changed", false, "scope runs to files changed in git")
	cmd.Flags().StringVar(&flags.testPathPattern, "test-path-pattern", "", "only run test files matching this regexp")
	cmd.Flags().StringVar(&flags.testNamePattern, "test-name-pattern", "", "only run tests whose name matches this regexp")
	cmd.Flags().StringVar(&flags.updateSnapshots, "update-snapshots", "none", "snapshot update mode: none, new or all")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "verbose test output")
	cmd.Flags().BoolVar(&flags.noTUI, "no-tui", false, "plain line output instead of the TUI")

	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold watchman project (config, gitignore entry)",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			created, err := config.ScaffoldProject(dir)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Println("All files already exist — nothing to create.")
				return nil
			}
			for _, path := range created {
				fmt.Printf("Created %s\n", path)
			}
			return nil
		},
	}
}

func pluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List configured watch plugins with their trigger keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefaults()
			if err != nil {
				return err
			}
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}

			// Loading validates key collisions the same way watch does.
			registry, err := watch.LoadPlugins(
				plugins.NewResolver(), cfg.Watch.Plugins, dir, watch.ReservedKeys())
			if err != nil {
				return err
			}

			fmt.Println("Built-in plugins")
			fmt.Println("────────────────")
			for _, name := range plugins.NewResolver().Names() {
				fmt.Printf("  %s\n", name)
			}

			if registry.Len() > 0 {
				fmt.Println("\nConfigured plugins")
				fmt.Println("──────────────────")
				for _, line := range registry.Prompts() {
					fmt.Printf("  %s  %s\n", line.Key, line.Prompt)
				}
			}

			fmt.Println("\nShared-object plugins load from any path ending in .so.")
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [session-id]",
		Short: "Show recorded run sessions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefaults()
			if err != nil {
				return err
			}

			// Config is found by walk-up, so anchor the history dir at
			// the config root rather than the working directory.
			dir := resolvePath(cfg.Root, cfg.History.Dir)
			if len(args) == 1 {
				return showSession(dir, args[0])
			}
			return listHistory(dir)
		},
	}
}

// listHistory prints one summary line per recorded session.
func listHistory(dir string) error {
	sessions, err := store.ListSessions(dir)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No run history found. Run 'watchman watch' first.")
		return nil
	}

	fmt.Println("Sessions")
	fmt.Println("────────")
	for _, s := range sessions {
		records, readErr := store.ReadSession(s.Path)
		if readErr != nil {
			return readErr
		}
		passed, failed := 0, 0
		for _, rec := range records {
			switch {
			case rec.Interrupted:
			case rec.Passed:
				passed++
			default:
				failed++
			}
		}
		fmt.Printf("  %-28s  %3d runs  %3d passed  %3d failed\n",
			s.ID, len(records), passed, failed)
	}
	return nil
}

// showSession prints every run of one session.
func showSession(dir, sessionID string) error {
	sessions, err := store.ListSessions(dir)
	if err != nil {
		return err
	}

	for _, s := range sessions {
		if s.ID != sessionID {
			continue
		}
		records, readErr := store.ReadSession(s.Path)
		if readErr != nil {
			return readErr
		}
		fmt.Printf("Session %s\n", s.ID)
		fmt.Println("────────")
		for _, rec := range records {
			fmt.Printf("  %s  %s\n", rec.StartedAt.Format("15:04:05"), runLabel(rec))
		}
		return nil
	}

	return fmt.Errorf("history: no session %q in %s", sessionID, dir)
}

// runLabel renders one history record the way the TUI header does.
func runLabel(rec store.RunRecord) string {
	switch {
	case rec.Interrupted:
		return "interrupted"
	case rec.Error != "":
		return fmt.Sprintf("runner error: %s", rec.Error)
	case rec.NoTests:
		return "no tests"
	case rec.Passed:
		return fmt.Sprintf("✓ %d passed (%.1fs)", rec.Tests-rec.Skipped, rec.Duration)
	default:
		return fmt.Sprintf("✗ %d of %d failed (%.1fs)", rec.Failed, rec.Tests, rec.Duration)
	}
}
