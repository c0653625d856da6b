package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/LISSConsulting/LISSTech.Watchman/internal/config"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/git"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/logging"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/notify"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/plugins"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/runner"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/store"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/tui"
	"github.com/LISSConsulting/LISSTech.Watchman/internal/watch"
)

const (
	eventBuffer = 128
	lineBuffer  = 1024
)

// session bundles everything a watch session wires together.
type session struct {
	cfg      *config.Config
	runCfg   watch.RunConfig
	engine   *runner.GoTest
	resolver *plugins.Resolver
	notifier *notify.Notifier
	logger   *log.Logger
	history  store.Store
	branch   string
	events   chan watch.Event
}

// executeWatch loads config, assembles the session, and runs it with or
// without the TUI.
func executeWatch(flags watchFlags) error {
	cfg, err := config.LoadOrDefaults()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	runCfg, err := buildRunConfig(cfg, flags, dir)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	historyDir := resolvePath(cfg.Root, cfg.History.Dir)
	logger, closeLog, err := logging.ToFile(filepath.Dir(historyDir), cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	if retErr := store.EnforceRetention(historyDir, cfg.History.Retention); retErr != nil {
		logger.Warn("history retention", "err", retErr)
	}
	hist, err := store.NewJSONL(historyDir)
	if err != nil {
		return err
	}
	defer hist.Close()

	gitRunner := git.NewRunner(dir)
	var detector runner.ChangeDetector
	var branch string
	if gitRunner.IsRepo() {
		detector = gitRunner
		branch, _ = gitRunner.CurrentBranch()
		dirty, _ := gitRunner.HasUncommittedChanges()
		logger.Info("watch session started", "branch", branch, "dirty", dirty)
	}

	eng := runner.NewGoTest(detector, logger)
	if cfg.Runner.Command != "" {
		eng.Command = cfg.Runner.Command
	}
	if len(cfg.Runner.Args) > 0 {
		eng.BaseArgs = cfg.Runner.Args
	}
	eng.SnapshotEnv = cfg.Runner.SnapshotEnv

	var notifier *notify.Notifier
	if cfg.Notifications.URL != "" {
		notifier = notify.New(
			cfg.Notifications.URL,
			cfg.Project.Name,
			cfg.Notifications.OnFail,
			cfg.Notifications.OnRecover,
		)
	}

	resolver := plugins.NewResolver()
	resolver.Notifier = notifier

	s := &session{
		cfg:      cfg,
		runCfg:   runCfg,
		engine:   eng,
		resolver: resolver,
		notifier: notifier,
		logger:   logger,
		history:  hist,
		branch:   branch,
		events:   make(chan watch.Event, eventBuffer),
	}

	if flags.noTUI {
		err = s.runPlain(ctx)
	} else {
		err = s.runTUI(ctx)
	}
	if err != nil {
		return err
	}
	return printSummary(os.Stdout, s.history)
}

// printSummary reports the session's run totals after watch mode ends.
// Interrupted runs count as neither passed nor failed.
func printSummary(w io.Writer, r store.Reader) error {
	sum, err := r.SessionSummary()
	if err != nil {
		return err
	}
	if sum.Runs == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nSession %s: %d runs, %d passed, %d failed (%s)\n",
		sum.SessionID, sum.Runs, sum.Passed, sum.Failed,
		time.Since(sum.StartedAt).Round(time.Second))
	return nil
}

// loadRegistry resolves the configured plugins with their output wired
// to the session's writer.
func (s *session) loadRegistry(out io.Writer) (*watch.Registry, error) {
	s.resolver.Out = out
	return watch.LoadPlugins(s.resolver, s.cfg.Watch.Plugins, s.runCfg.RootDir, watch.ReservedKeys())
}

// buildRunConfig merges config-file defaults with command-line flags
// into the initial run configuration.
func buildRunConfig(cfg *config.Config, flags watchFlags, dir string) (watch.RunConfig, error) {
	mode := watch.SnapshotMode(flags.updateSnapshots)
	switch mode {
	case watch.SnapshotNone, watch.SnapshotNew, watch.SnapshotAll:
	default:
		return watch.RunConfig{}, fmt.Errorf("watch: invalid --update-snapshots %q (want none, new or all)", flags.updateSnapshots)
	}

	return watch.RunConfig{
		Watch:           true,
		WatchAll:        flags.all,
		OnlyChanged:     flags.onlyChanged || (cfg.Watch.OnlyChanged && !flags.all),
		UpdateSnapshot:  mode,
		TestPathPattern: flags.testPathPattern,
		TestNamePattern: flags.testNamePattern,
		Verbose:         flags.verbose,
		RootDir:         dir,
		WatchPlugins:    cfg.Watch.Plugins,
	}.Normalized(), nil
}

// runTUI drives the session inside the bubbletea program. Run output
// flows through a LineWriter into the log view; controller events reach
// the TUI through the fan-out.
func (s *session) runTUI(ctx context.Context) error {
	writer := tui.NewLineWriter(lineBuffer)
	tuiEvents := make(chan watch.Event, eventBuffer)

	registry, err := s.loadRegistry(writer)
	if err != nil {
		return err
	}

	c := watch.NewController(watch.Options{
		Config:      s.runCfg,
		Runner:      s.engine,
		Registry:    registry,
		Output:      writer,
		Interactive: true,
		Logger:      s.logger,
		Events:      s.events,
	})

	stop := make(chan struct{})
	drained := s.fanOut(tuiEvents, stop)

	model := tui.New(tui.Options{
		Keys:        c,
		Events:      tuiEvents,
		Writer:      writer,
		Project:     s.cfg.Project.Name,
		AccentColor: s.cfg.TUI.AccentColor,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		<-ctx.Done()
		c.OnKey(watch.KeyQuit)
	}()

	c.Start(ctx)

	_, err = program.Run()
	close(stop)
	<-drained
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// runPlain drives the session on plain stdio. Keys arrive line-buffered
// from stdin, so each input line is replayed as individual key presses.
func (s *session) runPlain(ctx context.Context) error {
	registry, err := s.loadRegistry(os.Stdout)
	if err != nil {
		return err
	}

	c := watch.NewController(watch.Options{
		Config:      s.runCfg,
		Runner:      s.engine,
		Registry:    registry,
		Output:      os.Stdout,
		Interactive: isTerminal(os.Stdout),
		Logger:      s.logger,
		Events:      s.events,
	})

	stop := make(chan struct{})
	drained := s.fanOut(nil, stop)

	go readKeys(c, os.Stdin)
	go func() {
		<-ctx.Done()
		c.OnKey(watch.KeyQuit)
	}()

	c.Start(ctx)
	<-c.Done()

	close(stop)
	<-drained
	return nil
}

// fanOut consumes controller events: finished runs are appended to the
// history log, the notifier fires its hooks, and events are forwarded
// to the TUI channel when one is given. The returned channel closes
// once the loop exits via stop.
func (s *session) fanOut(forward chan<- watch.Event, stop <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev := <-s.events:
				s.handleEvent(ev, forward)
			case <-stop:
				// Drain what the controller already emitted.
				for {
					select {
					case ev := <-s.events:
						s.handleEvent(ev, forward)
					default:
						return
					}
				}
			}
		}
	}()
	return done
}

func (s *session) handleEvent(ev watch.Event, forward chan<- watch.Event) {
	if ev.Kind == watch.EventRunFinished {
		rec := recordFromEvent(ev)
		rec.Branch = s.branch
		if err := s.history.Append(rec); err != nil {
			s.logger.Warn("history append", "err", err)
		}
	}
	if s.notifier != nil {
		s.notifier.Hook(ev)
	}
	if forward != nil {
		select {
		case forward <- ev:
		default:
		}
	}
}

// recordFromEvent flattens a finished-run event into a history record.
func recordFromEvent(ev watch.Event) store.RunRecord {
	res := ev.Result
	rec := store.RunRecord{
		StartedAt:   time.Now().Add(-res.Duration),
		Duration:    res.Duration.Seconds(),
		Passed:      res.Passed,
		Tests:       res.Tests,
		Failed:      res.Failed,
		Skipped:     res.Skipped,
		NoTests:     res.NoTests,
		Interrupted: res.Interrupted,
		OnlyChanged: ev.Config.OnlyChanged,
		WatchAll:    ev.Config.WatchAll,
		PathPattern: ev.Config.TestPathPattern,
		NamePattern: ev.Config.TestNamePattern,
	}
	if ev.Token != nil {
		rec.RunID = ev.Token.ID().String()
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	return rec
}

// readKeys replays line-buffered stdin as key presses: the first rune is
// the command key, remaining runes feed an active prompt, and any line
// carrying more than the command key commits with enter. A blank line is
// enter on its own.
func readKeys(sink tui.KeySink, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			sink.OnKey(watch.KeyRerun)
			continue
		}

		runes := []rune(line)
		sink.OnKey(string(runes[0]))
		rest := strings.TrimSpace(string(runes[1:]))
		for _, c := range rest {
			sink.OnKey(string(c))
		}
		if rest != "" {
			sink.OnKey(watch.KeyRerun)
		}
	}
}

// isTerminal reports whether f is a character device. Piped output gets
// the minimal usage footer without per-key prompts.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// resolvePath anchors a relative config path at the project root.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
