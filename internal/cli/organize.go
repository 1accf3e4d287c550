package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ppiankov/dirsort/internal/config"
	"github.com/ppiankov/dirsort/internal/history"
	"github.com/ppiankov/dirsort/internal/organizer"
	"github.com/ppiankov/dirsort/internal/reporter"
	"github.com/ppiankov/dirsort/internal/runlock"
)

// organizeFlags are shared by the root and watch commands.
type organizeFlags struct {
	path      string
	dryRun    bool
	workers   int
	exclude   []string
	format    string
	tui       bool
	noHistory bool
}

func (f *organizeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "path", "p", "", "directory to organize")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "d", false, "report planned moves without touching the filesystem")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "parallel movers (default: number of CPUs)")
	cmd.Flags().StringArrayVar(&f.exclude, "exclude", nil, "gitignore-style pattern to leave untouched (repeatable)")
	cmd.Flags().StringVar(&f.format, "format", "text", "summary format: text, table, json")
	cmd.Flags().BoolVar(&f.tui, "tui", false, "show a live full-screen progress display")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "do not record this run in the history database")
}

// applySettings fills flags the user did not set from the config file.
func (f *organizeFlags) applySettings(cmd *cobra.Command, cfg *config.Settings) error {
	if !cmd.Flags().Changed("workers") && cfg.Workers > 0 {
		f.workers = cfg.Workers
	}
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		f.format = cfg.Format
	}
	if !cmd.Flags().Changed("no-history") && !cfg.HistoryEnabled() {
		f.noHistory = true
	}
	f.exclude = append(append([]string(nil), cfg.Exclude...), f.exclude...)

	if f.workers < 0 {
		return fmt.Errorf("--workers must be >= 0, got %d", f.workers)
	}
	if !config.ValidFormat(f.format) {
		return fmt.Errorf("unknown format %q (use text, table, or json)", f.format)
	}
	return nil
}

// session performs organize passes over one root and reports them.
type session struct {
	root   string
	flags  organizeFlags
	out    io.Writer
	errOut io.Writer
	color  bool
	store  *history.Store // nil when history is disabled

	// skipIdle suppresses output and history for passes that changed nothing.
	skipIdle bool
	// teaOptions are appended to the TUI program options.
	teaOptions []tea.ProgramOption
}

func newSession(cmd *cobra.Command, flags organizeFlags, cfg *config.Settings) (*session, error) {
	root, err := filepath.Abs(flags.path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	s := &session{
		root:   root,
		flags:  flags,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}
	s.color = isTerminal(s.out)

	if !flags.noHistory {
		store, err := history.Open(historyPath(cfg))
		if err != nil {
			// history is best-effort
			slog.Warn("run history unavailable", "error", err)
		} else {
			s.store = store
		}
	}
	return s, nil
}

func (s *session) close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// organizeOnce runs a single organize pass for the root command.
func organizeOnce(cmd *cobra.Command, flags organizeFlags, cfg *config.Settings) error {
	if flags.tui && !isTerminal(cmd.OutOrStdout()) {
		slog.Warn("--tui requires a terminal, falling back to text output")
		flags.tui = false
	}

	s, err := newSession(cmd, flags, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	lock, err := runlock.Acquire(s.root)
	if err != nil {
		return err
	}
	defer lock.Release()

	ctx, stop := interruptContext(cmd.Context(), s.errOut)
	defer stop()

	_, err = s.run(ctx, stop)
	return err
}

// run performs one pass. cancel stops the pass from the TUI.
func (s *session) run(ctx context.Context, cancel func()) (*organizer.Result, error) {
	jsonMode := s.flags.format == "json"

	// keep stdout clean for the JSON document
	lineOut := s.out
	if jsonMode {
		lineOut = s.errOut
	}
	rep := reporter.NewTextReporter(lineOut, s.errOut, s.color && !jsonMode)
	progress := reporter.NewProgress()

	quiet := s.flags.tui || s.skipIdle
	var (
		heldMu sync.Mutex
		held   []organizer.Outcome
	)
	// hold back what a quiet pass would have printed
	hold := func(o organizer.Outcome) bool {
		if o.Action == organizer.ActionFailed {
			return true
		}
		return s.skipIdle && o.Counted()
	}

	opts := organizer.Options{
		Root:    s.root,
		DryRun:  s.flags.dryRun,
		Workers: s.flags.workers,
		Exclude: s.flags.exclude,
		OnStart: func(total int) {
			progress.Start(total)
			if !quiet {
				rep.PrintFound(total)
			}
		},
		OnOutcome: func(o organizer.Outcome) {
			progress.Observe(o)
			switch {
			case !quiet:
				rep.PrintOutcome(o)
			case hold(o):
				heldMu.Lock()
				held = append(held, o)
				heldMu.Unlock()
			}
		},
	}

	if !quiet {
		rep.PrintScanStart(s.root)
	}
	slog.Debug("organize pass", "root", s.root, "dry_run", s.flags.dryRun, "workers", s.flags.workers)

	var res *organizer.Result
	var err error
	if s.flags.tui {
		res, err = s.runWithTUI(ctx, cancel, opts, progress)
	} else {
		res, err = organizer.Run(ctx, opts)
	}
	if res == nil {
		return nil, err
	}

	if s.skipIdle {
		if res.Moved == 0 && res.Failed == 0 {
			slog.Debug("nothing to organize", "root", s.root, "files", res.Discovered)
			return res, err
		}
		rep.PrintScanStart(s.root)
		rep.PrintFound(res.Discovered)
	}
	// outcomes held back during a quiet pass
	for _, o := range held {
		rep.PrintOutcome(o)
	}

	if werr := s.report(rep, res); werr != nil && err == nil {
		err = werr
	}
	s.record(res)
	return res, err
}

func (s *session) runWithTUI(ctx context.Context, cancel func(), opts organizer.Options, progress *reporter.Progress) (*organizer.Result, error) {
	model := reporter.NewTUIModel(s.root, s.flags.dryRun, progress.Snapshot, cancel)
	options := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(s.out)}, s.teaOptions...)
	program := tea.NewProgram(model, options...)

	tuiDone := make(chan struct{})
	go func() {
		defer close(tuiDone)
		if _, err := program.Run(); err != nil {
			slog.Warn("TUI error", "error", err)
		}
	}()

	res, err := organizer.Run(ctx, opts)
	progress.Finish()
	program.Send(reporter.DoneMsg{})
	<-tuiDone
	return res, err
}

func (s *session) report(rep *reporter.TextReporter, res *organizer.Result) error {
	switch s.flags.format {
	case "json":
		return reporter.WriteJSON(s.out, res)
	case "table":
		fmt.Fprintln(s.out, reporter.RenderTable(res))
		if res.Failed > 0 || res.Unreadable > 0 {
			fmt.Fprintf(s.out, "Failed: %d  Unreadable: %d\n", res.Failed, res.Unreadable)
		}
	default:
		rep.PrintSummary(res)
	}
	return nil
}

func (s *session) record(res *organizer.Result) {
	if s.store == nil {
		return
	}
	run := &history.Run{
		Root:       res.Root,
		DryRun:     res.DryRun,
		StartedAt:  time.Now().Add(-res.Duration),
		Duration:   res.Duration,
		Discovered: res.Discovered,
		Moved:      res.Moved,
		Failed:     res.Failed,
		Unreadable: res.Unreadable,
		Bytes:      res.Bytes,
		Counts:     res.Counts,
	}
	// record even when the pass was cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Record(ctx, run); err != nil {
		slog.Warn("failed to record run", "error", err)
		return
	}
	slog.Debug("run recorded", "id", run.ID, "db", s.store.Path())
}

// interruptContext cancels the returned context on the first interrupt.
func interruptContext(parent context.Context, errOut io.Writer) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(errOut, "\ninterrupted, waiting for in-flight files to finish...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
