package organizer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Options controls a single organize run.
type Options struct {
	Root    string
	DryRun  bool
	Workers int      // defaults to GOMAXPROCS
	Exclude []string // gitignore-style patterns relative to Root
	Fs      afero.Fs // defaults to the OS filesystem

	// OnStart is called once with the number of discovered files, before
	// any of them is dispatched.
	OnStart func(total int)
	// OnOutcome is called from worker goroutines once per file and must be
	// safe for concurrent use.
	OnOutcome func(Outcome)
}

// Result summarizes a finished run.
type Result struct {
	Root       string         `json:"root"`
	DryRun     bool           `json:"dry_run"`
	Discovered int            `json:"discovered"`
	Counts     map[string]int `json:"counts"`
	Moved      int            `json:"moved"`
	Failed     int            `json:"failed"`
	Unreadable int            `json:"unreadable"`
	Bytes      int64          `json:"bytes"`
	Duration   time.Duration  `json:"duration"`
}

// Run organizes every file under opts.Root.
//
// The file list is fully materialized before the first move so freshly created
// extension folders are never walked. Per-file failures are reported through
// OnOutcome and counted in Result.Failed; only an invalid root fails the run.
// If ctx is cancelled, no further files are dispatched, in-flight files finish,
// and the partial Result is returned together with ctx.Err().
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	root, err := resolveRoot(fs, opts.Root)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	files, unreadable, err := Collect(fs, root, opts.Exclude)
	if err != nil {
		return nil, &SetupError{Root: root, Err: err}
	}
	slog.Debug("collected files", "root", root, "files", len(files), "unreadable", unreadable, "workers", workers)

	if opts.OnStart != nil {
		opts.OnStart(len(files))
	}

	mover := NewMover(fs, root, opts.DryRun)
	stats := NewStats()

	var wg sync.WaitGroup
	work := make(chan FileEntry)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range work {
				out := mover.Organize(entry)
				switch {
				case out.Counted():
					stats.Add(out.Tag, out.Size)
				case out.Action == ActionFailed:
					stats.Fail()
					slog.Debug("move failed", "path", out.Source, "error", out.Err)
				}
				if opts.OnOutcome != nil {
					opts.OnOutcome(out)
				}
			}
		}()
	}

	var runErr error
dispatch:
	for _, entry := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		case work <- entry:
		}
	}
	close(work)
	wg.Wait()

	res := &Result{
		Root:       root,
		DryRun:     opts.DryRun,
		Discovered: len(files),
		Counts:     stats.Snapshot(),
		Moved:      stats.Total(),
		Failed:     stats.Failed(),
		Unreadable: unreadable,
		Bytes:      stats.Bytes(),
		Duration:   time.Since(start),
	}
	return res, runErr
}

// resolveRoot makes root absolute and verifies it is an existing directory.
// On the OS filesystem every symlink in the path is resolved, so one
// directory always maps to one root string.
func resolveRoot(fs afero.Fs, root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", &SetupError{Root: root, Err: ErrRootNotFound}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &SetupError{Root: root, Err: err}
	}

	info, err := fs.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &SetupError{Root: abs, Err: ErrRootNotFound}
		}
		return "", &SetupError{Root: abs, Err: err}
	}
	if !info.IsDir() {
		return "", &SetupError{Root: abs, Err: ErrRootNotDir}
	}

	if _, isOS := fs.(*afero.OsFs); isOS {
		if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil {
			abs = resolved
		}
	}
	return abs, nil
}
