// Package watch keeps a root organized by re-running the organizer whenever
// new entries land in it.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	debounceDefault = 2 * time.Second
	pollDefault     = 5 * time.Second
)

// RunFunc performs one organize pass.
type RunFunc func(ctx context.Context) error

// Config holds watcher configuration.
type Config struct {
	Root         string
	Debounce     time.Duration // quiet period after the last event before a run
	PollMode     bool          // poll the root listing instead of using fsnotify
	PollInterval time.Duration
	Run          RunFunc
}

// Watcher triggers organize runs for a single root.
// Only the root itself is watched; a run always organizes the whole tree.
type Watcher struct {
	cfg Config
}

// New creates a watcher with validated configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, errors.New("root directory is required")
	}
	if cfg.Run == nil {
		return nil, errors.New("run function is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = debounceDefault
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = pollDefault
	}
	return &Watcher{cfg: cfg}, nil
}

// Run organizes the root once, then keeps watching until ctx is cancelled.
// A failure of the initial pass is returned; later failures are logged.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.cfg.Run(ctx); err != nil {
		return err
	}
	if w.cfg.PollMode {
		return w.runPollWatcher(ctx)
	}
	return w.runFSWatcher(ctx)
}

func (w *Watcher) runOnce(ctx context.Context) {
	if err := w.cfg.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("organize run failed", "root", w.cfg.Root, "error", err)
	}
}

// runFSWatcher reacts to fsnotify events, coalescing bursts into one run.
func (w *Watcher) runFSWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.cfg.Root); err != nil {
		return fmt.Errorf("watch dir: %w", err)
	}

	slog.Info("watching for new files", "mode", "fsnotify", "dir", w.cfg.Root, "debounce", w.cfg.Debounce)

	trigger := make(chan struct{}, 1)
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			slog.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			slog.Debug("fs event", "op", event.Op.String(), "path", event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.cfg.Debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			w.runOnce(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// runPollWatcher compares the root listing on a ticker.
func (w *Watcher) runPollWatcher(ctx context.Context) error {
	slog.Info("watching for new files", "mode", "poll", "dir", w.cfg.Root, "interval", w.cfg.PollInterval)

	last := listingSignature(w.cfg.Root)
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case <-ticker.C:
			sig := listingSignature(w.cfg.Root)
			if sig == last {
				continue
			}
			w.runOnce(ctx)
			last = listingSignature(w.cfg.Root)
		}
	}
}

// listingSignature summarizes the direct entries of dir by name, size and
// modification time. An unreadable dir yields an empty signature.
func listingSignature(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s|%d|%d", e.Name(), info.Size(), info.ModTime().UnixNano()))
	}
	sort.Strings(parts)
	return strings.Join(parts, "\n")
}
