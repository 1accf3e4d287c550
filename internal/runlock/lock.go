// Package runlock keeps two dirsort processes from organizing the same root at
// once. Lock files live in the system temp directory, never inside the root,
// so they cannot be swept into an extension folder.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock for a root.
var ErrLocked = errors.New("root is locked by another dirsort run")

// Info describes the owner of a root lock.
type Info struct {
	PID       int       `json:"pid"`
	Root      string    `json:"root"`
	StartedAt time.Time `json:"started_at"`
}

// Lock is a held advisory lock on a root directory.
type Lock struct {
	root string
	fl   *flock.Flock
}

// PathFor returns the lock file path for an absolute root.
func PathFor(root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(os.TempDir(), "dirsort-"+hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the lock for root without blocking.
func Acquire(root string) (*Lock, error) {
	abs, err := canonical(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	path := PathFor(abs)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		if info, readErr := ReadInfo(abs); readErr == nil {
			return nil, fmt.Errorf("%w: PID %d since %s (%s)",
				ErrLocked, info.PID, info.StartedAt.Format(time.RFC3339), abs)
		}
		return nil, fmt.Errorf("%w: %s", ErrLocked, abs)
	}

	info := Info{PID: os.Getpid(), Root: abs, StartedAt: time.Now()}
	if data, err := json.Marshal(info); err == nil {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			slog.Debug("write lock info", "path", path, "error", err)
		}
	}

	return &Lock{root: abs, fl: fl}, nil
}

// ReadInfo reads the owner recorded in the lock file for root.
func ReadInfo(root string) (*Info, error) {
	abs, err := canonical(root)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(PathFor(abs))
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse lock: %w", err)
	}
	return &info, nil
}

// Root returns the absolute root this lock guards.
func (l *Lock) Root() string {
	return l.root
}

// Release unlocks the root. It is idempotent.
func (l *Lock) Release() {
	if l == nil || l.fl == nil {
		return
	}
	if err := l.fl.Unlock(); err != nil {
		slog.Warn("failed to release lock", "path", l.fl.Path(), "error", err)
	}
}

// canonical returns root as an absolute path with symlinks resolved, so
// aliases of one directory share a lock. A missing root stays as given.
func canonical(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}
