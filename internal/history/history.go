// Package history records a summary of every organize run in a local SQLite
// database. Only per-extension totals are kept; individual moves are not.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded organize run.
type Run struct {
	ID         string         `json:"id"`
	Root       string         `json:"root"`
	DryRun     bool           `json:"dry_run"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   time.Duration  `json:"duration"`
	Discovered int            `json:"discovered"`
	Moved      int            `json:"moved"`
	Failed     int            `json:"failed"`
	Unreadable int            `json:"unreadable"`
	Bytes      int64          `json:"bytes"`
	Counts     map[string]int `json:"counts"`
}

// Filter narrows List results.
type Filter struct {
	Root  string // exact absolute root; empty matches all
	Limit int    // <= 0 means no limit
}

// Store persists runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		root        TEXT NOT NULL,
		dry_run     INTEGER NOT NULL,
		started_at  INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		discovered  INTEGER NOT NULL,
		moved       INTEGER NOT NULL,
		failed      INTEGER NOT NULL,
		unreadable  INTEGER NOT NULL,
		bytes       INTEGER NOT NULL,
		counts      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_root_started ON runs(root, started_at)`,
}

// DefaultPath returns the history database location under the user cache dir.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "dirsort", "history.db")
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range append(pragmas, schema...) {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init history db: %w", execErr)
		}
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts run, assigning an ID when it has none.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	counts := run.Counts
	if counts == nil {
		counts = map[string]int{}
	}
	encoded, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("encode counts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (
			id, root, dry_run, started_at, duration_ms,
			discovered, moved, failed, unreadable, bytes, counts
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Root,
		boolToInt(run.DryRun),
		run.StartedAt.UTC().UnixNano(),
		run.Duration.Milliseconds(),
		run.Discovered,
		run.Moved,
		run.Failed,
		run.Unreadable,
		run.Bytes,
		string(encoded),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns recorded runs, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Run, error) {
	query := `SELECT id, root, dry_run, started_at, duration_ms,
		discovered, moved, failed, unreadable, bytes, counts FROM runs`
	var args []any
	if f.Root != "" {
		query += ` WHERE root = ?`
		args = append(args, f.Root)
	}
	query += ` ORDER BY started_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			dryRun     int
			startedAt  int64
			durationMs int64
			counts     string
		)
		if err := rows.Scan(&r.ID, &r.Root, &dryRun, &startedAt, &durationMs,
			&r.Discovered, &r.Moved, &r.Failed, &r.Unreadable, &r.Bytes, &counts); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.DryRun = dryRun != 0
		r.StartedAt = time.Unix(0, startedAt)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		if err := json.Unmarshal([]byte(counts), &r.Counts); err != nil {
			return nil, fmt.Errorf("decode counts for run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Clear deletes all recorded runs and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
