package organizer

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Action describes what happened to a single file.
type Action string

const (
	ActionSkipped Action = "skipped"  // no extension
	ActionInPlace Action = "in-place" // already at its destination
	ActionPlanned Action = "planned"  // dry run
	ActionMoved   Action = "moved"
	ActionFailed  Action = "failed"
)

// FileEntry is a regular file discovered under the root.
type FileEntry struct {
	Path string
	Size int64
}

// Outcome is the result of organizing one file.
type Outcome struct {
	Action Action `json:"action"`
	Tag    string `json:"tag,omitempty"`
	Source string `json:"source"`
	Dest   string `json:"dest,omitempty"`
	Size   int64  `json:"size"`
	Err    error  `json:"-"`
}

// Counted reports whether the outcome contributes to the per-extension tally.
// Planned moves count exactly like executed ones.
func (o Outcome) Counted() bool {
	return o.Action == ActionMoved || o.Action == ActionPlanned
}

// Mover classifies files and relocates them into root/<tag>/.
// A Mover holds no mutable state and is safe for concurrent use.
type Mover struct {
	fs     afero.Fs
	root   string
	dryRun bool
}

// NewMover creates a Mover for root. Paths handed to Organize must be rooted
// at the same cleaned root for the in-place check to hold.
func NewMover(fs afero.Fs, root string, dryRun bool) *Mover {
	return &Mover{fs: fs, root: filepath.Clean(root), dryRun: dryRun}
}

// Organize decides what to do with entry and, unless this is a dry run,
// performs the move. A rename over an existing destination replaces it.
func (m *Mover) Organize(entry FileEntry) Outcome {
	out := Outcome{Source: entry.Path, Size: entry.Size}

	tag, ok := ExtensionTag(filepath.Base(entry.Path))
	if !ok {
		out.Action = ActionSkipped
		return out
	}
	out.Tag = tag
	out.Dest = Destination(m.root, entry.Path, tag)

	if out.Dest == filepath.Clean(entry.Path) {
		out.Action = ActionInPlace
		return out
	}

	if m.dryRun {
		out.Action = ActionPlanned
		return out
	}

	dir := filepath.Join(m.root, tag)
	if err := m.fs.MkdirAll(dir, 0o755); err != nil {
		out.Action = ActionFailed
		out.Err = fmt.Errorf("create directory %s: %w", dir, err)
		return out
	}
	if err := m.fs.Rename(entry.Path, out.Dest); err != nil {
		out.Action = ActionFailed
		out.Err = fmt.Errorf("rename: %w", err)
		return out
	}

	out.Action = ActionMoved
	return out
}
