package organizer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

// writeFiles creates each relative path under root with a small payload.
func writeFiles(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(rel), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// recordingFs wraps a filesystem, recording renames and injecting failures.
type recordingFs struct {
	afero.Fs

	mu         sync.Mutex
	renames    []string
	failRename map[string]error
}

func newRecordingFs() *recordingFs {
	return &recordingFs{Fs: afero.NewOsFs(), failRename: make(map[string]error)}
}

func (r *recordingFs) Rename(oldname, newname string) error {
	r.mu.Lock()
	r.renames = append(r.renames, oldname)
	err := r.failRename[oldname]
	r.mu.Unlock()
	if err != nil {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}
	return r.Fs.Rename(oldname, newname)
}

func (r *recordingFs) renamed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.renames...)
}

// deniedFs fails every Open of the listed directories with a permission error.
type deniedFs struct {
	afero.Fs
	denied map[string]bool
}

func newDeniedFs(dirs ...string) *deniedFs {
	d := &deniedFs{Fs: afero.NewOsFs(), denied: make(map[string]bool)}
	for _, dir := range dirs {
		d.denied[dir] = true
	}
	return d
}

func (d *deniedFs) Open(name string) (afero.File, error) {
	if d.denied[name] {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return d.Fs.Open(name)
}
