package organizer

import (
	"log/slog"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// Collect walks root and returns every regular file beneath it, in walk order.
//
// Entries that cannot be read (permission denied, dangling links) are skipped
// and counted in unreadable; they never abort the walk. Symlinks are kept only
// when they resolve to a regular file, and linked directories are not
// descended into. Paths matching an exclude pattern (gitignore syntax,
// relative to root) are left out, and matching directories are pruned.
func Collect(fs afero.Fs, root string, exclude []string) (files []FileEntry, unreadable int, err error) {
	var matcher *ignore.GitIgnore
	if len(exclude) > 0 {
		matcher = ignore.CompileIgnoreLines(exclude...)
	}

	err = afero.Walk(fs, root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			unreadable++
			slog.Debug("skipping unreadable entry", "path", path, "error", walkErr)
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if matcher != nil {
			match := rel
			if info.IsDir() {
				match += string(filepath.Separator)
			}
			if matcher.MatchesPath(match) {
				slog.Debug("excluded", "path", rel)
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, statErr := fs.Stat(path)
			if statErr != nil {
				unreadable++
				slog.Debug("skipping dangling link", "path", path, "error", statErr)
				return nil
			}
			info = target
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		files = append(files, FileEntry{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, unreadable, err
	}
	return files, unreadable, nil
}
