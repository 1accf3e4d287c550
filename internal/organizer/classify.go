package organizer

import (
	"path/filepath"
	"strings"
)

// ExtensionTag returns the lowercased extension of name without its dot.
// Names with no extension, or ending in a bare dot, report false.
// A leading-dot name such as ".gitignore" is tagged "gitignore".
func ExtensionTag(name string) (string, bool) {
	ext := filepath.Ext(name)
	if len(ext) <= 1 {
		return "", false
	}
	return strings.ToLower(ext[1:]), true
}

// Destination returns root/tag/<base name of path>.
func Destination(root, path, tag string) string {
	return filepath.Join(root, tag, filepath.Base(path))
}
