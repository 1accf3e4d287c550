package organizer

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotFound is returned when the root directory does not exist.
	ErrRootNotFound = errors.New("root directory does not exist")
	// ErrRootNotDir is returned when the root exists but is not a directory.
	ErrRootNotDir = errors.New("root is not a directory")
)

// SetupError aborts a whole run before any file is touched.
type SetupError struct {
	Root string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("organize %s: %v", e.Root, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
