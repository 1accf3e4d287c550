package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/dirsort/internal/organizer"
)

// WriteJSON writes the run result as indented JSON.
func WriteJSON(w io.Writer, res *organizer.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
