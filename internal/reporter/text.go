package reporter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/dirsort/internal/organizer"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// TextReporter writes human-readable output to a writer.
// Per-file errors go to a separate error writer.
type TextReporter struct {
	mu    sync.Mutex
	w     io.Writer
	errW  io.Writer
	color bool
}

// NewTextReporter creates a text reporter.
// If w or errW is nil, they default to os.Stdout and os.Stderr.
// color enables ANSI codes.
func NewTextReporter(w, errW io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	if errW == nil {
		errW = os.Stderr
	}
	return &TextReporter{w: w, errW: errW, color: color}
}

// PrintScanStart writes the banner shown before traversal.
func (r *TextReporter) PrintScanStart(root string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "Scanning directory: %s\n", root)
}

// PrintFound writes the number of discovered files.
func (r *TextReporter) PrintFound(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "Found %d files\n", n)
}

// PrintOutcome writes one line per moved or planned file and per failure.
// Skipped and in-place files are silent. Safe for concurrent use.
func (r *TextReporter) PrintOutcome(o organizer.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch o.Action {
	case organizer.ActionMoved:
		fmt.Fprintf(r.w, "Moved %s -> %s\n", o.Source, o.Dest)
	case organizer.ActionPlanned:
		fmt.Fprintf(r.w, "%s[DRY RUN]%s Would move %s -> %s\n", r.c(colorYellow), r.c(colorReset), o.Source, o.Dest)
	case organizer.ActionFailed:
		fmt.Fprintf(r.errW, "%sFailed to move %s: %v%s\n", r.c(colorRed), o.Source, o.Err, r.c(colorReset))
	}
}

// PrintSummary writes the per-extension counts of a finished run.
func (r *TextReporter) PrintSummary(res *organizer.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "%s--- Organization Complete ---%s\n", r.c(colorCyan), r.c(colorReset))
	for _, tag := range SortedTags(res.Counts) {
		fmt.Fprintf(r.w, "[.%s] : %d files\n", tag, res.Counts[tag])
	}

	verb := "Moved"
	if res.DryRun {
		verb = "Would move"
	}
	fmt.Fprintf(r.w, "%s%s: %d (%s)%s  ", r.c(colorGreen), verb, res.Moved, humanize.Bytes(uint64(res.Bytes)), r.c(colorReset))
	if res.Failed > 0 {
		fmt.Fprintf(r.w, "%sFailed: %d%s  ", r.c(colorRed), res.Failed, r.c(colorReset))
	}
	if res.Unreadable > 0 {
		fmt.Fprintf(r.w, "%sUnreadable: %d%s  ", r.c(colorYellow), res.Unreadable, r.c(colorReset))
	}
	fmt.Fprintf(r.w, "%sDuration: %s%s\n", r.c(colorDim), res.Duration.Truncate(time.Millisecond), r.c(colorReset))
}

func (r *TextReporter) c(code string) string {
	if !r.color {
		return ""
	}
	return code
}

// SortedTags returns the keys of counts in lexical order.
func SortedTags(counts map[string]int) []string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
