package reporter

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ppiankov/dirsort/internal/organizer"
)

const recentErrors = 5

// Progress accumulates live counters from organizer callbacks.
// Observe is safe for concurrent use by workers.
type Progress struct {
	total     atomic.Int64
	processed atomic.Int64
	moved     atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64

	mu     sync.Mutex
	counts map[string]int
	errs   []string
	done   bool
}

// ProgressSnapshot is a point-in-time copy of a Progress.
type ProgressSnapshot struct {
	Total     int
	Processed int
	Moved     int
	Skipped   int
	Failed    int
	Counts    map[string]int
	Errors    []string // most recent failures, oldest first
	Done      bool
}

// NewProgress creates an empty progress tracker.
func NewProgress() *Progress {
	return &Progress{counts: make(map[string]int)}
}

// Start records the number of files about to be dispatched.
func (p *Progress) Start(total int) {
	p.total.Store(int64(total))
}

// Observe records one file outcome.
func (p *Progress) Observe(o organizer.Outcome) {
	p.processed.Add(1)
	switch {
	case o.Counted():
		p.moved.Add(1)
		p.mu.Lock()
		p.counts[o.Tag]++
		p.mu.Unlock()
	case o.Action == organizer.ActionFailed:
		p.failed.Add(1)
		p.mu.Lock()
		p.errs = append(p.errs, fmt.Sprintf("%s: %v", o.Source, o.Err))
		if len(p.errs) > recentErrors {
			p.errs = p.errs[len(p.errs)-recentErrors:]
		}
		p.mu.Unlock()
	default:
		p.skipped.Add(1)
	}
}

// Finish marks the run as complete.
func (p *Progress) Finish() {
	p.mu.Lock()
	p.done = true
	p.mu.Unlock()
}

// Snapshot returns a copy of the current counters.
func (p *Progress) Snapshot() ProgressSnapshot {
	s := ProgressSnapshot{
		Total:     int(p.total.Load()),
		Processed: int(p.processed.Load()),
		Moved:     int(p.moved.Load()),
		Skipped:   int(p.skipped.Load()),
		Failed:    int(p.failed.Load()),
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s.Counts = make(map[string]int, len(p.counts))
	for k, v := range p.counts {
		s.Counts[k] = v
	}
	s.Errors = append([]string(nil), p.errs...)
	s.Done = p.done
	return s
}
