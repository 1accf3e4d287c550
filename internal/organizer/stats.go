package organizer

import "sync"

// Stats is the per-extension tally shared by all workers.
// The lock is held only for the map update, never across filesystem calls.
type Stats struct {
	mu     sync.Mutex
	counts map[string]int
	bytes  int64
	failed int
}

// NewStats creates an empty tally.
func NewStats() *Stats {
	return &Stats{counts: make(map[string]int)}
}

// Add records one successful (or planned) move for tag.
func (s *Stats) Add(tag string, size int64) {
	s.mu.Lock()
	s.counts[tag]++
	s.bytes += size
	s.mu.Unlock()
}

// Fail records one file that could not be moved.
func (s *Stats) Fail() {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
}

// Snapshot returns a copy of the per-extension counts.
func (s *Stats) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		cp[k] = v
	}
	return cp
}

// Total returns the number of moves across all extensions.
func (s *Stats) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.counts {
		n += v
	}
	return n
}

// Bytes returns the combined size of all counted files.
func (s *Stats) Bytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}

// Failed returns the number of files that could not be moved.
func (s *Stats) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}
