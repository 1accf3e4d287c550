package organizer

import (
	"sync"
	"testing"
)

func TestStats_ConcurrentAdd(t *testing.T) {
	s := NewStats()
	tags := []string{"pdf", "txt", "jpg", "go"}

	var wg sync.WaitGroup
	for i := 0; i < 400; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Add(tags[i%len(tags)], 10)
			if i%50 == 0 {
				s.Fail()
			}
		}(i)
	}
	wg.Wait()

	if got := s.Total(); got != 400 {
		t.Fatalf("total: got %d, want 400", got)
	}
	for _, tag := range tags {
		if got := s.Snapshot()[tag]; got != 100 {
			t.Errorf("%s: got %d, want 100", tag, got)
		}
	}
	if got := s.Bytes(); got != 4000 {
		t.Errorf("bytes: got %d, want 4000", got)
	}
	if got := s.Failed(); got != 8 {
		t.Errorf("failed: got %d, want 8", got)
	}
}

func TestStats_SnapshotIsCopy(t *testing.T) {
	s := NewStats()
	s.Add("txt", 1)
	snap := s.Snapshot()
	snap["txt"] = 99
	if got := s.Snapshot()["txt"]; got != 1 {
		t.Fatalf("snapshot mutation leaked into stats: %d", got)
	}
}
