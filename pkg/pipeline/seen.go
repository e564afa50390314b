package pipeline

import "sync"

// SeenState is how far a canonical URL has progressed
type SeenState int

const (
	// Unseen URLs were never returned nor processed
	Unseen SeenState = iota
	// Discovered URLs were returned to the harness as candidates
	Discovered
	// Processed URLs were accepted; they are never processed again
	Processed
)

func (s SeenState) String() string {
	switch s {
	case Discovered:
		return "discovered"
	case Processed:
		return "processed"
	default:
		return "unseen"
	}
}

// SeenSet records every canonical URL the pipeline has handed out or
// accepted. Entries are never removed and states only move forward.
//
// A Discovered URL is still processable: it was returned so the harness would
// fetch it, and Process is then called with its result. Only Processed URLs are
// rejected as seen. Rejected pages stay in their previous state so a later fetch
// of the same URL, say after a transient error, gets a fresh verdict.
type SeenSet struct {
	mu     sync.Mutex
	states map[string]SeenState
}

// NewSeenSet creates an empty SeenSet
func NewSeenSet() *SeenSet {
	return &SeenSet{states: make(map[string]SeenState)}
}

// State returns the state of url
func (s *SeenSet) State(url string) SeenState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[url]
}

// MarkDiscovered adds url as Discovered and reports whether it was unseen
func (s *SeenSet) MarkDiscovered(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[url]; ok {
		return false
	}
	s.states[url] = Discovered
	return true
}

// MarkProcessed moves url to Processed and reports whether it was not
// processed before
func (s *SeenSet) MarkProcessed(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[url] == Processed {
		return false
	}
	s.states[url] = Processed
	return true
}

// Len returns the number of URLs in the set
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Count returns the number of URLs in the given state
func (s *SeenSet) Count(state SeenState) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.states {
		if st == state {
			n++
		}
	}
	return n
}
