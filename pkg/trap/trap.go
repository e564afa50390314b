// Package trap flags URL patterns that repeat often enough to look like an
// infinite URL space (calendars, paginated listings, session parameters).
package trap

import (
	"sort"
	"sync"

	"github.com/amosWeiskopf/crawlgate/pkg/urlpolicy"
)

// DefaultThreshold is the number of sightings a pattern may have before it is a trap
const DefaultThreshold = 10

// Detector counts URL pattern sightings for the lifetime of the process
type Detector struct {
	mu        sync.Mutex
	threshold int
	counts    map[string]int
}

// New creates a Detector; a non-positive threshold falls back to DefaultThreshold
func New(threshold int) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{
		threshold: threshold,
		counts:    make(map[string]int),
	}
}

// IsTrap records one sighting of rawURL's pattern and reports whether the
// pattern has now been seen more than the threshold. Once tripped, a pattern
// stays tripped; counting never stops.
func (d *Detector) IsTrap(rawURL string) (bool, error) {
	pattern, err := urlpolicy.PatternOf(rawURL)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.counts[pattern]++
	return d.counts[pattern] > d.threshold, nil
}

// Count returns how many times pattern has been seen
func (d *Detector) Count(pattern string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[pattern]
}

// Tripped returns the patterns above the threshold, sorted
func (d *Detector) Tripped() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var patterns []string
	for pattern, n := range d.counts {
		if n > d.threshold {
			patterns = append(patterns, pattern)
		}
	}
	sort.Strings(patterns)
	return patterns
}

// Len returns the number of distinct patterns seen
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.counts)
}
