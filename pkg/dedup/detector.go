package dedup

import (
	"sync"
)

// DefaultThreshold is the distance below which two pages count as duplicates
const DefaultThreshold = 5

// band is one slice of the fingerprint used as an index key
type band struct {
	shift uint
	mask  uint64
}

// Detector remembers the fingerprints of accepted pages and flags new pages
// that fall within the distance threshold of any of them.
type Detector struct {
	mu        sync.Mutex
	threshold int
	bands     []band
	index     []map[uint64][]uint64
	all       []uint64
}

// New creates a Detector. A page is a near duplicate when its distance to a
// stored fingerprint is strictly less than threshold.
func New(threshold int) *Detector {
	d := &Detector{threshold: threshold}

	// Splitting the 64 bits into threshold bands guarantees that any pair at
	// distance < threshold agrees on at least one whole band.
	if threshold > 0 && threshold <= 64 {
		width := 64 / threshold
		extra := 64 % threshold
		var shift uint
		for i := 0; i < threshold; i++ {
			w := width
			if i < extra {
				w++
			}
			var mask uint64 = 1<<uint(w) - 1
			if w == 64 {
				mask = ^uint64(0)
			}
			d.bands = append(d.bands, band{shift: shift, mask: mask})
			d.index = append(d.index, make(map[uint64][]uint64))
			shift += uint(w)
		}
	}
	return d
}

// IsDuplicate fingerprints text and reports whether a similar page was already
// seen. Fingerprints of unique pages are stored; duplicates are not.
func (d *Detector) IsDuplicate(text string) bool {
	return d.Check(Fingerprint(text))
}

// Check is IsDuplicate for a precomputed fingerprint
func (d *Detector) Check(fp uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.nearLocked(fp) {
		return true
	}
	d.addLocked(fp)
	return false
}

// Len returns the number of stored fingerprints
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.all)
}

func (d *Detector) nearLocked(fp uint64) bool {
	if d.threshold <= 0 {
		return false
	}
	if len(d.bands) == 0 {
		return d.scanLocked(fp)
	}
	for i, b := range d.bands {
		for _, other := range d.index[i][(fp>>b.shift)&b.mask] {
			if Distance(fp, other) < d.threshold {
				return true
			}
		}
	}
	return false
}

func (d *Detector) scanLocked(fp uint64) bool {
	for _, other := range d.all {
		if Distance(fp, other) < d.threshold {
			return true
		}
	}
	return false
}

func (d *Detector) addLocked(fp uint64) {
	d.all = append(d.all, fp)
	for i, b := range d.bands {
		key := (fp >> b.shift) & b.mask
		d.index[i][key] = append(d.index[i][key], fp)
	}
}
