// Package collision deduplicates values into a dictionary while guarding
// against hash-bucket collisions: a candidate is only treated as a repeat of
// an existing entry once its bytes compare equal, not merely its hash.
package collision

import "github.com/maplibre/mlt-go/internal/hash"

// Tracker interns values into an ordered, deduplicated dictionary. It is the
// engine behind the string dictionary encoders (single, shared and FSST
// dictionaries): hash first to find the bucket of candidates, then fall back
// to an exact comparison to resolve collisions.
type Tracker struct {
	buckets map[uint64][]int
	values  []string
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{buckets: make(map[uint64][]int)}
}

// Intern returns value's dictionary index, appending it as a new entry if no
// equal value has been interned yet.
func (t *Tracker) Intern(value string) int {
	h := hash.ID(value)
	for _, idx := range t.buckets[h] {
		if t.values[idx] == value {
			return idx
		}
	}

	idx := len(t.values)
	t.values = append(t.values, value)
	t.buckets[h] = append(t.buckets[h], idx)

	return idx
}

// Values returns the interned dictionary in insertion order.
func (t *Tracker) Values() []string {
	return t.values
}

// Count returns the number of distinct values interned so far.
func (t *Tracker) Count() int {
	return len(t.values)
}

// Reset clears all interned values, keeping the tracker's backing storage
// for reuse across successive encodes on the same instance.
func (t *Tracker) Reset() {
	for k := range t.buckets {
		delete(t.buckets, k)
	}
	t.values = t.values[:0]
}
