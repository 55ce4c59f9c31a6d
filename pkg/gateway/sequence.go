package gateway

import "sync/atomic"

// SequenceTracker remembers the largest sequence number seen in a session.
// It starts unknown and never decreases. The zero value is ready to use.
type SequenceTracker struct {
	max   atomic.Int64
	known atomic.Bool // set after max holds an observed value
}

// Observe records n if it is larger than anything seen so far. Negative
// numbers are ignored.
func (t *SequenceTracker) Observe(n int64) {
	if n < 0 {
		return
	}
	for {
		cur := t.max.Load()
		if n <= cur || t.max.CompareAndSwap(cur, n) {
			break
		}
	}
	t.known.Store(true)
}

// Value returns the current sequence number and whether one has been seen.
func (t *SequenceTracker) Value() (int64, bool) {
	if !t.known.Load() {
		return 0, false
	}
	return t.max.Load(), true
}
