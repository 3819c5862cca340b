package testutil

import (
	"sync"
	"time"
)

// DeterministicClock provides a thread-safe clock for tests that
// advances by a fixed step on every call to Now.
//
// Deterministic timestamps make store rows and audit trails
// reproducible across runs, which golden comparisons rely on.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	n    int64
}

// NewDeterministicClock creates a clock starting at base and advancing
// by step on each Now call. The first Now returns base.
func NewDeterministicClock(base time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{base: base, step: step}
}

// Now returns the next timestamp in the sequence.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.base.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Reset rewinds the clock so the next Now returns base again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
