package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns sequential, predictable ids shaped like
// UUIDs. Tests use it in place of the real UUIDv7 generator so
// submission ids are stable across runs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu sync.Mutex
	n  int64
}

// NewFixedIDGenerator creates a generator whose first id ends in
// 000000000001.
func NewFixedIDGenerator() *FixedIDGenerator {
	return &FixedIDGenerator{}
}

// NewID returns the next id in the sequence.
func (g *FixedIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", g.n), nil
}
