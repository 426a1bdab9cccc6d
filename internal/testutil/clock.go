package testutil

import "sync"

// DeterministicClock is an engine.Sequencer for tests. It remembers every
// seq it issued and can be rewound, so a scenario run twice journals the
// same seqs.
type DeterministicClock struct {
	mu     sync.Mutex
	base   int64
	issued []int64
}

func NewDeterministicClock() *DeterministicClock { return NewDeterministicClockAt(0) }

// NewDeterministicClockAt returns a clock whose first Next is base+1.
func NewDeterministicClockAt(base int64) *DeterministicClock {
	return &DeterministicClock{base: base}
}

func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := c.base + int64(len(c.issued)) + 1
	c.issued = append(c.issued, seq)
	return seq
}

// Current is the last seq issued, or the base when none was.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base + int64(len(c.issued))
}

// Issued returns a copy of the seqs handed out since the last Reset.
func (c *DeterministicClock) Issued() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.issued...)
}

func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued = nil
}
