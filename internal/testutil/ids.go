package testutil

import (
	"fmt"
	"sync"
)

// SequentialPassIDs generates "<prefix>-pass-<n>" ids so journaled passes
// and golden traces are stable across runs.
type SequentialPassIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialPassIDs creates a generator. An empty prefix becomes "test".
func NewSequentialPassIDs(prefix string) *SequentialPassIDs {
	if prefix == "" {
		prefix = "test"
	}
	return &SequentialPassIDs{prefix: prefix}
}

// Generate implements engine.PassIDGenerator.
func (g *SequentialPassIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-pass-%d", g.prefix, g.n)
}

// FixedRoller replays scripted outcomes for probability triggers. Once the
// script is exhausted every roll misses.
type FixedRoller struct {
	mu       sync.Mutex
	outcomes []bool
	calls    int
}

// NewFixedRoller creates a roller returning outcomes in order.
func NewFixedRoller(outcomes ...bool) *FixedRoller {
	return &FixedRoller{outcomes: outcomes}
}

// Chance implements resolver.Roller. p is ignored.
func (r *FixedRoller) Chance(p float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.calls
	r.calls++
	if i >= len(r.outcomes) {
		return false
	}
	return r.outcomes[i]
}

// Calls returns how many rolls were made.
func (r *FixedRoller) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
