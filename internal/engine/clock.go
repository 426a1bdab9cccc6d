package engine

import "sync/atomic"

// Sequencer hands out journal sequence numbers. *Clock implements it.
type Sequencer interface {
	Next() int64
}

// Clock orders journaled passes. Seqs are dense and strictly increasing
// within one process; a journal-backed engine starts the clock at the
// journal's LastSeq so seqs stay unique across restarts.
type Clock struct {
	last atomic.Int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock { return NewClockAt(0) }

// NewClockAt returns a clock whose first Next is last+1.
func NewClockAt(last int64) *Clock {
	c := new(Clock)
	c.last.Store(last)
	return c
}

func (c *Clock) Next() int64 { return c.last.Add(1) }

// Current is the last seq handed out.
func (c *Clock) Current() int64 { return c.last.Load() }
