package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/reelsync/internal/compiler"
	"github.com/roach88/reelsync/internal/graph"
	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/resolver"
	"github.com/roach88/reelsync/internal/timeline"
)

// PassInput is everything one pass reads.
type PassInput struct {
	// Prev is the held snapshot, nil when none is held.
	Prev *ir.Save

	// Queue is the held queue. Pass clones it.
	Queue []ir.Instruction

	// Next is the snapshot just received.
	Next *ir.Save

	// Target gates emission until this story node is seen.
	Target string

	// Rewind makes this video the head of the result.
	Rewind string

	// State is the resolver state; count triggers increment it.
	State *resolver.State
}

// PassResult is the outcome of one pass. Nothing is installed yet.
type PassResult struct {
	Queue   []ir.Instruction
	Delta   timeline.Delta
	Stats   compiler.Stats
	Outcome resolver.Outcome
}

// Pass runs diff, compile, resolve, rewind and chapter trim over one
// snapshot. It has no side effects besides in.State; the caller decides
// what to install. A dead-end outcome skips rewind and trim since the
// result is abandoned.
func Pass(in PassInput, idx *graph.Index, res *resolver.Resolver) (PassResult, error) {
	if in.Next == nil {
		return PassResult{}, errors.New("pass: no snapshot")
	}

	var prev []ir.Line
	if in.Prev != nil {
		prev = in.Prev.Timeline.Lines
	}
	lines := in.Next.Timeline.Lines
	delta := timeline.Diff(prev, lines, in.Prev != nil)

	queue, stats, err := compiler.Replay(ir.CloneQueue(in.Queue), delta, lines, idx, compiler.Options{Target: in.Target})
	if err != nil {
		return PassResult{}, fmt.Errorf("compile save %d: %w", in.Next.ID, err)
	}

	queue, outcome, err := res.Resolve(queue, in.Next.Timeline.Actions, in.State)
	if err != nil {
		return PassResult{}, fmt.Errorf("resolve actions of save %d: %w", in.Next.ID, err)
	}

	result := PassResult{Queue: queue, Delta: delta, Stats: stats, Outcome: outcome}
	if outcome.DeadEnd {
		return result, nil
	}

	queue = compiler.Rewind(queue, in.Rewind)
	queue, err = compiler.TrimChapters(queue)
	if err != nil {
		return PassResult{}, fmt.Errorf("trim queue of save %d: %w", in.Next.ID, err)
	}
	result.Queue = queue
	return result, nil
}
