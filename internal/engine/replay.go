package engine

import (
	"context"
	"fmt"

	"github.com/roach88/reelsync/internal/graph"
	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/resolver"
	"github.com/roach88/reelsync/internal/store"
)

// JournalReader is the read side of the journal. *store.Store implements it.
type JournalReader interface {
	ReadPasses(ctx context.Context, saveID int64) ([]store.Pass, error)
	ReadSnapshot(ctx context.Context, hash string) (*ir.Save, error)
}

// ReplayResult compares one journaled pass with its recomputation.
type ReplayResult struct {
	PassID    string `json:"pass_id"`
	Seq       int64  `json:"seq"`
	Rule      string `json:"rule,omitempty"`
	WantQueue string `json:"want_queue"`
	GotQueue  string `json:"got_queue"`
	GotRule   string `json:"got_rule,omitempty"`
	Match     bool   `json:"match"`
}

// VerifyJournal re-runs Pass over every journaled pass of a save, from the
// recorded snapshots and base queue, and compares the queue hash and rule
// with the recorded ones.
//
// Draws and trigger counts are not journaled. Neither changes the queue
// a pass produces, so every draw misses and counts start from zero.
func VerifyJournal(ctx context.Context, r JournalReader, idx *graph.Index, saveID int64) ([]ReplayResult, error) {
	passes, err := r.ReadPasses(ctx, saveID)
	if err != nil {
		return nil, fmt.Errorf("read passes of save %d: %w", saveID, err)
	}

	res := resolver.New(resolver.WithRoller(resolver.RollerFunc(func(float64) bool { return false })))
	results := make([]ReplayResult, 0, len(passes))

	for _, p := range passes {
		var prev *ir.Save
		if p.PrevHash != "" {
			prev, err = r.ReadSnapshot(ctx, p.PrevHash)
			if err != nil {
				return nil, fmt.Errorf("pass %s: %w", p.PassID, err)
			}
		}
		next, err := r.ReadSnapshot(ctx, p.SnapshotHash)
		if err != nil {
			return nil, fmt.Errorf("pass %s: %w", p.PassID, err)
		}

		out, err := Pass(PassInput{
			Prev:   prev,
			Queue:  p.BaseQueue,
			Next:   next,
			Target: p.Target,
			Rewind: p.Rewind,
			State:  &resolver.State{},
		}, idx, res)
		if err != nil {
			return nil, fmt.Errorf("replay pass %s: %w", p.PassID, err)
		}

		got, err := ir.QueueHash(out.Queue)
		if err != nil {
			return nil, fmt.Errorf("replay pass %s: %w", p.PassID, err)
		}

		results = append(results, ReplayResult{
			PassID:    p.PassID,
			Seq:       p.Seq,
			Rule:      p.Rule,
			WantQueue: p.QueueHash,
			GotQueue:  got,
			GotRule:   out.Outcome.Rule,
			Match:     got == p.QueueHash && out.Outcome.Rule == p.Rule,
		})
	}
	return results, nil
}
