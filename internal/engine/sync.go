package engine

import (
	"context"
	"fmt"

	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/resolver"
	"github.com/roach88/reelsync/internal/store"
)

func (e *Engine) newQuota() *QuotaEnforcer {
	return NewQuotaEnforcer(e.maxDepth)
}

// sync runs a pass over next and installs the result, then performs the
// commit the resolver asked for. next is owned by the engine from here on.
func (e *Engine) sync(ctx context.Context, next *ir.Save, target, rewind string, quota *QuotaEnforcer) error {
	st := e.state
	res, err := Pass(PassInput{
		Prev:   e.save,
		Queue:  e.queue,
		Next:   next,
		Target: target,
		Rewind: rewind,
		State:  &st,
	}, e.idx, e.resolver)
	if err != nil {
		return err
	}

	out := res.Outcome
	passID := e.passIDs.Generate()
	commitIndex := -1
	if out.Commit != nil {
		if i, ok := ResolveIndex(out.Commit.Selector, out.Commit.Refs); ok {
			commitIndex = i
		}
	}

	e.record(ctx, store.PassRecord{
		PassID:      passID,
		Seq:         e.clock.Next(),
		SaveID:      next.ID,
		Kind:        string(res.Delta.Kind()),
		Divergence:  res.Delta.Divergence,
		RolledBack:  len(res.Delta.RolledBack),
		Appended:    len(res.Delta.Appended),
		Target:      target,
		Rewind:      rewind,
		Prev:        e.save,
		Snapshot:    next,
		BaseQueue:   e.queue,
		Queue:       res.Queue,
		CommitIndex: commitIndex,
		Rule:        out.Rule,
	})

	if out.DeadEnd {
		e.logger.Info("dead end: committing first action",
			"pass_id", passID,
			"save_id", next.ID,
			"pending", len(next.Timeline.Actions))
		return e.commit(ctx, next.ID, out.Commit.Selector, nil, quota)
	}

	if out.Cleared {
		next.Timeline.Actions = nil
	}
	e.state = st
	e.install(next, res.Queue)

	e.logger.Info("pass installed",
		"pass_id", passID,
		"save_id", next.ID,
		"kind", res.Delta.Kind(),
		"divergence", res.Delta.Divergence,
		"full_replay", res.Stats.FullReplay,
		"emitted", res.Stats.Emitted,
		"queue_len", len(res.Queue),
		"rule", out.Rule)

	if out.Commit != nil {
		return e.commit(ctx, next.ID, out.Commit.Selector, out.Commit.Refs, quota)
	}
	return nil
}

// commit acts on the server and syncs the response.
func (e *Engine) commit(ctx context.Context, saveID int64, sel ir.Selector, refs []ir.PendingAction, quota *QuotaEnforcer) error {
	index, ok := ResolveIndex(sel, refs)
	if !ok {
		e.logger.Debug("commit skipped: key without reference list",
			"save_id", saveID,
			"selector", sel.String())
		return nil
	}

	if err := quota.Check(saveID); err != nil {
		e.logger.Error("max commit depth exceeded",
			"save_id", saveID,
			"depth", quota.Current(),
			"limit", quota.MaxDepth())
		return fmt.Errorf("commit %s on save %d: %w", sel, saveID, err)
	}

	e.logger.Info("committing action",
		"save_id", saveID,
		"selector", sel.String(),
		"index", index,
		"depth", quota.Current())

	next, err := e.svc.Act(ctx, saveID, index)
	if err != nil {
		return fmt.Errorf("act on save %d at %d: %w", saveID, index, err)
	}
	return e.sync(ctx, next, "", "", quota)
}

func (e *Engine) install(save *ir.Save, queue []ir.Instruction) {
	e.save = save
	e.queue = queue
	if len(queue) == 0 {
		e.cursor = CursorIdle
	}
	e.notify()
}

// record journals a pass. Journal failures are logged and never fail the
// pass.
func (e *Engine) record(ctx context.Context, rec store.PassRecord) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordPass(ctx, rec); err != nil {
		e.logger.Warn("journal write failed",
			"pass_id", rec.PassID,
			"save_id", rec.SaveID,
			"error", err)
	}
}

// resetProcessState clears everything a save switch discards.
func (e *Engine) resetProcessState() {
	e.save = nil
	e.queue = nil
	e.cursor = CursorIdle
	e.currentStorylet = ""
	e.watched = make(map[string]struct{})
	e.state = resolver.State{}
}
