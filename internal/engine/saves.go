package engine

import (
	"context"
	"fmt"

	"github.com/roach88/reelsync/internal/ir"
)

// FullSync loads the first save listed by the server (creating one when
// there is none), resumes at the last storylet of its log and compiles the
// queue from there. A last video that was played more than once is a loop
// the player was waiting in, so the queue is rewound onto it.
func (e *Engine) FullSync(ctx context.Context) error {
	return e.fullSync(ctx, e.newQuota())
}

func (e *Engine) fullSync(ctx context.Context, quota *QuotaEnforcer) error {
	saves, err := e.svc.ListSaves(ctx)
	if err != nil {
		return fmt.Errorf("list saves: %w", err)
	}

	var id int64
	if len(saves) == 0 {
		id, err = e.svc.CreateSave(ctx)
		if err != nil {
			return fmt.Errorf("create save: %w", err)
		}
		e.logger.Info("created save", "save_id", id)
	} else {
		id = saves[0].ID
	}

	save, err := e.svc.FetchSave(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch save %d: %w", id, err)
	}

	storylet, _ := save.LastStorylet()
	var visited []string
	for _, s := range save.VisitedStorylets {
		videos, _ := e.idx.VideosOfStorylet(s)
		visited = append(visited, videos...)
	}

	lastVideo, hasVideo := save.LastVideo()
	loops := hasVideo && save.PlayCount(lastVideo) > 1

	if err := e.sync(ctx, save, storylet, "", quota); err != nil {
		return err
	}
	e.currentStorylet = storylet
	for _, v := range visited {
		e.markWatched(v)
	}

	if loops {
		e.logger.Warn("last video played repeatedly: rewinding", "save_id", id, "video", lastVideo)
		return e.rewindTo(ctx, lastVideo, quota)
	}
	return nil
}

// SpeculativeSync runs FullSync only when no save is held yet.
func (e *Engine) SpeculativeSync(ctx context.Context) error {
	if e.save != nil {
		return nil
	}
	return e.FullSync(ctx)
}

// CommitAction commits a player choice on the held save. A key selector
// has no reference list here and is ignored; an index below 0 becomes 0.
func (e *Engine) CommitAction(ctx context.Context, sel ir.Selector) error {
	if e.save == nil {
		return newNoSaveError("commit")
	}
	return e.commit(ctx, e.save.ID, sel, nil, e.newQuota())
}

// RewindTo jumps the held save back to id and rebuilds the queue from
// there. id may be a storylet, whose first video becomes the head, or a
// video, whose storylet is jumped to. An id that is neither returns an
// UnresolvableRewindError and changes nothing.
func (e *Engine) RewindTo(ctx context.Context, id string) error {
	return e.rewindTo(ctx, id, e.newQuota())
}

func (e *Engine) rewindTo(ctx context.Context, id string, quota *QuotaEnforcer) error {
	storylet, video, ok := e.resolveRewind(id)
	if !ok {
		e.logger.Error("unresolvable rewind target", "id", id)
		return &UnresolvableRewindError{ID: id}
	}
	if e.save == nil {
		return newNoSaveError("rewind")
	}

	e.logger.Info("rewinding", "save_id", e.save.ID, "storylet", storylet, "video", video)
	next, err := e.svc.Jump(ctx, e.save.ID, storylet)
	if err != nil {
		return fmt.Errorf("jump save %d to %s: %w", e.save.ID, storylet, err)
	}
	return e.sync(ctx, next, storylet, video, quota)
}

func (e *Engine) resolveRewind(id string) (storylet, video string, ok bool) {
	storylet = ir.ToStoryletForm(id)
	if videos, found := e.idx.VideosOfStorylet(storylet); found && len(videos) > 0 {
		return storylet, videos[0], true
	}

	video = ir.ToVideoForm(id)
	if s, found := e.idx.StoryletOfVideo(video); found {
		return s, video, true
	}
	return "", "", false
}

// CopyAndSwitch copies saveID on the server and switches to the copy. All
// local state is reset first. When the server hands back the same id the
// save is reloaded with FullSync.
func (e *Engine) CopyAndSwitch(ctx context.Context, saveID int64) error {
	copied, err := e.svc.CopySave(ctx, saveID)
	if err != nil {
		return fmt.Errorf("copy save %d: %w", saveID, err)
	}

	e.ResetAll()
	quota := e.newQuota()
	if copied.ID == saveID {
		return e.fullSync(ctx, quota)
	}
	return e.sync(ctx, copied, "", "", quota)
}

// ForceNewSave creates a save on the server, resets local state and
// reloads with FullSync.
func (e *Engine) ForceNewSave(ctx context.Context) error {
	id, err := e.svc.CreateSave(ctx)
	if err != nil {
		return fmt.Errorf("create save: %w", err)
	}
	e.logger.Info("created save", "save_id", id)

	e.ResetAll()
	return e.FullSync(ctx)
}

// ResetAll drops the held save, the queue, the cursor and all process
// state.
func (e *Engine) ResetAll() {
	e.resetProcessState()
	e.notify()
}
