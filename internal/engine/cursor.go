package engine

import (
	"context"
	"fmt"
)

// CursorState is the playback cursor: Idle, or Active on the queue head.
type CursorState string

const (
	CursorIdle   CursorState = "idle"
	CursorActive CursorState = "active"
)

// Start begins playback. With an empty queue it first rewinds to the held
// log's last played video; then an idle cursor over a non-empty queue
// becomes active on the head.
func (e *Engine) Start(ctx context.Context) error {
	if len(e.queue) == 0 && e.save != nil {
		if last, ok := e.save.LastVideo(); ok {
			e.logger.Debug("start on empty queue: rewinding", "video", last)
			if err := e.rewindTo(ctx, last, e.newQuota()); err != nil {
				return fmt.Errorf("start: %w", err)
			}
		}
	}

	if e.cursor == CursorIdle && len(e.queue) > 0 {
		e.cursor = CursorActive
		e.currentStorylet = e.queue[0].StoryletID
		e.notify()
	}
	return nil
}

// Advance finishes the head instruction: it is marked watched and dropped.
// The cursor stays active on the new head, or goes idle when the queue runs
// out. At most one instruction is removed per call.
func (e *Engine) Advance() {
	if len(e.queue) == 0 {
		e.cursor = CursorIdle
		e.notify()
		return
	}

	e.markWatched(e.queue[0].VideoID)
	e.queue = e.queue[1:]

	if len(e.queue) == 0 {
		e.cursor = CursorIdle
	} else {
		e.cursor = CursorActive
		e.currentStorylet = e.queue[0].StoryletID
	}
	e.notify()
}
