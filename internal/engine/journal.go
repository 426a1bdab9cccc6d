package engine

import (
	"context"

	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/store"
)

// Journal receives a record of every pass. *store.Store implements it.
type Journal interface {
	RecordPass(ctx context.Context, rec store.PassRecord) error
}

// View is a read-only picture of the engine state, as pushed to observers.
type View struct {
	SaveID          int64            `json:"save_id"`
	Queue           []ir.Instruction `json:"queue"`
	Cursor          CursorState      `json:"cursor"`
	CurrentVideo    string           `json:"current_video"`
	CurrentStorylet string           `json:"current_storylet"`
}

// Observer is called on the engine's goroutine after every state change.
// It must not call back into the Engine.
type Observer func(View)
