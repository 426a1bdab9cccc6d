package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/reelsync/internal/ir"
)

// SaveService is the story server as seen by the client. Every call is a
// network round-trip; cancellation and timeouts come from ctx.
type SaveService interface {
	ListSaves(ctx context.Context) ([]ir.SaveSummary, error)
	CreateSave(ctx context.Context) (int64, error)
	FetchSave(ctx context.Context, id int64) (*ir.Save, error)
	Act(ctx context.Context, id int64, index int) (*ir.Save, error)
	Jump(ctx context.Context, id int64, storylet string) (*ir.Save, error)
	CopySave(ctx context.Context, id int64) (*ir.Save, error)
}

// ErrUnauthorized is returned when the server rejects the session. It is
// never retried.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNoSave is returned when a 2xx response does not carry the save it
// should. A zero save would otherwise replace the held one.
var ErrNoSave = errors.New("response carries no save")

// StatusError is a non-2xx response other than 401.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d %s", e.Method, e.Path, e.Code, e.Status)
}

// IsUnauthorized reports whether err is, or wraps, ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
