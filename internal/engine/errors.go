package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/reelsync/internal/service"
)

// RuntimeError represents an error detected by the orchestrator itself, as
// opposed to one propagated from the save service.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// SaveID identifies the affected save, 0 when none is held.
	SaveID int64

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNoSave indicates an operation that needs a held save ran
	// before any sync.
	ErrCodeNoSave RuntimeErrorCode = "NO_SAVE"

	// ErrCodeUnresolvableRewind indicates a rewind id that names neither a
	// storylet nor a video.
	ErrCodeUnresolvableRewind RuntimeErrorCode = "UNRESOLVABLE_REWIND"

	// ErrCodeCommitDepthExceeded indicates a commit chain longer than the
	// configured quota.
	ErrCodeCommitDepthExceeded RuntimeErrorCode = "COMMIT_DEPTH_EXCEEDED"

	// ErrCodeUnauthorized indicates the server rejected the session.
	ErrCodeUnauthorized RuntimeErrorCode = "UNAUTHORIZED"

	// ErrCodeInternal covers every other failure.
	ErrCodeInternal RuntimeErrorCode = "INTERNAL"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.SaveID != 0 {
		return fmt.Sprintf("%s: %s (save=%d)", e.Code, e.Message, e.SaveID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UnresolvableRewindError is returned by RewindTo when id is neither a
// known storylet nor a known video. No state is changed.
type UnresolvableRewindError struct {
	ID string
}

// Error implements the error interface.
func (e *UnresolvableRewindError) Error() string {
	return fmt.Sprintf("cannot rewind to %q: no such storylet or video", e.ID)
}

// RuntimeError returns the error code for matching.
func (e *UnresolvableRewindError) RuntimeError() RuntimeErrorCode {
	return ErrCodeUnresolvableRewind
}

// IsNoSave returns true if the error reports a missing held save.
func IsNoSave(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeNoSave
}

// IsUnresolvableRewind returns true if the error is an unresolvable rewind.
// Matches both RuntimeError with ErrCodeUnresolvableRewind and
// UnresolvableRewindError.
func IsUnresolvableRewind(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnresolvableRewind
	}
	var ue *UnresolvableRewindError
	return errors.As(err, &ue)
}

// IsCommitDepthExceeded returns true if a commit chain hit the quota.
// Matches both RuntimeError with ErrCodeCommitDepthExceeded and
// DepthExceededError.
func IsCommitDepthExceeded(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCommitDepthExceeded
	}
	var de *DepthExceededError
	return errors.As(err, &de)
}

// CodeOf maps any error returned by the Engine to a RuntimeErrorCode, for
// frontends that report codes rather than messages.
func CodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &re):
		return re.Code
	case IsUnresolvableRewind(err):
		return ErrCodeUnresolvableRewind
	case IsCommitDepthExceeded(err):
		return ErrCodeCommitDepthExceeded
	case service.IsUnauthorized(err):
		return ErrCodeUnauthorized
	default:
		return ErrCodeInternal
	}
}

func newNoSaveError(op string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeNoSave,
		Message: fmt.Sprintf("%s needs a synced save", op),
		Details: map[string]string{"op": op},
	}
}
