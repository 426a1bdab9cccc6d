package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxCommitDepth bounds the number of chained commits one command
// may trigger.
const DefaultMaxCommitDepth = 32

// QuotaEnforcer counts the commits of one command chain and enforces the
// maximum depth.
//
// Each public Engine operation gets its own enforcer. Termination of a
// chain already follows from triggers clearing themselves; the quota
// catches a server that keeps answering with fresh triggers.
type QuotaEnforcer struct {
	maxDepth int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxDepth int) *QuotaEnforcer {
	return &QuotaEnforcer{maxDepth: maxDepth}
}

// Check increments the commit counter and validates against the limit.
//
// Returns DepthExceededError if the quota is exceeded.
func (q *QuotaEnforcer) Check(saveID int64) error {
	q.current++
	if q.current > q.maxDepth {
		return &DepthExceededError{
			SaveID: saveID,
			Depth:  q.current,
			Limit:  q.maxDepth,
		}
	}
	return nil
}

// Reset resets the counter to 0.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current commit count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxDepth returns the limit.
func (q *QuotaEnforcer) MaxDepth() int {
	return q.maxDepth
}

// DepthExceededError is returned when a commit chain exceeds the quota.
// The chain stops; the last successfully installed pass stays installed.
type DepthExceededError struct {
	SaveID int64
	Depth  int
	Limit  int
}

// Error implements the error interface.
func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("save %d exceeded max commit depth: %d commits > %d limit",
		e.SaveID, e.Depth, e.Limit)
}

// RuntimeError returns the error code for matching.
func (e *DepthExceededError) RuntimeError() RuntimeErrorCode {
	return ErrCodeCommitDepthExceeded
}

// IsDepthExceededError returns true if the error is a DepthExceededError.
// Uses errors.As to handle wrapped errors.
func IsDepthExceededError(err error) bool {
	var de *DepthExceededError
	return errors.As(err, &de)
}
