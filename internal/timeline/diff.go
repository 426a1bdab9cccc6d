package timeline

import "github.com/roach88/reelsync/internal/ir"

// Kind classifies a Delta.
type Kind string

const (
	// KindAppend: the new log extends the held one.
	KindAppend Kind = "append"

	// KindRollback: some held entries are no longer in the new log.
	KindRollback Kind = "rollback"

	// KindNoOp: the logs are identical.
	KindNoOp Kind = "noop"
)

// Delta is the result of comparing a held log with a fetched one.
type Delta struct {
	// RolledBack holds entries of the held log from the first divergence on.
	RolledBack []ir.Line

	// Appended holds entries of the new log from the first divergence on.
	Appended []ir.Line

	// Divergence is the index of the first differing entry. With no held
	// log it is 0.
	Divergence int
}

// Kind classifies the delta.
func (d Delta) Kind() Kind {
	switch {
	case len(d.RolledBack) > 0:
		return KindRollback
	case len(d.Appended) > 0:
		return KindAppend
	default:
		return KindNoOp
	}
}

// NeedsFullReplay reports whether the compiler must discard the queue and
// replay the whole new log: on rollback, and when nothing new arrived.
func (d Delta) NeedsFullReplay() bool {
	return len(d.RolledBack) > 0 || len(d.Appended) == 0
}

// Diff compares the held log prev against next. hadPrev is false when no
// snapshot is held yet; then every entry of next counts as appended.
//
// A missing entry on either side counts as differing, so a truncated log is
// a rollback and a strictly longer one is a pure append.
func Diff(prev, next []ir.Line, hadPrev bool) Delta {
	if !hadPrev {
		return Delta{Appended: next}
	}

	k := FirstDivergence(prev, next)
	d := Delta{Divergence: k}
	if k < len(prev) {
		d.RolledBack = prev[k:]
	}
	if k < len(next) {
		d.Appended = next[k:]
	}
	return d
}

// FirstDivergence returns the first index at which the two logs differ, or
// max(len(a), len(b)) when they are equal.
func FirstDivergence(a, b []ir.Line) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		if i >= len(a) || i >= len(b) || !ir.LineEqual(a[i], b[i]) {
			return i
		}
	}
	return n
}
