// Package engine implements the save orchestrator: the façade that keeps a
// held save snapshot, its compiled instruction queue and the playback
// cursor in step with the story server.
//
// # Passes
//
// Every snapshot the server returns goes through one pass:
//
//	diff → compile → resolve pending actions → rewind → chapter trim → install
//
// Pass is the pure pipeline and works on a clone of the held queue; the
// Engine installs the result only when every stage and round-trip has
// succeeded, so a failed pass leaves the held state untouched.
//
// # Commits
//
// A resolved system trigger asks for a follow-up round-trip. The Engine
// installs the snapshot with its pending actions cleared and then acts,
// feeding the response into a new pass. Each trigger clears itself before
// recursing, so the chain ends once no trigger is pending; a depth quota
// (WithMaxCommitDepth) bounds it regardless.
//
// # Concurrency
//
// The Engine is not safe for concurrent use and is not reentrant. Callers
// that serve several clients go through a Driver, which runs every command
// on a single goroutine in submission order.
//
// # Sequencing
//
// Journaled passes are stamped with a monotonic logical clock. Wall time is
// never used for ordering.
package engine
