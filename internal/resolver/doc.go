// Package resolver decides what to do with a save's pending actions once
// the queue has been compiled.
//
// Resolve never talks to the server. System triggers that need a
// round-trip come back as an Outcome carrying a Commit, and the caller
// performs it. Everything that can be shown to the player is attached to
// the queue tail instead.
package resolver
