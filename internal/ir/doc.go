// Package ir defines the data model shared by every reelsync package: story
// identifiers, timeline lines, pending actions, save snapshots and playback
// instructions.
//
// This package contains types and pure functions only. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Lines, pending actions and action groups are closed sum types; unknown
//     wire tags decode to *UnhandledVariantError, never to a default case
//   - Untyped server payloads are carried as the sealed Value type
//   - All JSON tags use snake_case
//   - Hashes use RFC 8785 canonical JSON with domain separation
package ir
