// Package store provides the SQLite sync journal.
//
// Every pass the engine runs is appended to the journal together with the
// snapshots it read, so a session can be inspected with `reelsync trace`
// and re-run with `reelsync replay`:
//   - snapshots: save bodies, content-addressed by ir.SnapshotHash
//   - passes: one row per pass with its delta, the queue it started from,
//     the hash of the queue it produced and the commit it asked for
//
// Rows are never updated. Ordering always uses the logical seq column,
// never wall time: ORDER BY seq ASC, id ASC.
//
// # Connection
//
// Open passes its pragmas in the DSN so every connection gets them:
// journal_mode=WAL, synchronous=NORMAL, busy_timeout=5000 and
// foreign_keys=on. Schema changes after schema.sql are numbered
// migrations tracked in PRAGMA user_version.
package store
