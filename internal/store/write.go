package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/reelsync/internal/ir"
)

// PassRecord is one pass as the engine journals it. Prev is nil when no
// snapshot was held; Snapshot is the save as received, before resolved
// actions were cleared.
type PassRecord struct {
	PassID      string
	Seq         int64
	SaveID      int64
	Kind        string
	Divergence  int
	RolledBack  int
	Appended    int
	Target      string
	Rewind      string
	Prev        *ir.Save
	Snapshot    *ir.Save
	BaseQueue   []ir.Instruction
	Queue       []ir.Instruction
	CommitIndex int
	Rule        string
}

// RecordPass appends a pass and the snapshots it references.
// Snapshots use ON CONFLICT(hash) DO NOTHING since the same body is
// referenced by consecutive passes; a repeated pass_id is ignored.
func (s *Store) RecordPass(ctx context.Context, rec PassRecord) error {
	if rec.Snapshot == nil {
		return fmt.Errorf("record pass %s: missing snapshot", rec.PassID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record pass %s: begin tx: %w", rec.PassID, err)
	}
	defer tx.Rollback() // No-op if committed

	snapHash, err := writeSnapshot(ctx, tx, rec.Snapshot)
	if err != nil {
		return fmt.Errorf("record pass %s: %w", rec.PassID, err)
	}

	var prevHash sql.NullString
	if rec.Prev != nil {
		h, err := writeSnapshot(ctx, tx, rec.Prev)
		if err != nil {
			return fmt.Errorf("record pass %s: %w", rec.PassID, err)
		}
		prevHash = sql.NullString{String: h, Valid: true}
	}

	base, err := marshalQueue(rec.BaseQueue)
	if err != nil {
		return fmt.Errorf("record pass %s: %w", rec.PassID, err)
	}
	queueHash, err := ir.QueueHash(rec.Queue)
	if err != nil {
		return fmt.Errorf("record pass %s: %w", rec.PassID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO passes
		(pass_id, save_id, seq, kind, divergence, rolled_back, appended, target, rewind,
		 prev_hash, snapshot_hash, base_queue, queue_len, queue_hash, commit_index, rule)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pass_id) DO NOTHING
	`,
		rec.PassID,
		rec.SaveID,
		rec.Seq,
		rec.Kind,
		rec.Divergence,
		rec.RolledBack,
		rec.Appended,
		rec.Target,
		rec.Rewind,
		prevHash,
		snapHash,
		base,
		len(rec.Queue),
		queueHash,
		rec.CommitIndex,
		rec.Rule,
	)
	if err != nil {
		return fmt.Errorf("record pass %s: %w", rec.PassID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record pass %s: commit: %w", rec.PassID, err)
	}
	return nil
}

func writeSnapshot(ctx context.Context, tx *sql.Tx, save *ir.Save) (string, error) {
	hash, err := ir.SnapshotHash(save)
	if err != nil {
		return "", err
	}
	body, err := marshalSave(save)
	if err != nil {
		return "", err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (hash, save_id, body)
		VALUES (?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, save.ID, body)
	if err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", hash, err)
	}
	return hash, nil
}
