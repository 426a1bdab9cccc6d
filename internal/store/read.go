package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/reelsync/internal/ir"
)

// ErrSnapshotNotFound is returned by ReadSnapshot for an unknown hash.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Pass is a journaled pass as read back.
type Pass struct {
	ID           int64            `json:"id"`
	PassID       string           `json:"pass_id"`
	SaveID       int64            `json:"save_id"`
	Seq          int64            `json:"seq"`
	Kind         string           `json:"kind"`
	Divergence   int              `json:"divergence"`
	RolledBack   int              `json:"rolled_back"`
	Appended     int              `json:"appended"`
	Target       string           `json:"target,omitempty"`
	Rewind       string           `json:"rewind,omitempty"`
	PrevHash     string           `json:"prev_hash,omitempty"`
	SnapshotHash string           `json:"snapshot_hash"`
	BaseQueue    []ir.Instruction `json:"-"`
	QueueLen     int              `json:"queue_len"`
	QueueHash    string           `json:"queue_hash"`
	CommitIndex  int              `json:"commit_index"`
	Rule         string           `json:"rule,omitempty"`
}

// ReadPasses returns the journaled passes of a save in seq order.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ReadPasses(ctx context.Context, saveID int64) ([]Pass, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pass_id, save_id, seq, kind, divergence, rolled_back, appended, target, rewind,
		       prev_hash, snapshot_hash, base_queue, queue_len, queue_hash, commit_index, rule
		FROM passes
		WHERE save_id = ?
		ORDER BY seq ASC, id ASC
	`, saveID)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	passes := []Pass{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}
	return passes, nil
}

func scanPass(rows *sql.Rows) (Pass, error) {
	var (
		p    Pass
		prev sql.NullString
		base string
	)
	err := rows.Scan(&p.ID, &p.PassID, &p.SaveID, &p.Seq, &p.Kind, &p.Divergence, &p.RolledBack,
		&p.Appended, &p.Target, &p.Rewind, &prev, &p.SnapshotHash, &base, &p.QueueLen,
		&p.QueueHash, &p.CommitIndex, &p.Rule)
	if err != nil {
		return Pass{}, fmt.Errorf("scan pass: %w", err)
	}
	p.PrevHash = prev.String
	p.BaseQueue, err = unmarshalQueue(base)
	if err != nil {
		return Pass{}, fmt.Errorf("pass %s: %w", p.PassID, err)
	}
	return p, nil
}

// ReadSnapshot returns the save stored under hash.
func (s *Store) ReadSnapshot(ctx context.Context, hash string) (*ir.Save, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE hash = ?`, hash).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read snapshot %s: %w", hash, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", hash, err)
	}
	return unmarshalSave(body)
}

// ListSaveIDs returns every save id with at least one journaled pass.
func (s *Store) ListSaveIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT save_id FROM passes
		GROUP BY save_id
		ORDER BY MIN(seq) ASC, save_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query save ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan save id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate save ids: %w", err)
	}
	return ids, nil
}
