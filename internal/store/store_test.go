package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/testutil"
)

// createTestStore creates a journal in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(passID string, seq int64, prev, snap *ir.Save, queue []ir.Instruction) PassRecord {
	return PassRecord{
		PassID:      passID,
		Seq:         seq,
		SaveID:      snap.ID,
		Kind:        "append",
		Appended:    len(snap.Timeline.Lines),
		Prev:        prev,
		Snapshot:    snap,
		Queue:       queue,
		CommitIndex: -1,
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"snapshots", "passes"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %q", table)
	}

	for _, idx := range []string{"idx_passes_save_seq", "idx_passes_snapshot"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&name)
		assert.NoError(t, err, "index %q", idx)
	}

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestRecordPass_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	first := testutil.NewSave(7, testutil.Start("a01_a001_a001"), testutil.Play("01_001_001"))
	second := testutil.NewSave(7,
		testutil.Start("a01_a001_a001"),
		testutil.Play("01_001_001"),
		ir.ValueChanged{Key: "trust", Value: ir.Int(2)},
		testutil.Play("01_001_002"),
	)
	testutil.WithActions(second, ir.UIButton{Label: "Stay", Key: "stay"})

	q1 := []ir.Instruction{{StoryletID: "a01_a001_a001", VideoID: "01_001_001"}}
	q2 := append(ir.CloneQueue(q1), ir.Instruction{StoryletID: "a01_a001_a001", VideoID: "01_001_002", Loop: true})

	require.NoError(t, s.RecordPass(ctx, testRecord("p-1", 1, nil, first, q1)))
	rec := testRecord("p-2", 2, first, second, q2)
	rec.BaseQueue = q1
	rec.Rule = "ui_button"
	require.NoError(t, s.RecordPass(ctx, rec))

	passes, err := s.ReadPasses(ctx, 7)
	require.NoError(t, err)
	require.Len(t, passes, 2)

	assert.Equal(t, "p-1", passes[0].PassID)
	assert.Empty(t, passes[0].PrevHash)
	assert.Equal(t, []ir.Instruction{}, passes[0].BaseQueue)
	assert.Equal(t, -1, passes[0].CommitIndex)

	p := passes[1]
	assert.Equal(t, int64(2), p.Seq)
	assert.Equal(t, "ui_button", p.Rule)
	assert.Equal(t, 2, p.QueueLen)
	assert.Equal(t, ir.MustQueueHash(q2), p.QueueHash)
	assert.Equal(t, passes[0].SnapshotHash, p.PrevHash)
	assert.Equal(t, ir.QueueVideos(q1), ir.QueueVideos(p.BaseQueue))

	got, err := s.ReadSnapshot(ctx, p.SnapshotHash)
	require.NoError(t, err)
	wantHash, err := ir.SnapshotHash(second)
	require.NoError(t, err)
	gotHash, err := ir.SnapshotHash(got)
	require.NoError(t, err)
	assert.Equal(t, wantHash, gotHash)
	assert.Len(t, got.Timeline.Actions, 1)
}

func TestRecordPass_DuplicatePassIDIgnored(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	snap := testutil.NewSave(1, testutil.Play("01_001_001"))

	require.NoError(t, s.RecordPass(ctx, testRecord("p-1", 1, nil, snap, nil)))
	require.NoError(t, s.RecordPass(ctx, testRecord("p-1", 2, nil, snap, nil)))

	passes, err := s.ReadPasses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, int64(1), passes[0].Seq)
}

func TestRecordPass_RequiresSnapshot(t *testing.T) {
	err := createTestStore(t).RecordPass(context.Background(), PassRecord{PassID: "p-1"})
	assert.Error(t, err)
}

func TestReadPasses_OrderedBySeq(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	snap := testutil.NewSave(3, testutil.Play("01_001_001"))

	for _, seq := range []int64{5, 2, 9} {
		require.NoError(t, s.RecordPass(ctx, testRecord(fmt.Sprintf("p-%d", seq), seq, nil, snap, nil)))
	}

	passes, err := s.ReadPasses(ctx, 3)
	require.NoError(t, err)
	var seqs []int64
	for _, p := range passes {
		seqs = append(seqs, p.Seq)
	}
	assert.Equal(t, []int64{2, 5, 9}, seqs)

	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), last)
}

func TestReadPasses_EmptyIsNotNil(t *testing.T) {
	passes, err := createTestStore(t).ReadPasses(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, passes)
	assert.Empty(t, passes)
}

func TestReadSnapshot_NotFound(t *testing.T) {
	_, err := createTestStore(t).ReadSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestListSaveIDs(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)

	require.NoError(t, s.RecordPass(ctx, testRecord("p-1", 1, nil, testutil.NewSave(9), nil)))
	require.NoError(t, s.RecordPass(ctx, testRecord("p-2", 2, nil, testutil.NewSave(4), nil)))
	require.NoError(t, s.RecordPass(ctx, testRecord("p-3", 3, nil, testutil.NewSave(9), nil)))

	ids, err := s.ListSaveIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 4}, ids)
}
