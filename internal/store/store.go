package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration is one user_version step applied after schema.sql.
type migration struct {
	version int
	name    string
	stmt    string
}

var migrations = []migration{
	{1, "passes by save", `CREATE INDEX IF NOT EXISTS idx_passes_save_seq ON passes(save_id, seq)`},
	{2, "passes by snapshot", `CREATE INDEX IF NOT EXISTS idx_passes_snapshot ON passes(snapshot_hash)`},
}

var currentSchemaVersion = migrations[len(migrations)-1].version

// Store is the sync journal: content-addressed save snapshots plus one row
// per compiled pass. The engine is its only writer; the CLI reads it for
// trace and replay.
type Store struct {
	db *sql.DB
}

// dsn carries the connection pragmas so every pooled connection gets them.
func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_foreign_keys", "on")
	return "file:" + path + "?" + q.Encode()
}

// Open opens the journal at path, creating it when missing, and brings the
// schema up to date. Opening an existing journal twice is harmless.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection. Safe on a zero Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LastSeq returns the highest pass seq in the journal, or 0 when empty.
// The engine resumes its clock from here.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM passes`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read last seq: %w", err)
	}
	return seq.Int64, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("base schema: %w", err)
	}

	var have int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&have); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= have {
			continue
		}
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("v%d %s: %w", m.version, m.name, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, m.version)); err != nil {
			return fmt.Errorf("v%d user_version: %w", m.version, err)
		}
	}
	return nil
}

func (s *Store) verifyPragma(name, want string) error {
	var got string
	if err := s.db.QueryRow(`PRAGMA ` + name).Scan(&got); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if got != want {
		return fmt.Errorf("%s = %q, want %q", name, got, want)
	}
	return nil
}
