package world

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNoSnapshot = errors.New("world: no persisted snapshot")

// Store persists terrain snapshots to a sqlite file so a restarted server
// resumes from its last saved world instead of the generated default.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if necessary initializes) the snapshot database at
// path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("world: open store %q: %w", path, err)
	}

	schema := `CREATE TABLE IF NOT EXISTS terrain_snapshots (
		revision INTEGER NOT NULL,
		snapshot BLOB NOT NULL,
		saved_at TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("world: init store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save appends one snapshot row. Older rows are kept for forensics; Load
// always takes the newest.
func (s *Store) Save(revision uint64, snapshot []byte, now time.Time) error {
	if len(snapshot) == 0 {
		return ErrEmptySnapshot
	}
	_, err := s.db.Exec(
		`INSERT INTO terrain_snapshots (revision, snapshot, saved_at) VALUES (?, ?, ?);`,
		int64(revision), snapshot, now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("world: save snapshot rev=%d: %w", revision, err)
	}
	return nil
}

// Load returns the most recently saved snapshot and its revision, or
// ErrNoSnapshot when the store is empty.
func (s *Store) Load() ([]byte, uint64, error) {
	row := s.db.QueryRow(
		`SELECT revision, snapshot FROM terrain_snapshots ORDER BY rowid DESC LIMIT 1;`,
	)
	var revision int64
	var snapshot []byte
	if err := row.Scan(&revision, &snapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNoSnapshot
		}
		return nil, 0, fmt.Errorf("world: load snapshot: %w", err)
	}
	return snapshot, uint64(revision), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
