package archive

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Index records which topics already have a snapshot, so repeat runs skip
// them.
type Index struct {
	db *sql.DB
}

// OpenIndex opens the archive index at path, creating the schema when
// needed. The caller should Close it when done.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive index: %w", err)
	}

	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (i *Index) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS archived_topics (
		tid INTEGER PRIMARY KEY,
		url TEXT NOT NULL,
		archived_at DATETIME NOT NULL
	);`

	if _, err := i.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate archive index: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (i *Index) Close() error {
	return i.db.Close()
}

// IsArchived reports whether a snapshot of the topic was already taken.
func (i *Index) IsArchived(tid int64) (bool, error) {
	var n int
	err := i.db.QueryRow(`SELECT COUNT(1) FROM archived_topics WHERE tid = ?`, tid).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query archive index: %w", err)
	}
	return n > 0, nil
}

// MarkArchived records a topic snapshot.
func (i *Index) MarkArchived(tid int64, url string) error {
	_, err := i.db.Exec(
		`INSERT INTO archived_topics (tid, url, archived_at) VALUES (?, ?, ?)
		 ON CONFLICT (tid) DO NOTHING`,
		tid, url, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record archived topic %d: %w", tid, err)
	}
	return nil
}
