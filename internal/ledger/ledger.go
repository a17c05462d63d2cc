// Package ledger persists the append-only record of already-mirrored
// external identifiers.
package ledger

import (
	"fmt"
	"os"
	"strings"
)

// Store is a file-backed dedup ledger: a headerless, single-column list of
// identifiers, one per line with a trailing separator. Identifiers are only
// ever appended. The file is opened and closed on every call; a single
// active process is assumed.
type Store struct {
	path string
}

// New returns a store for the ledger at path, creating it empty when
// absent.
func New(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close ledger %s: %w", path, err)
	}
	return &Store{path: path}, nil
}

// IsProcessed reports whether id was recorded before. The whole file is
// scanned on every call.
func (s *Store) IsProcessed(id string) (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("read ledger %s: %w", s.path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), ",")
		if line != "" && line == id {
			return true, nil
		}
	}
	return false, nil
}

// Record appends id unconditionally. Callers gate with IsProcessed to keep
// the no-duplicate-processing invariant.
func (s *Store) Record(id string) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger %s: %w", s.path, err)
	}
	if _, err := fmt.Fprintf(f, "%s,\n", id); err != nil {
		f.Close()
		return fmt.Errorf("append to ledger %s: %w", s.path, err)
	}
	return f.Close()
}
