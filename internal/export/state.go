package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB records which source items have already been exported to which
// destination, keyed by destination id + source item id. Append-mode exports
// use it to skip items that already exist at the destination instead of
// duplicating them.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS exported_items (
		destination TEXT NOT NULL,
		source_id   TEXT NOT NULL,
		dest_id     TEXT NOT NULL,
		exported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (destination, source_id)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// DestinationID returns the recorded destination id for a source item, or
// empty string when the item has not been exported to that destination.
func (s *StateDB) DestinationID(destination, sourceID string) (string, error) {
	var destID string
	err := s.db.QueryRow(
		`SELECT dest_id FROM exported_items WHERE destination = ? AND source_id = ?`,
		destination, sourceID,
	).Scan(&destID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return destID, nil
}

// MarkExported records a source item's destination id.
func (s *StateDB) MarkExported(destination, sourceID, destID string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO exported_items (destination, source_id, dest_id) VALUES (?, ?, ?)`,
		destination, sourceID, destID,
	)
	return err
}

// ClearDestination forgets all exported items for a destination. Used after
// a replace-mode export wipes the destination library.
func (s *StateDB) ClearDestination(destination string) error {
	_, err := s.db.Exec(`DELETE FROM exported_items WHERE destination = ?`, destination)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
