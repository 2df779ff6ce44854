package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/planport/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ListLibraries returns all libraries, newest first.
func (db *DB) ListLibraries(ctx context.Context) ([]models.PMPLibrary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, owner_id, is_system, is_default, COALESCE(source_id, ''), created_at, updated_at
		 FROM libraries
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying libraries: %w", err)
	}
	defer rows.Close()

	var result []models.PMPLibrary
	for rows.Next() {
		var lib models.PMPLibrary
		if err := rows.Scan(&lib.ID, &lib.Name, &lib.OwnerID, &lib.IsSystem, &lib.IsDefault,
			&lib.SourceID, &lib.CreatedAt, &lib.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning library: %w", err)
		}
		result = append(result, lib)
	}
	return result, rows.Err()
}

// GetLibrary retrieves a single library by id.
func (db *DB) GetLibrary(ctx context.Context, id string) (*models.PMPLibrary, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, owner_id, is_system, is_default, COALESCE(source_id, ''), created_at, updated_at
		 FROM libraries
		 WHERE id = $1`, id)

	var lib models.PMPLibrary
	err := row.Scan(&lib.ID, &lib.Name, &lib.OwnerID, &lib.IsSystem, &lib.IsDefault,
		&lib.SourceID, &lib.CreatedAt, &lib.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	return &lib, nil
}

// CreateLibrary inserts a new library owned by the single local user.
func (db *DB) CreateLibrary(ctx context.Context, name, sourceID string) (*models.PMPLibrary, error) {
	now := time.Now().UTC()
	lib := models.PMPLibrary{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   1,
		SourceID:  sourceID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.Pool.Exec(ctx,
		`INSERT INTO libraries (id, name, owner_id, is_system, is_default, source_id, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		lib.ID, lib.Name, lib.OwnerID, lib.IsSystem, lib.IsDefault, lib.SourceID, lib.CreatedAt, lib.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting library: %w", err)
	}
	return &lib, nil
}

// TouchLibrary bumps a library's updated_at after its contents change.
func (db *DB) TouchLibrary(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE libraries SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("touching library: %w", err)
	}
	return nil
}
