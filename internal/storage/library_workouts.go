package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/planport/internal/models"
)

// InsertWorkouts batch-inserts workouts into a library. Rows whose
// (library_id, source_id) pair already exists are skipped, making re-uploads
// of the same source library idempotent. Returns counts of inserted and
// skipped rows.
func (db *DB) InsertWorkouts(ctx context.Context, libraryID string, workouts []models.PMPWorkout) (int64, int64, error) {
	if len(workouts) == 0 {
		return 0, 0, nil
	}

	query := `INSERT INTO workouts (id, library_id, name, type, intensity, structure, base_duration_min, base_tss, source_id) VALUES `
	args := make([]any, 0, len(workouts)*9)
	valueStrings := make([]string, 0, len(workouts))

	for i, w := range workouts {
		id := w.ID
		if id == "" {
			id = uuid.NewString()
		}
		sourceID := w.SourceID
		if sourceID == "" {
			sourceID = id
		}

		base := i * 9
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		args = append(args, id, libraryID, w.Name, w.Type, w.Intensity,
			w.Structure, w.BaseDurationMin, w.BaseTSS, sourceID)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT (library_id, source_id) DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("inserting workouts: %w", err)
	}

	inserted := tag.RowsAffected()
	return inserted, int64(len(workouts)) - inserted, nil
}

// ListWorkouts retrieves all workouts in a library, by name.
func (db *DB) ListWorkouts(ctx context.Context, libraryID string) ([]models.PMPWorkout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, library_id, name, type, COALESCE(intensity, ''), structure,
		 COALESCE(base_duration_min, 0), COALESCE(base_tss, 0), source_id
		 FROM workouts
		 WHERE library_id = $1
		 ORDER BY name ASC`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.PMPWorkout
	for rows.Next() {
		var w models.PMPWorkout
		if err := rows.Scan(&w.ID, &w.LibraryID, &w.Name, &w.Type, &w.Intensity,
			&w.Structure, &w.BaseDurationMin, &w.BaseTSS, &w.SourceID); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// ClearWorkouts deletes all workouts in a library. Returns the count removed.
func (db *DB) ClearWorkouts(ctx context.Context, libraryID string) (int64, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE library_id = $1`, libraryID)
	if err != nil {
		return 0, fmt.Errorf("clearing workouts: %w", err)
	}
	return tag.RowsAffected(), nil
}
