package mcp

import (
	"context"

	"github.com/claude/planport/internal/models"
	"github.com/claude/planport/internal/storage"
)

// DataSource abstracts the library store for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListLibraries(ctx context.Context) ([]models.PMPLibrary, error)
	GetLibrary(ctx context.Context, id string) (*models.PMPLibrary, error)
	ListWorkouts(ctx context.Context, libraryID string) ([]models.PMPWorkout, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
