package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/planport/internal/models"
)

// Store is the library persistence the handlers need. *storage.DB satisfies it.
type Store interface {
	ListLibraries(ctx context.Context) ([]models.PMPLibrary, error)
	GetLibrary(ctx context.Context, id string) (*models.PMPLibrary, error)
	CreateLibrary(ctx context.Context, name, sourceID string) (*models.PMPLibrary, error)
	TouchLibrary(ctx context.Context, id string) error
	ListWorkouts(ctx context.Context, libraryID string) ([]models.PMPWorkout, error)
	InsertWorkouts(ctx context.Context, libraryID string, workouts []models.PMPWorkout) (int64, int64, error)
	ClearWorkouts(ctx context.Context, libraryID string) (int64, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  Store
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1/libraries", func(r chi.Router) {
		// Reads are open (tsnet handles access); writes need the API key.
		r.Get("/", s.handleListLibraries)
		r.Get("/{id}", s.handleGetLibrary)
		r.Get("/{id}/workouts", s.handleListWorkouts)

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/", s.handleCreateLibrary)
			r.Post("/{id}/workouts", s.handleUploadWorkouts)
			r.Delete("/{id}/workouts", s.handleClearWorkouts)
		})
	})
}
