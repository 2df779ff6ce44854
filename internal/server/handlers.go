package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/planport/internal/models"
	"github.com/claude/planport/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListLibraries(w http.ResponseWriter, r *http.Request) {
	libs, err := s.store.ListLibraries(r.Context())
	if err != nil {
		s.log.Error("listing libraries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if libs == nil {
		libs = []models.PMPLibrary{}
	}
	writeJSON(w, http.StatusOK, libs)
}

func (s *Server) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	lib, err := s.store.GetLibrary(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "library not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

func (s *Server) handleCreateLibrary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		SourceID string `json:"source_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	lib, err := s.store.CreateLibrary(r.Context(), req.Name, req.SourceID)
	if err != nil {
		s.log.Error("creating library", "name", req.Name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, lib)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "id")
	if _, err := s.store.GetLibrary(r.Context(), libraryID); errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "library not found"})
		return
	}

	workouts, err := s.store.ListWorkouts(r.Context(), libraryID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.PMPWorkout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleUploadWorkouts(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "id")
	if _, err := s.store.GetLibrary(r.Context(), libraryID); errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "library not found"})
		return
	}

	var workouts []models.PMPWorkout
	if err := json.NewDecoder(r.Body).Decode(&workouts); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	for _, wk := range workouts {
		if wk.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout name is required"})
			return
		}
	}

	inserted, skipped, err := s.store.InsertWorkouts(r.Context(), libraryID, workouts)
	if err != nil {
		s.log.Error("uploading workouts", "library_id", libraryID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if inserted > 0 {
		if err := s.store.TouchLibrary(r.Context(), libraryID); err != nil {
			s.log.Warn("touching library", "library_id", libraryID, "error", err)
		}
	}

	s.log.Info("workouts uploaded", "library_id", libraryID, "inserted", inserted, "skipped", skipped)
	writeJSON(w, http.StatusOK, map[string]int64{"inserted": inserted, "skipped": skipped})
}

func (s *Server) handleClearWorkouts(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "id")
	if _, err := s.store.GetLibrary(r.Context(), libraryID); errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "library not found"})
		return
	}

	deleted, err := s.store.ClearWorkouts(r.Context(), libraryID)
	if err != nil {
		s.log.Error("clearing workouts", "library_id", libraryID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("library cleared", "library_id", libraryID, "deleted", deleted)
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
