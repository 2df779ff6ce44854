package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/planport/internal/models"
	"github.com/claude/planport/internal/storage"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	libraries []models.PMPLibrary
	workouts  map[string][]models.PMPWorkout
}

func newFakeStore() *fakeStore {
	return &fakeStore{workouts: map[string][]models.PMPWorkout{}}
}

func (f *fakeStore) ListLibraries(ctx context.Context) ([]models.PMPLibrary, error) {
	return f.libraries, nil
}

func (f *fakeStore) GetLibrary(ctx context.Context, id string) (*models.PMPLibrary, error) {
	for i := range f.libraries {
		if f.libraries[i].ID == id {
			return &f.libraries[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) CreateLibrary(ctx context.Context, name, sourceID string) (*models.PMPLibrary, error) {
	lib := models.PMPLibrary{
		ID: "lib-" + name, Name: name, OwnerID: 1, SourceID: sourceID,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.libraries = append(f.libraries, lib)
	return &lib, nil
}

func (f *fakeStore) TouchLibrary(ctx context.Context, id string) error { return nil }

func (f *fakeStore) ListWorkouts(ctx context.Context, libraryID string) ([]models.PMPWorkout, error) {
	return f.workouts[libraryID], nil
}

func (f *fakeStore) InsertWorkouts(ctx context.Context, libraryID string, workouts []models.PMPWorkout) (int64, int64, error) {
	existing := map[string]bool{}
	for _, w := range f.workouts[libraryID] {
		existing[w.SourceID] = true
	}
	var inserted, skipped int64
	for _, w := range workouts {
		if existing[w.SourceID] {
			skipped++
			continue
		}
		w.LibraryID = libraryID
		f.workouts[libraryID] = append(f.workouts[libraryID], w)
		inserted++
	}
	return inserted, skipped, nil
}

func (f *fakeStore) ClearWorkouts(ctx context.Context, libraryID string) (int64, error) {
	n := int64(len(f.workouts[libraryID]))
	f.workouts[libraryID] = nil
	return n, nil
}

func newTestServer(store Store) *Server {
	return New(store, "secret", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleListLibrariesEmpty(t *testing.T) {
	s := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/libraries", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// Empty list serializes as [], not null.
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestHandleCreateLibrary(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(store)

	body := bytes.NewBufferString(`{"name":"My Library","source_id":"src-lib"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/libraries", body)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var lib models.PMPLibrary
	if err := json.NewDecoder(rec.Body).Decode(&lib); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if lib.Name != "My Library" || lib.SourceID != "src-lib" {
		t.Errorf("library = %+v", lib)
	}
}

func TestHandleCreateLibraryRequiresKey(t *testing.T) {
	s := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/libraries", bytes.NewBufferString(`{"name":"X"}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandleCreateLibraryRejectsUnnamed(t *testing.T) {
	s := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/libraries", bytes.NewBufferString(`{"source_id":"x"}`))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleUploadWorkouts(t *testing.T) {
	store := newFakeStore()
	store.libraries = []models.PMPLibrary{{ID: "lib-1", Name: "My Library"}}
	s := newTestServer(store)

	payload := `[{"name":"Sweet spot","type":"Ride","source_id":"src-1"},{"name":"Easy run","type":"Run","source_id":"src-2"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/libraries/lib-1/workouts", bytes.NewBufferString(payload))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var result map[string]int64
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result["inserted"] != 2 || result["skipped"] != 0 {
		t.Errorf("result = %v, want 2 inserted", result)
	}

	// Re-uploading the same source ids skips instead of duplicating.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/libraries/lib-1/workouts", bytes.NewBufferString(payload))
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result["inserted"] != 0 || result["skipped"] != 2 {
		t.Errorf("result = %v, want 2 skipped", result)
	}
}

func TestHandleUploadWorkoutsUnknownLibrary(t *testing.T) {
	s := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/libraries/nope/workouts", bytes.NewBufferString(`[]`))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleClearWorkouts(t *testing.T) {
	store := newFakeStore()
	store.libraries = []models.PMPLibrary{{ID: "lib-1", Name: "My Library"}}
	store.workouts["lib-1"] = []models.PMPWorkout{{Name: "A", SourceID: "src-1"}}
	s := newTestServer(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/libraries/lib-1/workouts", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.workouts["lib-1"]) != 0 {
		t.Error("workouts were not cleared")
	}

	var result map[string]int64
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result["deleted"] != 1 {
		t.Errorf("deleted = %d, want 1", result["deleted"])
	}
}

func TestHandleGetLibraryNotFound(t *testing.T) {
	s := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/libraries/nope", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
