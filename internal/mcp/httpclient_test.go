package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/planport/internal/models"
)

func TestHTTPClientListLibraries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/libraries" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]models.PMPLibrary{{ID: "lib-1", Name: "My Library"}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	libs, err := c.ListLibraries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(libs) != 1 || libs[0].ID != "lib-1" {
		t.Errorf("libs = %+v", libs)
	}
}

func TestHTTPClientListWorkouts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/libraries/lib-1/workouts" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]models.PMPWorkout{{ID: "w1", Name: "Sweet spot"}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	workouts, err := c.ListWorkouts(context.Background(), "lib-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 1 || workouts[0].Name != "Sweet spot" {
		t.Errorf("workouts = %+v", workouts)
	}
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"library not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if _, err := c.GetLibrary(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
