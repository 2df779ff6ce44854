package models

import (
	"encoding/json"
	"time"
)

// PMPLibrary is a PlanMyPeak workout library.
type PMPLibrary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int       `json:"owner_id"`
	IsSystem  bool      `json:"is_system"`
	IsDefault bool      `json:"is_default"`
	SourceID  string    `json:"source_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PMPWorkout is a normalized PlanMyPeak workout. Structure holds the workout
// builder document as produced by the transcoder.
type PMPWorkout struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Intensity       string          `json:"intensity,omitempty"`
	Structure       json.RawMessage `json:"structure,omitempty"`
	BaseDurationMin float64         `json:"base_duration_min,omitempty"`
	BaseTSS         float64         `json:"base_tss,omitempty"`
	LibraryID       string          `json:"library_id"`
	SourceID        string          `json:"source_id"`
}
