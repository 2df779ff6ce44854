package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/planport/internal/models"
	"github.com/claude/planport/internal/structure"
)

// PlanMyPeakClient talks to a PlanMyPeak server over HTTP.
type PlanMyPeakClient struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewPlanMyPeakClient creates a client for the given server URL.
func NewPlanMyPeakClient(serverURL, apiKey string) *PlanMyPeakClient {
	return &PlanMyPeakClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// do sends one JSON request with up to 3 attempts and exponential backoff,
// decoding a 2xx response into out (when non-nil).
func (c *PlanMyPeakClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out != nil {
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("decoding response: %w", err)
				}
			}
			return nil
		}

		lastErr = &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
		// Client errors are not retryable.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return lastErr
		}
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}

// ListLibraries retrieves all libraries visible to the caller.
func (c *PlanMyPeakClient) ListLibraries(ctx context.Context) ([]models.PMPLibrary, error) {
	var libs []models.PMPLibrary
	if err := c.do(ctx, http.MethodGet, "/api/v1/libraries", nil, &libs); err != nil {
		return nil, fmt.Errorf("listing libraries: %w", err)
	}
	return libs, nil
}

// CreateLibrary creates a new library.
func (c *PlanMyPeakClient) CreateLibrary(ctx context.Context, name, sourceID string) (*models.PMPLibrary, error) {
	req := map[string]string{"name": name, "source_id": sourceID}
	var lib models.PMPLibrary
	if err := c.do(ctx, http.MethodPost, "/api/v1/libraries", req, &lib); err != nil {
		return nil, fmt.Errorf("creating library %q: %w", name, err)
	}
	return &lib, nil
}

// ClearLibrary deletes all workouts in a library (replace-mode conflict action).
func (c *PlanMyPeakClient) ClearLibrary(ctx context.Context, libraryID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/v1/libraries/"+libraryID+"/workouts", nil, nil); err != nil {
		return fmt.Errorf("clearing library %s: %w", libraryID, err)
	}
	return nil
}

// UploadWorkouts uploads a batch of workouts into a library. Returns the
// number of workouts the server reports as inserted.
func (c *PlanMyPeakClient) UploadWorkouts(ctx context.Context, libraryID string, workouts []models.PMPWorkout) (int, error) {
	var result struct {
		Inserted int `json:"inserted"`
		Skipped  int `json:"skipped"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/libraries/"+libraryID+"/workouts", workouts, &result); err != nil {
		return 0, fmt.Errorf("uploading workouts: %w", err)
	}
	return result.Inserted, nil
}

// pmpPayload is the transformed PlanMyPeak export payload.
type pmpPayload struct {
	LibraryName string
	SourceID    string
	Workouts    []models.PMPWorkout
}

// PlanMyPeakDestination exports a source library to a PlanMyPeak server.
// Construct one per export invocation; the payload built by Transform is
// held until Export runs.
type PlanMyPeakDestination struct {
	client      *PlanMyPeakClient
	state       *StateDB
	log         *slog.Logger
	items       []models.LibraryItem
	libraryName string
	conflict    ConflictAction
	fileName    string
	dryRun      bool

	payload pmpPayload
}

// NewPlanMyPeakDestination creates the PlanMyPeak destination. state may be
// nil when idempotent append tracking is not wanted; client may be nil in
// dry-run mode.
func NewPlanMyPeakDestination(client *PlanMyPeakClient, state *StateDB, items []models.LibraryItem, libraryName string, conflict ConflictAction, fileName string, dryRun bool, log *slog.Logger) *PlanMyPeakDestination {
	return &PlanMyPeakDestination{
		client:      client,
		state:       state,
		log:         log,
		items:       items,
		libraryName: libraryName,
		conflict:    conflict,
		fileName:    fileName,
		dryRun:      dryRun,
	}
}

func (d *PlanMyPeakDestination) Name() string     { return "planmypeak" }
func (d *PlanMyPeakDestination) Format() string   { return "library" }
func (d *PlanMyPeakDestination) FileName() string { return d.fileName }

// Transform converts library items into normalized PlanMyPeak workouts.
// Items whose structure cannot be parsed are exported without one, with a
// warning, so the rest of the library still goes through.
func (d *PlanMyPeakDestination) Transform(ctx context.Context) ([]Warning, error) {
	payload := pmpPayload{LibraryName: d.libraryName, SourceID: uuid.NewString()}
	var warnings []Warning

	for _, item := range d.items {
		actType := structure.MapWorkoutType(item.WorkoutTypeID)
		if actType == "Other" {
			warnings = append(warnings, Warning{
				Field:    "workoutTypeId",
				Message:  fmt.Sprintf("%s: unmapped workout type %d, defaulting to Other", item.ItemName, item.WorkoutTypeID),
				Severity: "warning",
			})
		}

		w := models.PMPWorkout{
			ID:       uuid.NewString(),
			Name:     item.ItemName,
			Type:     actType,
			SourceID: item.ItemID,
		}
		if w.SourceID == "" {
			w.SourceID = uuid.NewString()
		}
		if item.TSSPlanned != nil {
			w.BaseTSS = *item.TSSPlanned
		}
		if item.TotalTimePlanned != nil {
			w.BaseDurationMin = *item.TotalTimePlanned * 60
		}

		doc, ok := structure.BuildWorkoutDoc(item.Structure, actType)
		if !ok {
			warnings = append(warnings, Warning{
				Field:    "structure",
				Message:  fmt.Sprintf("%s: no parsable workout structure", item.ItemName),
				Severity: "warning",
			})
		} else {
			raw, err := json.Marshal(doc)
			if err != nil {
				return warnings, fmt.Errorf("encoding workout doc for %s: %w", item.ItemName, err)
			}
			w.Structure = raw
			if item.Structure != nil {
				w.Intensity = item.Structure.PrimaryIntensityMetric
			}
			if w.BaseDurationMin == 0 {
				w.BaseDurationMin = float64(docDurationSeconds(doc)) / 60
			}
		}

		payload.Workouts = append(payload.Workouts, w)
	}

	d.payload = payload
	return warnings, nil
}

// Validate checks the transformed payload against PlanMyPeak constraints.
func (d *PlanMyPeakDestination) Validate() Validation {
	v := Validation{IsValid: true}

	if d.payload.LibraryName == "" {
		v.Errors = append(v.Errors, "library name is required")
	}
	if len(d.payload.Workouts) == 0 {
		v.Errors = append(v.Errors, "no exportable workouts")
	}
	for _, w := range d.payload.Workouts {
		if w.Name == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("workout %s has no name", w.SourceID))
		}
		if w.Structure == nil {
			v.Warnings = append(v.Warnings, Warning{
				Field:    "structure",
				Message:  fmt.Sprintf("%s will be exported without a structured workout", w.Name),
				Severity: "warning",
			})
		}
	}

	v.IsValid = len(v.Errors) == 0
	return v
}

// Export resolves the destination library (honoring the conflict action) and
// uploads the workouts.
func (d *PlanMyPeakDestination) Export(ctx context.Context) (int, error) {
	if d.dryRun {
		d.log.Info("dry-run: would export to PlanMyPeak",
			"library", d.payload.LibraryName, "workouts", len(d.payload.Workouts))
		return len(d.payload.Workouts), nil
	}

	libs, err := d.client.ListLibraries(ctx)
	if err != nil {
		return 0, err
	}

	var library *models.PMPLibrary
	for i := range libs {
		if libs[i].Name == d.payload.LibraryName {
			library = &libs[i]
			break
		}
	}

	workouts := d.payload.Workouts
	switch {
	case library == nil:
		library, err = d.client.CreateLibrary(ctx, d.payload.LibraryName, d.payload.SourceID)
		if err != nil {
			return 0, err
		}
	case d.conflict == ConflictReplace:
		if err := d.client.ClearLibrary(ctx, library.ID); err != nil {
			return 0, err
		}
		if d.state != nil {
			if err := d.state.ClearDestination(d.Name()); err != nil {
				d.log.Warn("failed to clear export state", "error", err)
			}
		}
	case d.conflict == ConflictAppend:
		workouts = d.filterAlreadyExported(workouts)
	}

	for i := range workouts {
		workouts[i].LibraryID = library.ID
	}

	if len(workouts) == 0 {
		d.log.Info("nothing to export: all workouts already present", "library", d.payload.LibraryName)
		return 0, nil
	}

	count, err := d.client.UploadWorkouts(ctx, library.ID, workouts)
	if err != nil {
		return 0, err
	}

	if d.state != nil {
		for _, w := range workouts {
			if err := d.state.MarkExported(d.Name(), w.SourceID, w.ID); err != nil {
				d.log.Warn("failed to record export state", "source_id", w.SourceID, "error", err)
			}
		}
	}

	return count, nil
}

// filterAlreadyExported drops workouts the state DB says were already sent
// to this destination. Matching keys on the source item id.
func (d *PlanMyPeakDestination) filterAlreadyExported(workouts []models.PMPWorkout) []models.PMPWorkout {
	if d.state == nil {
		return workouts
	}
	kept := workouts[:0:0]
	for _, w := range workouts {
		destID, err := d.state.DestinationID(d.Name(), w.SourceID)
		if err != nil {
			d.log.Warn("state lookup failed", "source_id", w.SourceID, "error", err)
		}
		if destID != "" {
			continue
		}
		kept = append(kept, w)
	}
	return kept
}

// docDurationSeconds sums a workout doc's step durations, multiplying
// repeated sections by their repeat count.
func docDurationSeconds(doc *structure.WorkoutDoc) int {
	total := 0
	for _, section := range doc.Sections {
		repeat := section.RepeatCount
		if repeat < 1 {
			repeat = 1
		}
		sectionTotal := 0
		for _, item := range section.Items {
			sectionTotal += item.DurationSeconds
		}
		total += sectionTotal * repeat
	}
	return total
}
