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

	"github.com/claude/planport/internal/models"
	"github.com/claude/planport/internal/structure"
)

// ICUFolder is an Intervals.icu workout folder (or PLAN folder).
type ICUFolder struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ICUFolderCreate is the folder creation payload. PLAN folders additionally
// carry a local start date and plan metadata.
type ICUFolderCreate struct {
	Type           string   `json:"type,omitempty"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	StartDateLocal string   `json:"start_date_local,omitempty"`
	Visibility     string   `json:"visibility,omitempty"`
	DurationWeeks  int      `json:"duration_weeks,omitempty"`
	NumWorkouts    int      `json:"num_workouts,omitempty"`
	ActivityTypes  []string `json:"activity_types,omitempty"`
	WorkoutTargets []string `json:"workout_targets,omitempty"`
}

// ICUWorkoutCreate is one entry in a bulk workout upload. Plain workouts use
// Category WORKOUT; plan folders also hold NOTE entries and RACE_A events,
// placed by zero-based day offset from the plan start.
type ICUWorkoutCreate struct {
	Category        string                `json:"category,omitempty"`
	Type            string                `json:"type"`
	Name            string                `json:"name"`
	ExternalID      string                `json:"external_id,omitempty"`
	Description     string                `json:"description,omitempty"`
	Color           string                `json:"color,omitempty"`
	FolderID        int                   `json:"folder_id,omitempty"`
	WorkoutDoc      *structure.WorkoutDoc `json:"workout_doc,omitempty"`
	MovingTime      int                   `json:"moving_time,omitempty"`
	ICUTrainingLoad int                   `json:"icu_training_load,omitempty"`
	Day             *int                  `json:"day,omitempty"`
	ForWeek         *int                  `json:"for_week,omitempty"`
}

// IntervalsClient talks to the Intervals.icu API using HTTP basic auth with
// the literal username API_KEY.
type IntervalsClient struct {
	baseURL    string
	athleteID  string
	apiKey     string
	httpClient *http.Client
}

// NewIntervalsClient creates a client for the given athlete.
func NewIntervalsClient(baseURL, athleteID, apiKey string) *IntervalsClient {
	if baseURL == "" {
		baseURL = "https://intervals.icu"
	}
	return &IntervalsClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		athleteID: athleteID,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *IntervalsClient) athletePath(suffix string) string {
	return "/api/v1/athlete/" + c.athleteID + suffix
}

// do sends one JSON request, decoding a 2xx response into out (when non-nil).
// Non-2xx responses come back as *HTTPError.
func (c *IntervalsClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth("API_KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// ListFolders retrieves the athlete's workout folders and plans.
func (c *IntervalsClient) ListFolders(ctx context.Context) ([]ICUFolder, error) {
	var folders []ICUFolder
	if err := c.do(ctx, http.MethodGet, c.athletePath("/folders"), nil, &folders); err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	return folders, nil
}

// CreateFolder creates a folder or PLAN folder.
func (c *IntervalsClient) CreateFolder(ctx context.Context, folder ICUFolderCreate) (*ICUFolder, error) {
	var created ICUFolder
	if err := c.do(ctx, http.MethodPost, c.athletePath("/folders"), folder, &created); err != nil {
		return nil, fmt.Errorf("creating folder %q: %w", folder.Name, err)
	}
	return &created, nil
}

// DeleteFolder deletes a folder and its contents (replace-mode conflict action).
func (c *IntervalsClient) DeleteFolder(ctx context.Context, folderID int) error {
	if err := c.do(ctx, http.MethodDelete, c.athletePath(fmt.Sprintf("/folders/%d", folderID)), nil, nil); err != nil {
		return fmt.Errorf("deleting folder %d: %w", folderID, err)
	}
	return nil
}

// CreateWorkoutsBulk creates workouts (and NOTE/RACE entries) in one call.
// Returns the number of entries created.
func (c *IntervalsClient) CreateWorkoutsBulk(ctx context.Context, entries []ICUWorkoutCreate) (int, error) {
	var created []json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.athletePath("/workouts/bulk"), entries, &created); err != nil {
		return 0, fmt.Errorf("bulk-creating workouts: %w", err)
	}
	if len(created) > 0 {
		return len(created), nil
	}
	return len(entries), nil
}

// icuPayload is the transformed Intervals.icu library export payload.
type icuPayload struct {
	Folder  ICUFolderCreate
	Entries []ICUWorkoutCreate
}

// IntervalsDestination exports a source library to an Intervals.icu folder.
// Construct one per export invocation.
type IntervalsDestination struct {
	client     *IntervalsClient
	state      *StateDB
	log        *slog.Logger
	items      []models.LibraryItem
	folderName string
	conflict   ConflictAction
	fileName   string
	dryRun     bool

	payload icuPayload
}

// NewIntervalsDestination creates the Intervals.icu library destination.
func NewIntervalsDestination(client *IntervalsClient, state *StateDB, items []models.LibraryItem, folderName string, conflict ConflictAction, fileName string, dryRun bool, log *slog.Logger) *IntervalsDestination {
	return &IntervalsDestination{
		client:     client,
		state:      state,
		log:        log,
		items:      items,
		folderName: folderName,
		conflict:   conflict,
		fileName:   fileName,
		dryRun:     dryRun,
	}
}

func (d *IntervalsDestination) Name() string     { return "intervalsicu" }
func (d *IntervalsDestination) Format() string   { return "library" }
func (d *IntervalsDestination) FileName() string { return d.fileName }

// Transform converts library items into Intervals.icu workout entries:
// rendered interval text plus the structured workout_doc, with the composed
// description carrying text, notes and coach comments.
func (d *IntervalsDestination) Transform(ctx context.Context) ([]Warning, error) {
	payload := icuPayload{Folder: ICUFolderCreate{Name: d.folderName}}
	var warnings []Warning

	for _, item := range d.items {
		entry, ws := transformLibraryItem(item)
		warnings = append(warnings, ws...)
		payload.Entries = append(payload.Entries, entry)
	}

	d.payload = payload
	return warnings, nil
}

// transformLibraryItem builds one WORKOUT entry from a library item. Shared
// by the library and plan destinations.
func transformLibraryItem(item models.LibraryItem) (ICUWorkoutCreate, []Warning) {
	var warnings []Warning

	actType := structure.MapWorkoutType(item.WorkoutTypeID)
	if actType == "Other" {
		warnings = append(warnings, Warning{
			Field:    "workoutTypeId",
			Message:  fmt.Sprintf("%s: unmapped workout type %d, defaulting to Other", item.ItemName, item.WorkoutTypeID),
			Severity: "warning",
		})
	}

	entry := ICUWorkoutCreate{
		Category:   "WORKOUT",
		Type:       actType,
		Name:       item.ItemName,
		ExternalID: item.ItemID,
	}
	if item.TSSPlanned != nil {
		entry.ICUTrainingLoad = int(*item.TSSPlanned)
	}
	if item.TotalTimePlanned != nil {
		entry.MovingTime = int(*item.TotalTimePlanned * 3600)
	}

	var rendered string
	if text, ok := structure.RenderText(item.Structure); ok {
		rendered = text
	} else if item.Structure != nil {
		warnings = append(warnings, Warning{
			Field:    "structure",
			Message:  fmt.Sprintf("%s: no parsable workout structure", item.ItemName),
			Severity: "warning",
		})
	}
	entry.Description = structure.ComposeDescription(rendered, item.Description, item.CoachComments)

	if doc, ok := structure.BuildWorkoutDoc(item.Structure, actType); ok {
		entry.WorkoutDoc = doc
		if entry.MovingTime == 0 {
			entry.MovingTime = docDurationSeconds(doc)
		}
	}

	return entry, warnings
}

// Validate checks the transformed payload against Intervals.icu constraints.
func (d *IntervalsDestination) Validate() Validation {
	v := Validation{IsValid: true}

	if d.payload.Folder.Name == "" {
		v.Errors = append(v.Errors, "folder name is required")
	}
	if len(d.payload.Entries) == 0 {
		v.Errors = append(v.Errors, "no exportable workouts")
	}
	for _, e := range d.payload.Entries {
		if e.Name == "" {
			v.Errors = append(v.Errors, "workout has no name")
		}
		if e.WorkoutDoc == nil {
			v.Warnings = append(v.Warnings, Warning{
				Field:    "workout_doc",
				Message:  fmt.Sprintf("%s will be exported as description-only", e.Name),
				Severity: "warning",
			})
		}
	}

	v.IsValid = len(v.Errors) == 0
	return v
}

// Export resolves the destination folder and bulk-creates the entries.
func (d *IntervalsDestination) Export(ctx context.Context) (int, error) {
	if d.dryRun {
		d.log.Info("dry-run: would export to Intervals.icu",
			"folder", d.payload.Folder.Name, "entries", len(d.payload.Entries))
		return len(d.payload.Entries), nil
	}

	folderID, err := resolveFolder(ctx, d.client, d.state, d.payload.Folder, d.conflict, d.Name(), d.log)
	if err != nil {
		return 0, err
	}

	entries := d.payload.Entries
	if d.conflict == ConflictAppend && d.state != nil {
		entries = filterExportedEntries(d.state, d.Name(), entries, d.log)
	}
	if len(entries) == 0 {
		d.log.Info("nothing to export: all workouts already present", "folder", d.payload.Folder.Name)
		return 0, nil
	}

	for i := range entries {
		entries[i].FolderID = folderID
	}

	count, err := d.client.CreateWorkoutsBulk(ctx, entries)
	if err != nil {
		return 0, err
	}

	if d.state != nil {
		for _, e := range entries {
			if err := d.state.MarkExported(d.Name(), externalKey(e), fmt.Sprintf("%d/%s", folderID, e.Name)); err != nil {
				d.log.Warn("failed to record export state", "name", e.Name, "error", err)
			}
		}
	}

	return count, nil
}

// resolveFolder finds or creates the destination folder, applying the
// conflict action when a folder with the same name already exists.
func resolveFolder(ctx context.Context, client *IntervalsClient, state *StateDB, folder ICUFolderCreate, conflict ConflictAction, destName string, log *slog.Logger) (int, error) {
	folders, err := client.ListFolders(ctx)
	if err != nil {
		return 0, err
	}

	for _, f := range folders {
		if f.Name != folder.Name {
			continue
		}
		if conflict == ConflictReplace {
			if err := client.DeleteFolder(ctx, f.ID); err != nil {
				return 0, err
			}
			if state != nil {
				if err := state.ClearDestination(destName); err != nil {
					log.Warn("failed to clear export state", "error", err)
				}
			}
			break
		}
		// Append: reuse the existing folder untouched.
		return f.ID, nil
	}

	created, err := client.CreateFolder(ctx, folder)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

// filterExportedEntries drops entries already recorded in the state DB.
// Entries match on their external id, falling back to name when the source
// item carried no id.
func filterExportedEntries(state *StateDB, destName string, entries []ICUWorkoutCreate, log *slog.Logger) []ICUWorkoutCreate {
	kept := entries[:0:0]
	for _, e := range entries {
		destID, err := state.DestinationID(destName, externalKey(e))
		if err != nil {
			log.Warn("state lookup failed", "name", e.Name, "error", err)
		}
		if destID != "" {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func externalKey(e ICUWorkoutCreate) string {
	if e.ExternalID != "" {
		return e.ExternalID
	}
	return e.Name
}
