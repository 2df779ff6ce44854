package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/claude/planport/internal/models"
)

const dayLayout = "2006-01-02"

// PlanPlacement is a whole training plan mapped onto a PLAN folder: every
// workout, note and event carries a zero-based day offset from the plan's
// local start date.
type PlanPlacement struct {
	Folder         ICUFolderCreate
	Entries        []ICUWorkoutCreate
	StartDateLocal string
}

// PlacePlan computes per-item day offsets for a training plan. The start
// date is the plan's own start date when set, otherwise the earliest
// scheduled item date; a plan with no dated items is an error, never a
// guess. Items dated before the start are rejected with a warning rather
// than clamped to day zero.
func PlacePlan(plan *models.TrainingPlan, folderName string) (*PlanPlacement, []Warning, error) {
	var warnings []Warning

	start, err := planStartDate(plan)
	if err != nil {
		return nil, nil, err
	}

	name := folderName
	if name == "" {
		name = plan.Title
	}

	placement := &PlanPlacement{
		StartDateLocal: start.Format(dayLayout),
	}

	maxDay := 0
	activitySet := map[string]bool{}

	for _, w := range plan.Workouts {
		day, ok := placeDay(start, w.WorkoutDay, w.ItemName, &warnings)
		if !ok {
			continue
		}
		entry, ws := transformLibraryItem(w.LibraryItem)
		warnings = append(warnings, ws...)
		week := day / 7
		entry.Day = &day
		entry.ForWeek = &week
		placement.Entries = append(placement.Entries, entry)
		activitySet[entry.Type] = true
		if day > maxDay {
			maxDay = day
		}
	}

	for _, n := range plan.Notes {
		day, ok := placeDay(start, n.NoteDay, n.Name, &warnings)
		if !ok {
			continue
		}
		placement.Entries = append(placement.Entries, ICUWorkoutCreate{
			Type:        "NOTE",
			Name:        n.Name,
			Description: n.Description,
			Color:       n.Color,
			Day:         &day,
		})
		if day > maxDay {
			maxDay = day
		}
	}

	for _, e := range plan.Events {
		day, ok := placeDay(start, e.EventDay, e.Name, &warnings)
		if !ok {
			continue
		}
		eventType := e.EventType
		if eventType == "" {
			eventType = "Other"
		}
		placement.Entries = append(placement.Entries, ICUWorkoutCreate{
			Category:    "RACE_A",
			Type:        eventType,
			Name:        e.Name,
			Description: e.Description,
			Day:         &day,
		})
		if day > maxDay {
			maxDay = day
		}
	}

	activityTypes := make([]string, 0, len(activitySet))
	for t := range activitySet {
		activityTypes = append(activityTypes, t)
	}
	sort.Strings(activityTypes)

	numWorkouts := 0
	for _, e := range placement.Entries {
		if e.Category == "WORKOUT" {
			numWorkouts++
		}
	}

	placement.Folder = ICUFolderCreate{
		Type:           "PLAN",
		Name:           name,
		StartDateLocal: placement.StartDateLocal,
		DurationWeeks:  maxDay/7 + 1,
		NumWorkouts:    numWorkouts,
		ActivityTypes:  activityTypes,
	}

	return placement, warnings, nil
}

// planStartDate resolves the plan's anchor date.
func planStartDate(plan *models.TrainingPlan) (time.Time, error) {
	if plan.StartDate != "" {
		start, err := time.Parse(dayLayout, plan.StartDate)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing plan start date %q: %w", plan.StartDate, err)
		}
		return start, nil
	}

	var earliest time.Time
	consider := func(dateStr string) {
		if dateStr == "" {
			return
		}
		d, err := time.Parse(dayLayout, dateStr)
		if err != nil {
			return
		}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}
	for _, w := range plan.Workouts {
		consider(w.WorkoutDay)
	}
	for _, n := range plan.Notes {
		consider(n.NoteDay)
	}
	for _, e := range plan.Events {
		consider(e.EventDay)
	}

	if earliest.IsZero() {
		return time.Time{}, fmt.Errorf("plan %q has no dated items: cannot determine start date", plan.Title)
	}
	return earliest, nil
}

// placeDay computes an item's zero-based day offset. Out-of-range items
// (undated, unparsable, or before the plan start) are rejected with a
// warning and ok=false.
func placeDay(start time.Time, dateStr, itemName string, warnings *[]Warning) (int, bool) {
	if dateStr == "" {
		*warnings = append(*warnings, Warning{
			Field:    "day",
			Message:  fmt.Sprintf("%s: no scheduled date, skipped", itemName),
			Severity: "warning",
		})
		return 0, false
	}
	d, err := time.Parse(dayLayout, dateStr)
	if err != nil {
		*warnings = append(*warnings, Warning{
			Field:    "day",
			Message:  fmt.Sprintf("%s: unparsable date %q, skipped", itemName, dateStr),
			Severity: "warning",
		})
		return 0, false
	}

	day := int(d.Sub(start).Hours() / 24)
	if day < 0 {
		*warnings = append(*warnings, Warning{
			Field:    "day",
			Message:  fmt.Sprintf("%s: scheduled %s before plan start %s, skipped", itemName, dateStr, start.Format(dayLayout)),
			Severity: "warning",
		})
		return 0, false
	}
	return day, true
}

// IntervalsPlanDestination exports a whole training plan to an Intervals.icu
// PLAN folder.
type IntervalsPlanDestination struct {
	client     *IntervalsClient
	state      *StateDB
	log        *slog.Logger
	plan       *models.TrainingPlan
	folderName string
	conflict   ConflictAction
	fileName   string
	dryRun     bool

	placement *PlanPlacement
}

// NewIntervalsPlanDestination creates the Intervals.icu plan destination.
func NewIntervalsPlanDestination(client *IntervalsClient, state *StateDB, plan *models.TrainingPlan, folderName string, conflict ConflictAction, fileName string, dryRun bool, log *slog.Logger) *IntervalsPlanDestination {
	return &IntervalsPlanDestination{
		client:     client,
		state:      state,
		log:        log,
		plan:       plan,
		folderName: folderName,
		conflict:   conflict,
		fileName:   fileName,
		dryRun:     dryRun,
	}
}

func (d *IntervalsPlanDestination) Name() string     { return "intervalsicu" }
func (d *IntervalsPlanDestination) Format() string   { return "plan" }
func (d *IntervalsPlanDestination) FileName() string { return d.fileName }

// Transform runs the calendar placement engine over the plan.
func (d *IntervalsPlanDestination) Transform(ctx context.Context) ([]Warning, error) {
	placement, warnings, err := PlacePlan(d.plan, d.folderName)
	if err != nil {
		return warnings, err
	}
	d.placement = placement
	return warnings, nil
}

// Validate checks the placement against PLAN folder constraints.
func (d *IntervalsPlanDestination) Validate() Validation {
	v := Validation{IsValid: true}

	if d.placement.Folder.Name == "" {
		v.Errors = append(v.Errors, "plan folder name is required")
	}
	if d.placement.StartDateLocal == "" {
		v.Errors = append(v.Errors, "plan start date is required")
	}
	if len(d.placement.Entries) == 0 {
		v.Errors = append(v.Errors, "no placeable plan items")
	}
	for _, e := range d.placement.Entries {
		if e.Day == nil {
			v.Errors = append(v.Errors, fmt.Sprintf("%s has no day offset", e.Name))
		} else if *e.Day < 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("%s has a negative day offset", e.Name))
		}
		if e.Name == "" {
			v.Errors = append(v.Errors, "plan item has no name")
		}
	}

	v.IsValid = len(v.Errors) == 0
	return v
}

// Export creates the PLAN folder (honoring the conflict action) and places
// all entries into it by day offset.
func (d *IntervalsPlanDestination) Export(ctx context.Context) (int, error) {
	if d.dryRun {
		d.log.Info("dry-run: would export plan to Intervals.icu",
			"folder", d.placement.Folder.Name,
			"start_date_local", d.placement.StartDateLocal,
			"entries", len(d.placement.Entries))
		return len(d.placement.Entries), nil
	}

	folderID, err := resolveFolder(ctx, d.client, d.state, d.placement.Folder, d.conflict, d.stateKey(), d.log)
	if err != nil {
		return 0, err
	}

	entries := d.placement.Entries
	if d.conflict == ConflictAppend && d.state != nil {
		entries = filterExportedEntries(d.state, d.stateKey(), entries, d.log)
	}
	if len(entries) == 0 {
		d.log.Info("nothing to export: all plan items already present", "folder", d.placement.Folder.Name)
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
			if err := d.state.MarkExported(d.stateKey(), externalKey(e), fmt.Sprintf("%d/%s", folderID, e.Name)); err != nil {
				d.log.Warn("failed to record export state", "name", e.Name, "error", err)
			}
		}
	}

	return count, nil
}

// stateKey scopes plan exports separately from library exports in the state DB.
func (d *IntervalsPlanDestination) stateKey() string {
	return d.Name() + ":plan:" + d.folderName
}
