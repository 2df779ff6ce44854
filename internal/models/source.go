package models

// LibraryItem is one workout in a source exercise library, as exported by the
// source platform. Raw payloads are schema-validated upstream; by the time an
// item reaches the transcoder it has this shape.
type LibraryItem struct {
	ItemID           string            `json:"itemId"`
	ItemName         string            `json:"itemName"`
	WorkoutTypeID    int               `json:"workoutTypeId"`
	Structure        *WorkoutStructure `json:"structure,omitempty"`
	Description      string            `json:"description,omitempty"`
	CoachComments    string            `json:"coachComments,omitempty"`
	TSSPlanned       *float64          `json:"tssPlanned,omitempty"`
	IFPlanned        *float64          `json:"ifPlanned,omitempty"`
	TotalTimePlanned *float64          `json:"totalTimePlanned,omitempty"` // hours
}

// ExerciseLibrary is a source library: a named collection of workouts.
type ExerciseLibrary struct {
	LibraryID   string        `json:"exerciseLibraryId"`
	LibraryName string        `json:"libraryName"`
	Items       []LibraryItem `json:"items"`
}

// TrainingPlan is a multi-week source plan with dated workouts, notes and
// events. StartDate is optional; when absent the earliest dated item anchors
// the plan.
type TrainingPlan struct {
	PlanID    string        `json:"planId"`
	Title     string        `json:"title"`
	StartDate string        `json:"startDate,omitempty"` // YYYY-MM-DD
	Weeks     int           `json:"weekCount,omitempty"`
	Workouts  []PlanWorkout `json:"workouts"`
	Notes     []PlanNote    `json:"notes,omitempty"`
	Events    []PlanEvent   `json:"events,omitempty"`
}

// PlanWorkout is a library item scheduled on a calendar day.
type PlanWorkout struct {
	LibraryItem
	WorkoutDay string `json:"workoutDay"` // YYYY-MM-DD
}

// PlanNote is a free-text note scheduled on a calendar day.
type PlanNote struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	NoteDay     string `json:"noteDay"`
}

// PlanEvent is a goal event (typically a race) scheduled on a calendar day.
type PlanEvent struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	EventType   string `json:"eventType,omitempty"`
	EventDay    string `json:"eventDay"`
}
