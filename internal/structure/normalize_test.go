package structure

import (
	"testing"

	"github.com/claude/planport/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func secondsLength(v float64) *models.StructureLength {
	return &models.StructureLength{Unit: "second", Value: v}
}

func minutesLength(v float64) *models.StructureLength {
	return &models.StructureLength{Unit: "minute", Value: v}
}

func TestNormalizeNilAndEmpty(t *testing.T) {
	if nodes, _ := Normalize(nil); nodes != nil {
		t.Errorf("Normalize(nil) = %v, want nil", nodes)
	}
	if nodes, _ := Normalize(&models.WorkoutStructure{}); nodes != nil {
		t.Errorf("Normalize(no structure) = %v, want nil", nodes)
	}
	if nodes, _ := Normalize(&models.WorkoutStructure{Structure: []models.StructureEntry{}}); nodes != nil {
		t.Errorf("Normalize(empty structure) = %v, want nil", nodes)
	}
}

func TestNormalizeFlattensWrappers(t *testing.T) {
	ws := &models.WorkoutStructure{
		Structure: []models.StructureEntry{
			{
				Type: "step",
				Steps: []models.StructureStep{
					{Name: "Warm up", IntensityClass: "warmUp", Length: minutesLength(10)},
				},
			},
			{
				Type: "set",
				Steps: []models.StructureStep{
					{Name: "Steady", IntensityClass: "active", Length: secondsLength(1200)},
				},
			},
		},
	}

	nodes, warnings := Normalize(ws)
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if len(nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(nodes))
	}

	step, ok := nodes[0].(Step)
	if !ok {
		t.Fatalf("nodes[0] = %T, want Step", nodes[0])
	}
	if step.Name != "Warm up" {
		t.Errorf("name = %q, want Warm up", step.Name)
	}
	if step.DurationSeconds != 600 {
		t.Errorf("duration = %d, want 600 (minutes normalized to seconds)", step.DurationSeconds)
	}
	if step.IntensityClass != IntensityWarmUp {
		t.Errorf("class = %q, want warmup", step.IntensityClass)
	}
}

// TestNormalizeFractionalMinutes verifies minute lengths convert to seconds
// before any truncation: 1.5 minutes is 90 seconds, not 60.
func TestNormalizeFractionalMinutes(t *testing.T) {
	ws := &models.WorkoutStructure{
		Structure: []models.StructureEntry{
			{
				Type: "step",
				Steps: []models.StructureStep{
					{Name: "Surge", Length: minutesLength(1.5)},
					{Name: "Float", Length: minutesLength(0.7)},
				},
			},
		},
	}

	nodes, warnings := Normalize(ws)
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if len(nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(nodes))
	}
	if got := nodes[0].(Step).DurationSeconds; got != 90 {
		t.Errorf("1.5 minutes = %ds, want 90s", got)
	}
	if got := nodes[1].(Step).DurationSeconds; got != 42 {
		t.Errorf("0.7 minutes = %ds, want 42s", got)
	}
}

func TestNormalizeRepetitionGroup(t *testing.T) {
	ws := &models.WorkoutStructure{
		Structure: []models.StructureEntry{
			{
				Type:   "repetition",
				Length: &models.StructureLength{Unit: "repetition", Value: 4},
				Steps: []models.StructureStep{
					{Name: "Hard", Length: secondsLength(90), Targets: []models.StructureTarget{{MinValue: 105, MaxValue: 120}}},
					{Name: "Easy", IntensityClass: "rest", Length: minutesLength(2)},
				},
			},
		},
	}

	nodes, _ := Normalize(ws)
	if len(nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(nodes))
	}

	group, ok := nodes[0].(RepetitionGroup)
	if !ok {
		t.Fatalf("nodes[0] = %T, want RepetitionGroup", nodes[0])
	}
	if group.Count != 4 {
		t.Errorf("count = %d, want 4", group.Count)
	}
	if len(group.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(group.Steps))
	}
	if group.Steps[0].Target == nil || group.Steps[0].Target.Min != 105 || group.Steps[0].Target.Max != 120 {
		t.Errorf("target = %+v, want 105-120", group.Steps[0].Target)
	}
	if group.Steps[1].IntensityClass != IntensityRest {
		t.Errorf("class = %q, want rest", group.Steps[1].IntensityClass)
	}
}

// TestNormalizeRepetitionDefaultCount verifies a repetition with no length
// defaults to a single pass rather than being dropped.
func TestNormalizeRepetitionDefaultCount(t *testing.T) {
	ws := &models.WorkoutStructure{
		Structure: []models.StructureEntry{
			{
				Type:  "repetition",
				Steps: []models.StructureStep{{Name: "Tempo", Length: minutesLength(20)}},
			},
		},
	}

	nodes, _ := Normalize(ws)
	if len(nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(nodes))
	}
	if group := nodes[0].(RepetitionGroup); group.Count != 1 {
		t.Errorf("count = %d, want 1", group.Count)
	}
}

// TestNormalizeSkipsMalformedSteps verifies steps without a usable length are
// dropped with a warning instead of aborting the whole parse.
func TestNormalizeSkipsMalformedSteps(t *testing.T) {
	ws := &models.WorkoutStructure{
		Structure: []models.StructureEntry{
			{
				Type: "step",
				Steps: []models.StructureStep{
					{Name: "No length"},
					{Name: "Unknown unit", Length: &models.StructureLength{Unit: "furlong", Value: 3}},
					{Name: "Good", Length: secondsLength(300)},
				},
			},
			{Type: "mystery"},
		},
	}

	nodes, warnings := Normalize(ws)
	if len(nodes) != 1 {
		t.Fatalf("nodes = %d, want 1 (only the well-formed step)", len(nodes))
	}
	if got := nodes[0].(Step).Name; got != "Good" {
		t.Errorf("surviving step = %q, want Good", got)
	}
	if len(warnings) != 3 {
		t.Errorf("warnings = %d (%v), want 3", len(warnings), warnings)
	}
}

// TestNormalizeAllMalformed verifies a structure whose entries all fail to
// parse is reported as nil, matching the empty-input behavior.
func TestNormalizeAllMalformed(t *testing.T) {
	ws := &models.WorkoutStructure{
		Structure: []models.StructureEntry{
			{Type: "step", Steps: []models.StructureStep{{Name: "No length"}}},
		},
	}

	nodes, warnings := Normalize(ws)
	if nodes != nil {
		t.Errorf("nodes = %v, want nil", nodes)
	}
	if len(warnings) == 0 {
		t.Error("expected warnings for skipped steps")
	}
}
