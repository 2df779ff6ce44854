package structure

import (
	"testing"

	"github.com/claude/planport/internal/models"
)

func TestBuildWorkoutDoc(t *testing.T) {
	ws := &models.WorkoutStructure{
		PrimaryIntensityMetric: "percentOfFtp",
		Structure: []models.StructureEntry{
			{
				Type: "step",
				Steps: []models.StructureStep{
					{Name: "Warm up", IntensityClass: "warmUp", Length: minutesLength(10), Targets: []models.StructureTarget{{MinValue: 50, MaxValue: 70}}},
				},
			},
			{
				Type:   "repetition",
				Length: &models.StructureLength{Unit: "repetition", Value: 3},
				Steps: []models.StructureStep{
					{Name: "Hard", Length: secondsLength(90), Targets: []models.StructureTarget{{MinValue: 105, MaxValue: 120}}},
					{Name: "Easy", IntensityClass: "rest", Length: minutesLength(2)},
				},
			},
		},
	}

	doc, ok := BuildWorkoutDoc(ws, "Ride")
	if !ok {
		t.Fatal("BuildWorkoutDoc returned ok=false")
	}

	if doc.SportHint != "Ride" {
		t.Errorf("sportHint = %q, want Ride (caller-supplied, not derived)", doc.SportHint)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(doc.Sections))
	}

	warm := doc.Sections[0]
	if warm.RepeatCount != 0 {
		t.Errorf("warm-up repeatCount = %d, want 0", warm.RepeatCount)
	}
	if len(warm.Items) != 1 {
		t.Fatalf("warm-up items = %d, want 1", len(warm.Items))
	}
	if got := warm.Items[0]; got.Label != "Warm up" || got.DurationSeconds != 600 {
		t.Errorf("warm-up item = %+v", got)
	}
	if len(warm.Items[0].Targets) != 1 {
		t.Fatalf("warm-up targets = %d, want 1", len(warm.Items[0].Targets))
	}
	target := warm.Items[0].Targets[0]
	if target.Kind != TargetPowerPctFTP {
		t.Errorf("target kind = %q, want power_pct_ftp", target.Kind)
	}
	if target.Min == nil || *target.Min != 50 || target.Max == nil || *target.Max != 70 {
		t.Errorf("target range = %+v, want 50-70", target)
	}

	reps := doc.Sections[1]
	if reps.RepeatCount != 3 {
		t.Errorf("repeatCount = %d, want 3", reps.RepeatCount)
	}
	if len(reps.Items) != 2 {
		t.Fatalf("repetition items = %d, want 2", len(reps.Items))
	}
	// The rest step has no targets and no cadence: empty list, nothing synthesized.
	if got := reps.Items[1].Targets; len(got) != 0 {
		t.Errorf("rest step targets = %+v, want empty", got)
	}
}

func TestBuildWorkoutDocCadenceTarget(t *testing.T) {
	ws := &models.WorkoutStructure{
		PrimaryIntensityMetric: "percentOfFtp",
		Structure: []models.StructureEntry{
			{
				Type: "step",
				Steps: []models.StructureStep{
					{
						Name:    "Spin ups",
						Length:  minutesLength(5),
						Targets: []models.StructureTarget{{MinValue: 60, MaxValue: 70}},
						Cadence: &models.StructureCadence{MinRPM: floatPtr(90), MaxRPM: floatPtr(100)},
					},
				},
			},
		},
	}

	doc, ok := BuildWorkoutDoc(ws, "Ride")
	if !ok {
		t.Fatal("BuildWorkoutDoc returned ok=false")
	}

	targets := doc.Sections[0].Items[0].Targets
	if len(targets) != 2 {
		t.Fatalf("targets = %d, want intensity + cadence", len(targets))
	}
	cad := targets[1]
	if cad.Kind != TargetCadenceRPM {
		t.Errorf("kind = %q, want cadence_rpm", cad.Kind)
	}
	if cad.Min == nil || *cad.Min != 90 || cad.Max == nil || *cad.Max != 100 {
		t.Errorf("cadence range = %+v, want 90-100", cad)
	}
}

func TestBuildWorkoutDocSingleValueTarget(t *testing.T) {
	ws := &models.WorkoutStructure{
		PrimaryIntensityMetric: "heartRate",
		Structure: []models.StructureEntry{
			{
				Type: "step",
				Steps: []models.StructureStep{
					{Name: "Steady", Length: minutesLength(30), Targets: []models.StructureTarget{{MinValue: 150, MaxValue: 150}}},
				},
			},
		},
	}

	doc, _ := BuildWorkoutDoc(ws, "Run")
	target := doc.Sections[0].Items[0].Targets[0]
	if target.Kind != TargetHeartRate {
		t.Errorf("kind = %q, want heart_rate", target.Kind)
	}
	if target.Value == nil || *target.Value != 150 {
		t.Errorf("value = %+v, want single value 150", target)
	}
	if target.Min != nil || target.Max != nil {
		t.Errorf("single-value target should not carry a range: %+v", target)
	}
}

func TestBuildWorkoutDocNullPropagation(t *testing.T) {
	if doc, ok := BuildWorkoutDoc(nil, "Ride"); ok || doc != nil {
		t.Errorf("BuildWorkoutDoc(nil) = (%v, %v), want (nil, false)", doc, ok)
	}
	if doc, ok := BuildWorkoutDoc(&models.WorkoutStructure{}, "Ride"); ok || doc != nil {
		t.Errorf("BuildWorkoutDoc(empty) = (%v, %v), want (nil, false)", doc, ok)
	}
}
