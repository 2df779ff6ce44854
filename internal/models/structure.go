package models

// WorkoutStructure is the raw nested interval structure attached to a source
// library item. Field shapes follow the source platform's JSON export; the
// normalizer in internal/structure tolerates partially-understood entries.
type WorkoutStructure struct {
	Structure              []StructureEntry `json:"structure"`
	PrimaryIntensityMetric string           `json:"primaryIntensityMetric"`
	PrimaryLengthMetric    string           `json:"primaryLengthMetric"`
}

// Empty reports whether the structure carries no renderable entries.
func (ws *WorkoutStructure) Empty() bool {
	return ws == nil || len(ws.Structure) == 0
}

// StructureEntry is one top-level entry of the structure array: a thin
// "step"/"set" wrapper around one or more leaf steps, or a "repetition"
// group whose steps are repeated length.value times.
type StructureEntry struct {
	Type   string           `json:"type"`
	Length *StructureLength `json:"length,omitempty"`
	Steps  []StructureStep  `json:"steps,omitempty"`
}

// StructureLength is a duration or repetition count.
// Unit is one of "second", "minute" or "repetition".
type StructureLength struct {
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

// StructureStep is a leaf interval step.
type StructureStep struct {
	Name           string            `json:"name"`
	IntensityClass string            `json:"intensityClass"`
	Length         *StructureLength  `json:"length,omitempty"`
	OpenDuration   bool              `json:"openDuration,omitempty"`
	Targets        []StructureTarget `json:"targets,omitempty"`
	Cadence        *StructureCadence `json:"cadence,omitempty"`
}

// StructureTarget is an intensity target range. The source emits at most one
// per step; MinValue == MaxValue for single-value targets.
type StructureTarget struct {
	MinValue float64 `json:"minValue"`
	MaxValue float64 `json:"maxValue"`
}

// StructureCadence carries either a single rpm value or a min/max range.
type StructureCadence struct {
	RPM    *float64 `json:"rpm,omitempty"`
	MinRPM *float64 `json:"minRpm,omitempty"`
	MaxRPM *float64 `json:"maxRpm,omitempty"`
}
