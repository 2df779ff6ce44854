package structure

import (
	"strings"

	"github.com/claude/planport/internal/models"
)

// TargetKind identifies what a workout builder target constrains.
type TargetKind string

const (
	TargetPowerPctFTP TargetKind = "power_pct_ftp"
	TargetHeartRate   TargetKind = "heart_rate"
	TargetPace        TargetKind = "pace"
	TargetCadenceRPM  TargetKind = "cadence_rpm"
)

// Target is one typed target on a workout builder item, carrying either a
// single Value or a Min/Max range.
type Target struct {
	Kind  TargetKind `json:"kind"`
	Value *float64   `json:"value,omitempty"`
	Min   *float64   `json:"min,omitempty"`
	Max   *float64   `json:"max,omitempty"`
}

// Item is one step inside a workout builder section.
type Item struct {
	Kind            string   `json:"kind"` // always "step"
	Label           string   `json:"label"`
	DurationSeconds int      `json:"durationSeconds"`
	Targets         []Target `json:"targets"`
}

// Section groups items; RepeatCount is set only for repetition groups.
type Section struct {
	RepeatCount int    `json:"repeatCount,omitempty"`
	Items       []Item `json:"items"`
}

// WorkoutDoc is the structured workout builder document consumed by a
// destination's workout editor.
type WorkoutDoc struct {
	SportHint string    `json:"sportHint"`
	Sections  []Section `json:"sections"`
}

// BuildWorkoutDoc builds a workout builder document from a raw structure.
// sportHint comes from the caller (the mapped destination activity type),
// not from the structure itself. Returns ok=false when the structure
// normalizes to nothing.
func BuildWorkoutDoc(ws *models.WorkoutStructure, sportHint string) (*WorkoutDoc, bool) {
	nodes, _ := Normalize(ws)
	if nodes == nil {
		return nil, false
	}

	intensityKind := intensityTargetKind(ws.PrimaryIntensityMetric)

	doc := &WorkoutDoc{SportHint: sportHint}
	for _, node := range nodes {
		switch n := node.(type) {
		case Step:
			doc.Sections = append(doc.Sections, Section{
				Items: []Item{buildItem(n, intensityKind)},
			})
		case RepetitionGroup:
			section := Section{RepeatCount: n.Count}
			for _, step := range n.Steps {
				section.Items = append(section.Items, buildItem(step, intensityKind))
			}
			doc.Sections = append(doc.Sections, section)
		}
	}
	return doc, true
}

// buildItem translates one step. Steps without source targets or cadence get
// an empty target list; nothing is synthesized.
func buildItem(s Step, intensityKind TargetKind) Item {
	item := Item{
		Kind:            "step",
		Label:           s.Name,
		DurationSeconds: s.DurationSeconds,
		Targets:         []Target{},
	}

	if s.Target != nil {
		t := Target{Kind: intensityKind}
		if s.Target.Min == s.Target.Max {
			v := s.Target.Min
			t.Value = &v
		} else {
			lo, hi := s.Target.Min, s.Target.Max
			t.Min = &lo
			t.Max = &hi
		}
		item.Targets = append(item.Targets, t)
	}

	if c := s.Cadence; c != nil {
		t := Target{Kind: TargetCadenceRPM}
		switch {
		case c.MinRPM != nil && c.MaxRPM != nil:
			t.Min = c.MinRPM
			t.Max = c.MaxRPM
		case c.RPM != nil:
			t.Value = c.RPM
		case c.MinRPM != nil:
			t.Value = c.MinRPM
		case c.MaxRPM != nil:
			t.Value = c.MaxRPM
		}
		item.Targets = append(item.Targets, t)
	}

	return item
}

// intensityTargetKind maps the source intensity metric onto a target kind.
// Percent-of-FTP targets become power; pace-based metrics become pace;
// everything else is treated as heart rate.
func intensityTargetKind(metric string) TargetKind {
	switch {
	case metric == "percentOfFtp" || strings.Contains(strings.ToLower(metric), "power"):
		return TargetPowerPctFTP
	case strings.Contains(strings.ToLower(metric), "pace") || strings.Contains(strings.ToLower(metric), "speed"):
		return TargetPace
	}
	return TargetHeartRate
}
