package structure

import (
	"fmt"
	"math"

	"github.com/claude/planport/internal/models"
)

// IntensityClass classifies a step's role within the workout.
type IntensityClass string

const (
	IntensityWarmUp   IntensityClass = "warmup"
	IntensityActive   IntensityClass = "active"
	IntensityRest     IntensityClass = "rest"
	IntensityCoolDown IntensityClass = "coolDown"
)

// Range is a min/max pair for an intensity target.
type Range struct {
	Min float64
	Max float64
}

// Cadence carries a single rpm value or a min/max rpm range.
type Cadence struct {
	RPM    *float64
	MinRPM *float64
	MaxRPM *float64
}

// Node is a normalized structure node: either a Step or a RepetitionGroup.
// The union is closed so consumers can switch exhaustively.
type Node interface {
	isNode()
}

// Step is a leaf interval step with its duration normalized to whole seconds.
type Step struct {
	Name            string
	IntensityClass  IntensityClass
	DurationSeconds int
	Target          *Range
	Cadence         *Cadence
}

func (Step) isNode() {}

// RepetitionGroup is a block of steps repeated Count times.
type RepetitionGroup struct {
	Count int
	Steps []Step
}

func (RepetitionGroup) isNode() {}

// Normalize walks a raw workout structure and classifies each top-level entry
// as a Step or a RepetitionGroup. Steps nested one level under "step"/"set"
// wrappers are unwrapped into individual top-level Step nodes. Malformed
// inner steps are skipped with a warning rather than aborting the parse.
//
// Returns nil nodes when the input is nil, has no structure entries, or the
// structure array is empty.
func Normalize(ws *models.WorkoutStructure) ([]Node, []string) {
	if ws.Empty() {
		return nil, nil
	}

	var nodes []Node
	var warnings []string

	for i, entry := range ws.Structure {
		if entry.Type == "repetition" {
			count := 1
			if entry.Length != nil && entry.Length.Value >= 1 {
				count = int(entry.Length.Value)
			}
			group := RepetitionGroup{Count: count}
			for j, raw := range entry.Steps {
				step, ok := normalizeStep(raw)
				if !ok {
					warnings = append(warnings, fmt.Sprintf("skipped malformed step %d in repetition %d", j, i))
					continue
				}
				group.Steps = append(group.Steps, step)
			}
			if len(group.Steps) == 0 {
				warnings = append(warnings, fmt.Sprintf("skipped empty repetition %d", i))
				continue
			}
			nodes = append(nodes, group)
			continue
		}

		// "step"/"set" wrappers (and anything else carrying steps) flatten
		// into individual top-level Step nodes.
		if len(entry.Steps) == 0 {
			warnings = append(warnings, fmt.Sprintf("skipped entry %d with unrecognized shape (type %q)", i, entry.Type))
			continue
		}
		for j, raw := range entry.Steps {
			step, ok := normalizeStep(raw)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("skipped malformed step %d in entry %d", j, i))
				continue
			}
			nodes = append(nodes, step)
		}
	}

	if len(nodes) == 0 {
		return nil, warnings
	}
	return nodes, warnings
}

// normalizeStep converts a raw leaf step, normalizing its duration to whole
// seconds. A step with no usable length is malformed.
func normalizeStep(raw models.StructureStep) (Step, bool) {
	if raw.Length == nil {
		return Step{}, false
	}

	// Convert to seconds before rounding so fractional minutes keep their
	// sub-minute part: 1.5 minutes is 90 seconds, not 60.
	var seconds int
	switch raw.Length.Unit {
	case "second":
		seconds = int(math.Round(raw.Length.Value))
	case "minute":
		seconds = int(math.Round(raw.Length.Value * 60))
	default:
		return Step{}, false
	}
	if seconds < 0 {
		return Step{}, false
	}

	step := Step{
		Name:            raw.Name,
		IntensityClass:  intensityClass(raw.IntensityClass),
		DurationSeconds: seconds,
	}

	if len(raw.Targets) > 0 {
		t := raw.Targets[0]
		step.Target = &Range{Min: t.MinValue, Max: t.MaxValue}
	}
	if c := raw.Cadence; c != nil && (c.RPM != nil || c.MinRPM != nil || c.MaxRPM != nil) {
		step.Cadence = &Cadence{RPM: c.RPM, MinRPM: c.MinRPM, MaxRPM: c.MaxRPM}
	}

	return step, true
}

// intensityClass maps the source class string onto the known set, passing
// unknown classes through unchanged so they still render a suffix.
func intensityClass(s string) IntensityClass {
	switch s {
	case "warmUp", "warmup":
		return IntensityWarmUp
	case "", "active":
		return IntensityActive
	case "rest", "recovery":
		return IntensityRest
	case "coolDown", "cooldown":
		return IntensityCoolDown
	}
	return IntensityClass(s)
}
