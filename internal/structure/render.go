package structure

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/planport/internal/models"
)

// RenderText renders a workout structure as line-oriented interval notation:
//
//	- Warm up 10m 50-70% intensity=warmup
//
//	3x
//	- Hard 90s 105-120%
//	- Easy 2m 55-65% intensity=rest
//
//	- Cool down 10m 45-55% intensity=cooldown
//
// Blank lines separate adjacent top-level blocks only when the block kind
// changes (plain steps vs a repetition group); a group's own step list is
// never split. Returns ok=false when the structure normalizes to nothing.
func RenderText(ws *models.WorkoutStructure) (string, bool) {
	nodes, _ := Normalize(ws)
	if nodes == nil {
		return "", false
	}

	percent := isPercentMetric(ws.PrimaryIntensityMetric)

	var lines []string
	var prevWasGroup bool
	for i, node := range nodes {
		switch n := node.(type) {
		case Step:
			if i > 0 && prevWasGroup {
				lines = append(lines, "")
			}
			lines = append(lines, renderStepLine(n, percent))
			prevWasGroup = false
		case RepetitionGroup:
			if i > 0 && !prevWasGroup {
				lines = append(lines, "")
			}
			lines = append(lines, fmt.Sprintf("%dx", n.Count))
			for _, step := range n.Steps {
				lines = append(lines, renderStepLine(step, percent))
			}
			prevWasGroup = true
		}
	}

	return strings.Join(lines, "\n"), true
}

// renderStepLine renders one step as "- {name} {duration} {target} {cadence}
// {intensity}", omitting absent parts.
func renderStepLine(s Step, percent bool) string {
	parts := make([]string, 0, 5)
	if s.Name != "" {
		parts = append(parts, s.Name)
	}
	parts = append(parts, FormatDuration(s.DurationSeconds))
	if s.Target != nil {
		parts = append(parts, renderTarget(*s.Target, percent))
	}
	if s.Cadence != nil {
		parts = append(parts, renderCadence(*s.Cadence))
	}
	if suffix := intensitySuffix(s.IntensityClass); suffix != "" {
		parts = append(parts, suffix)
	}
	return "- " + strings.Join(parts, " ")
}

func renderTarget(r Range, percent bool) string {
	var out string
	if r.Min == r.Max {
		out = formatNumber(r.Min)
	} else {
		out = formatNumber(r.Min) + "-" + formatNumber(r.Max)
	}
	if percent {
		out += "%"
	}
	return out
}

func renderCadence(c Cadence) string {
	if c.MinRPM != nil && c.MaxRPM != nil {
		return formatNumber(*c.MinRPM) + "-" + formatNumber(*c.MaxRPM) + " rpm"
	}
	if c.RPM != nil {
		return formatNumber(*c.RPM) + " rpm"
	}
	// One-sided range: render whichever bound is present.
	if c.MinRPM != nil {
		return formatNumber(*c.MinRPM) + " rpm"
	}
	if c.MaxRPM != nil {
		return formatNumber(*c.MaxRPM) + " rpm"
	}
	return ""
}

// intensitySuffix renders the intensity marker for non-active steps. Active
// (work) intervals carry no suffix.
func intensitySuffix(class IntensityClass) string {
	switch class {
	case IntensityActive:
		return ""
	case IntensityWarmUp:
		return "intensity=warmup"
	case IntensityRest:
		return "intensity=rest"
	case IntensityCoolDown:
		return "intensity=cooldown"
	}
	return "intensity=" + strings.ToLower(string(class))
}

// isPercentMetric reports whether target values are percentages (of FTP,
// threshold HR, threshold pace) rather than absolute values.
func isPercentMetric(metric string) bool {
	return strings.HasPrefix(metric, "percentOf")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
