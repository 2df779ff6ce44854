package structure

import "strings"

// coachNotesSeparator visually splits athlete-facing text from coach notes.
const coachNotesSeparator = "- - - -"

// ComposeDescription assembles the destination description from the rendered
// structure text, the item's free-text description, and coach comments.
// Numeric summary fields (IF, TSS, elevation) are deliberately left out: the
// destination surfaces them structurally, and duplicating them in the
// description was a past regression.
func ComposeDescription(structureText, description, coachComments string) string {
	var parts []string
	if structureText != "" {
		parts = append(parts, structureText)
	}
	if description != "" {
		parts = append(parts, description)
	}
	if coachComments != "" {
		parts = append(parts, coachNotesSeparator+"\nCoach Notes:\n"+coachComments)
	}
	return strings.Join(parts, "\n\n")
}
