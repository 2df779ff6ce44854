package structure

import "fmt"

// FormatDuration renders a second count for interval notation. Positive
// multiples of 60 render as whole minutes ("5m"); everything else stays in
// seconds ("90s"). Mixed forms like "1m30s" are never produced because
// destination workout parsers treat "90s" and "1m 30s" differently.
func FormatDuration(seconds int) string {
	if seconds > 0 && seconds%60 == 0 {
		return fmt.Sprintf("%dm", seconds/60)
	}
	return fmt.Sprintf("%ds", seconds)
}
