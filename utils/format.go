package utils

import "fmt"

// FormatWaitTime renders a minute count the way the queue pages show it,
// e.g. "45 min", "1h", "1h 20min"
func FormatWaitTime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins > 0 {
		return fmt.Sprintf("%dh %dmin", hours, mins)
	}
	return fmt.Sprintf("%dh", hours)
}
