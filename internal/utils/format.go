package utils

import (
	"fmt"
	"time"
)

const DateTimeSec = "2006-01-02 15:04:05"

// TimeOrDash formats a time value using the given layout, or returns a dash if zero.
func TimeOrDash(t time.Time, layout string) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format(layout)
}

// Count formats n with the matching noun form, e.g. "1 object", "3 objects".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
