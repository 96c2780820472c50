// Package textutil fits text into table cells and status lines, measuring in
// terminal columns rather than bytes.
package textutil

import (
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// Width is the number of terminal columns s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate cuts s to at most max columns, ending in an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if Width(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, ellipsis)
}

// SingleLine collapses line breaks and whitespace runs into single spaces.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Cell prepares a value for a fixed-width column: one line, cut to width,
// padded on the right.
func Cell(s string, width int) string {
	return runewidth.FillRight(Truncate(SingleLine(s), width), width)
}

// Since renders a timestamp relative to now: "just now", "5m ago", "3h ago",
// "2d ago", or the date once older than a week. The zero time renders as "-".
func Since(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d/time.Minute)) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d/time.Hour)) + "h ago"
	case d < 7*24*time.Hour:
		return strconv.Itoa(int(d/(24*time.Hour))) + "d ago"
	}
	return t.Local().Format("2006-01-02")
}
