// Package dates classifies due dates against the current calendar day.
package dates

import (
	"strings"
	"time"
)

// Status is the calendar classification of a due date.
type Status int

const (
	Future Status = iota
	Today
	Overdue
)

// String returns the lowercase name used in JSON output and the TUI.
func (s Status) String() string {
	switch s {
	case Today:
		return "today"
	case Overdue:
		return "overdue"
	default:
		return "future"
	}
}

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// DisplayLayout is the short display form, e.g. "Jan 5, 2025".
const DisplayLayout = "Jan 2, 2006"

// Parse reads a stored due date. It accepts YYYY-MM-DD (interpreted in loc)
// and RFC3339. Empty or unparsable input returns ok=false.
func Parse(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}

// Valid reports whether s is a parsable due date.
func Valid(s string) bool {
	_, ok := Parse(s, time.UTC)
	return ok
}

// day truncates t to midnight in its own location.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Classify compares the calendar day of due with that of now, ignoring the
// time of day. due is first moved into now's location.
func Classify(due, now time.Time) Status {
	d := day(due.In(now.Location()))
	n := day(now)
	switch {
	case d.Equal(n):
		return Today
	case d.Before(n):
		return Overdue
	default:
		return Future
	}
}

// ClassifyString classifies a stored due date. ok is false when the task has
// no usable due date; such tasks are never today or overdue.
func ClassifyString(s string, now time.Time) (Status, bool) {
	t, ok := Parse(s, now.Location())
	if !ok {
		return Future, false
	}
	return Classify(t, now), true
}

// Format renders t in the short display form.
func Format(t time.Time) string {
	return t.Format(DisplayLayout)
}

// FormatString renders a stored due date for display. Unparsable input is
// returned unchanged.
func FormatString(s string) string {
	t, ok := Parse(s, time.Local)
	if !ok {
		return s
	}
	return Format(t)
}
