package views

import (
	"strings"
	"time"

	"todobin/internal/dates"
	"todobin/internal/task"
	"todobin/internal/utils"
)

// FilterKind selects which tasks are visible.
type FilterKind string

const (
	FilterAll       FilterKind = "all"
	FilterCompleted FilterKind = "completed"
	FilterPending   FilterKind = "pending"
	FilterDueToday  FilterKind = "dueToday"
	FilterOverdue   FilterKind = "overdue"
)

// FilterKinds lists every filter in display order.
var FilterKinds = []FilterKind{FilterAll, FilterCompleted, FilterPending, FilterDueToday, FilterOverdue}

// filterAliases maps lowercase user input to a filter
var filterAliases = map[string]FilterKind{
	"all":       FilterAll,
	"":          FilterAll,
	"completed": FilterCompleted,
	"done":      FilterCompleted,
	"pending":   FilterPending,
	"todo":      FilterPending,
	"duetoday":  FilterDueToday,
	"due-today": FilterDueToday,
	"due_today": FilterDueToday,
	"today":     FilterDueToday,
	"overdue":   FilterOverdue,
}

// ParseFilter reads a filter name case-insensitively.
func ParseFilter(s string) (FilterKind, error) {
	if k, ok := filterAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	valid := make([]string, len(FilterKinds))
	for i, k := range FilterKinds {
		valid[i] = string(k)
	}
	return "", utils.ErrInvalidFilter(s, valid)
}

// Next returns the filter after k, wrapping around. The TUI cycles with it.
func (k FilterKind) Next() FilterKind {
	for i, f := range FilterKinds {
		if f == k {
			return FilterKinds[(i+1)%len(FilterKinds)]
		}
	}
	return FilterAll
}

// Label returns a human readable name.
func (k FilterKind) Label() string {
	switch k {
	case FilterCompleted:
		return "Completed"
	case FilterPending:
		return "Pending"
	case FilterDueToday:
		return "Due today"
	case FilterOverdue:
		return "Overdue"
	default:
		return "All"
	}
}

// Matches reports whether t is visible under kind at time now.
// Tasks without a usable due date never match dueToday or overdue.
func Matches(t task.Task, kind FilterKind, now time.Time) bool {
	switch kind {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	case FilterDueToday:
		status, ok := dates.ClassifyString(t.DueDate, now)
		return ok && status == dates.Today
	case FilterOverdue:
		status, ok := dates.ClassifyString(t.DueDate, now)
		return ok && status == dates.Overdue
	default:
		return true
	}
}

// Predicate binds kind and now into a predicate for task.Store.RemoveVisible.
func Predicate(kind FilterKind, now time.Time) func(task.Task) bool {
	return func(t task.Task) bool {
		return Matches(t, kind, now)
	}
}

// FilterTasks returns the visible tasks in their current order.
func FilterTasks(tasks []task.Task, kind FilterKind, now time.Time) []task.Task {
	result := []task.Task{}
	for _, t := range tasks {
		if Matches(t, kind, now) {
			result = append(result, t)
		}
	}
	return result
}
