package views

import (
	"slices"
	"time"

	"todobin/internal/dates"
	"todobin/internal/task"
)

// SortTasks orders tasks by due date, earliest first. Tasks with no or an
// unparsable due date keep their relative order and follow the dated ones.
// The input is not modified and sorting a sorted slice returns it unchanged.
func SortTasks(tasks []task.Task) []task.Task {
	type dated struct {
		t   task.Task
		due time.Time
	}

	withDate := make([]dated, 0, len(tasks))
	undated := make([]task.Task, 0)
	for _, t := range tasks {
		if due, ok := dates.Parse(t.DueDate, time.UTC); ok {
			withDate = append(withDate, dated{t: t, due: due})
			continue
		}
		undated = append(undated, t)
	}

	slices.SortStableFunc(withDate, func(a, b dated) int {
		return a.due.Compare(b.due)
	})

	result := make([]task.Task, 0, len(tasks))
	for _, d := range withDate {
		result = append(result, d.t)
	}
	return append(result, undated...)
}
