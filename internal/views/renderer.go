package views

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"todobin/internal/dates"
	"todobin/internal/task"
)

// Renderer writes tasks as text lines using a view configuration
type Renderer struct {
	view   *View
	writer io.Writer
	now    time.Time
}

// NewRenderer creates a new view renderer. now decides the due status tags.
func NewRenderer(view *View, writer io.Writer, now time.Time) *Renderer {
	if view == nil {
		view = DefaultView()
	}
	return &Renderer{view: view, writer: writer, now: now}
}

// Render writes one line per task in the given order.
func (r *Renderer) Render(tasks []task.Task) {
	for i := range tasks {
		var parts []string
		for _, field := range r.view.Fields {
			if val := r.formatField(&tasks[i], field); val != "" {
				parts = append(parts, val)
			}
		}
		_, _ = fmt.Fprintf(r.writer, "  %s\n", strings.TrimRight(strings.Join(parts, " "), " "))
	}
}

// formatField formats a task field according to field configuration
func (r *Renderer) formatField(t *task.Task, field Field) string {
	var value string

	switch field.Name {
	case "status":
		value = FormatCheckbox(t.Completed)
	case "text":
		value = t.Text
	case "due_date":
		if t.HasDueDate() {
			value = "Due: " + dates.FormatString(t.DueDate)
		}
	case "due_status":
		value = StatusTag(*t, r.now)
	case "id":
		value = t.ID
	}

	if field.Width > 0 {
		if field.Truncate && utf8.RuneCountInString(value) > field.Width {
			runes := []rune(value)
			if field.Width > 3 {
				value = string(runes[:field.Width-3]) + "..."
			} else {
				value = string(runes[:field.Width])
			}
		}
		value = fmt.Sprintf("%-*s", field.Width, value)
	}

	return value
}

// FormatCheckbox renders the completed flag.
func FormatCheckbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// StatusTag returns "[TODAY]" or "[OVERDUE]" for pending tasks due today or
// earlier, and "" otherwise.
func StatusTag(t task.Task, now time.Time) string {
	if t.Completed {
		return ""
	}
	status, ok := dates.ClassifyString(t.DueDate, now)
	if !ok {
		return ""
	}
	switch status {
	case dates.Today:
		return "[TODAY]"
	case dates.Overdue:
		return "[OVERDUE]"
	}
	return ""
}

// RenderBin writes the recycle bin entries, numbered from 1.
func RenderBin(w io.Writer, entries []task.Entry) {
	for i, e := range entries {
		line := fmt.Sprintf("%d. %s %s", i+1, FormatCheckbox(e.Completed), e.Text)
		if e.DueDate != "" {
			line += " (Due: " + dates.FormatString(e.DueDate) + ")"
		}
		if e.DeletedAt != nil {
			line += " deleted " + e.DeletedAt.Local().Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "  %s\n", line)
	}
}

// RenderTasksWithView is a convenience function for rendering tasks with a view
func RenderTasksWithView(tasks []task.Task, view *View, writer io.Writer, now time.Time) {
	NewRenderer(view, writer, now).Render(tasks)
}
