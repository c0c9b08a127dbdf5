// Package prompt handles interactive prompts with no-prompt mode support.
// It provides filter-then-pick task selection and an interactive add mode
// with field validation.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"todobin/internal/dates"
	"todobin/internal/task"
	"todobin/internal/utils"
)

// Sentinel errors for prompt operations.
var (
	ErrSelectionCancelled = errors.New("selection cancelled")
	ErrNoPromptMode       = errors.New("interactive prompts disabled (--no-prompt / -y)")
	ErrNoTasks            = errors.New("no tasks available")
	ErrNoMatches          = errors.New("no tasks match the filter")
)

// TaskSelector lets the user narrow a task list by text and pick one by number.
type TaskSelector struct {
	Tasks    []task.Task
	Prompt   string
	Reader   io.Reader
	Writer   io.Writer
	NoPrompt bool
}

// Run executes the task selection prompt.
// If NoPrompt is true, returns ErrNoPromptMode.
// If there is exactly one task, auto-selects it.
// Otherwise, prompts the user to filter and select a task.
func (s *TaskSelector) Run() (*task.Task, error) {
	if s.NoPrompt {
		return nil, ErrNoPromptMode
	}

	if len(s.Tasks) == 0 {
		return nil, ErrNoTasks
	}

	if len(s.Tasks) == 1 {
		return &s.Tasks[0], nil
	}

	writer := s.Writer
	if writer == nil {
		writer = io.Discard
	}

	scanner := bufio.NewScanner(s.Reader)

	_, _ = fmt.Fprintf(writer, "%s\nFilter (or press Enter to show all): ", s.Prompt)
	if !scanner.Scan() {
		return nil, ErrSelectionCancelled
	}
	filter := strings.TrimSpace(scanner.Text())

	var filtered []task.Task
	if filter == "" {
		filtered = s.Tasks
	} else {
		filterLower := strings.ToLower(filter)
		for _, t := range s.Tasks {
			if strings.Contains(strings.ToLower(t.Text), filterLower) {
				filtered = append(filtered, t)
			}
		}
	}

	if len(filtered) == 0 {
		return nil, ErrNoMatches
	}

	if len(filtered) == 1 {
		_, _ = fmt.Fprintf(writer, "Auto-selected: %s\n", filtered[0].Text)
		return &filtered[0], nil
	}

	for i, t := range filtered {
		_, _ = fmt.Fprintf(writer, "  %d) %s\n", i+1, formatTaskLine(t))
	}

	_, _ = fmt.Fprintf(writer, "Select (0 to cancel): ")
	if !scanner.Scan() {
		return nil, ErrSelectionCancelled
	}

	input := strings.TrimSpace(scanner.Text())
	num, err := strconv.Atoi(input)
	if err != nil {
		return nil, fmt.Errorf("invalid selection: %s", input)
	}

	if num == 0 {
		return nil, ErrSelectionCancelled
	}

	if num < 1 || num > len(filtered) {
		return nil, fmt.Errorf("selection out of range: %d", num)
	}

	return &filtered[num-1], nil
}

// formatTaskLine formats a task with its state and due date.
func formatTaskLine(t task.Task) string {
	meta := []string{"pending"}
	if t.Completed {
		meta[0] = "completed"
	}
	if t.HasDueDate() {
		meta = append(meta, "due: "+dates.FormatString(t.DueDate))
	}
	return fmt.Sprintf("%s [%s]", t.Text, strings.Join(meta, ", "))
}

// FilterTasksByAction returns the tasks an action can apply to: "complete"
// offers pending tasks, "uncomplete" offers completed ones. Other actions,
// or showAll, offer everything.
func FilterTasksByAction(tasks []task.Task, action string, showAll bool) []task.Task {
	var keep func(task.Task) bool
	switch {
	case showAll:
	case action == "complete":
		keep = func(t task.Task) bool { return !t.Completed }
	case action == "uncomplete":
		keep = func(t task.Task) bool { return t.Completed }
	}

	result := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep == nil || keep(t) {
			result = append(result, t)
		}
	}
	return result
}

// AddFields holds the field values collected during interactive add mode.
type AddFields struct {
	Text    string
	DueDate string // normalized YYYY-MM-DD, or empty
}

// InteractiveAdder prompts for a task's fields when add is run without text.
type InteractiveAdder struct {
	Reader   io.Reader
	Writer   io.Writer
	NoPrompt bool
	Now      time.Time // resolves relative due dates; zero means time.Now()
}

// Run prompts for the text (required) and then the due date (optional),
// repeating a prompt until its input is valid.
func (a *InteractiveAdder) Run() (*AddFields, error) {
	if a.NoPrompt {
		return nil, ErrNoPromptMode
	}

	writer := a.Writer
	if writer == nil {
		writer = io.Discard
	}
	now := a.Now
	if now.IsZero() {
		now = time.Now()
	}

	scanner := bufio.NewScanner(a.Reader)
	fields := &AddFields{}

	for {
		_, _ = fmt.Fprint(writer, "Task (required): ")
		if !scanner.Scan() {
			return nil, errors.New("no input for task text")
		}
		text, err := task.ValidateText(scanner.Text())
		if err == nil {
			fields.Text = text
			break
		}
		_, _ = fmt.Fprintln(writer, "Task text cannot be empty.")
	}

	for {
		_, _ = fmt.Fprint(writer, "Due date (YYYY-MM-DD, today, tomorrow, +Nd, optional): ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			break
		}
		due, err := utils.NormalizeDueDate(input, now)
		if err != nil {
			_, _ = fmt.Fprintf(writer, "Invalid date: %s. Use YYYY-MM-DD, today, tomorrow, +Nd, +Nw, +Nm\n", input)
			continue
		}
		fields.DueDate = due
		break
	}

	return fields, nil
}
