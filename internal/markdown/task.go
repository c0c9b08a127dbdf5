// Package markdown parses and formats the markdown checklist used for task
// export and import: one "- [x] text @2025-01-15" line per task.
package markdown

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"todobin/internal/dates"
	"todobin/internal/task"
)

// Heading is written at the top of every exported checklist.
const Heading = "# To Do Tasks"

var (
	taskLinePattern = regexp.MustCompile(`^\s*[-*] \[(.)\] (.*)$`)
	dueDatePattern  = regexp.MustCompile(`(?:^|\s+)@(\d{4}-\d{2}-\d{2})$`)
)

// ParseStatusChar converts a markdown checkbox character to a completed flag.
func ParseStatusChar(char string) bool {
	return strings.EqualFold(char, "x")
}

// FormatStatusChar converts a completed flag to a checkbox character.
func FormatStatusChar(completed bool) string {
	if completed {
		return "x"
	}
	return " "
}

// ParseTaskText splits a trailing due date from the task text.
// Format: "Task text @2024-01-15"
func ParseTaskText(text string) (summary, dueDate string) {
	summary = strings.TrimSpace(text)
	if matches := dueDatePattern.FindStringSubmatch(summary); len(matches) == 2 && dates.Valid(matches[1]) {
		dueDate = matches[1]
		summary = strings.TrimSpace(dueDatePattern.ReplaceAllString(summary, ""))
	}
	return summary, dueDate
}

// FormatTaskText formats a task back to markdown text.
func FormatTaskText(t *task.Task) string {
	parts := []string{t.Text}
	if t.HasDueDate() {
		parts = append(parts, "@"+t.DueDate)
	}
	return strings.Join(parts, " ")
}

// WriteTasks writes the heading and one checklist line per task.
func WriteTasks(w io.Writer, tasks []task.Task) error {
	var sb strings.Builder
	sb.WriteString(Heading)
	sb.WriteString("\n\n")
	for i := range tasks {
		sb.WriteString("- [")
		sb.WriteString(FormatStatusChar(tasks[i].Completed))
		sb.WriteString("] ")
		sb.WriteString(FormatTaskText(&tasks[i]))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// ReadTasks parses a checklist. Blank lines and headings are skipped; any
// other line that is not a checkbox item, or an item with no text, fails the
// whole read. Parsed tasks get fresh IDs.
func ReadTasks(r io.Reader) ([]task.Task, error) {
	tasks := []task.Task{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		matches := taskLinePattern.FindStringSubmatch(line)
		if matches == nil {
			return nil, fmt.Errorf("line %d: not a checklist item", lineNo)
		}
		summary, due := ParseTaskText(matches[2])
		text, err := task.ValidateText(summary)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		tasks = append(tasks, task.Task{
			ID:        task.NewID(),
			Text:      text,
			Completed: ParseStatusChar(matches[1]),
			DueDate:   due,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}
