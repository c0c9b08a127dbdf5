package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"todobin/internal/cli/prompt"
	"todobin/internal/dates"
	"todobin/internal/task"
	"todobin/internal/utils"
)

// JSON output structures
type taskJSON struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Completed bool    `json:"completed"`
	DueDate   *string `json:"due_date,omitempty"`
	DueStatus string  `json:"due_status,omitempty"`
}

type entryJSON struct {
	taskJSON
	DeletedAt *string `json:"deleted_at,omitempty"`
}

type listTasksResponse struct {
	Tasks  []taskJSON `json:"tasks"`
	Filter string     `json:"filter"`
	Count  int        `json:"count"`
	Total  int        `json:"total"`
	Result string     `json:"result"`
}

type binResponse struct {
	Entries []entryJSON `json:"entries"`
	Count   int         `json:"count"`
	Result  string      `json:"result"`
}

type actionResponse struct {
	Action  string     `json:"action"`
	Message string     `json:"message,omitempty"`
	Task    *taskJSON  `json:"task,omitempty"`
	Tasks   []taskJSON `json:"tasks,omitempty"`
	Count   *int       `json:"count,omitempty"`
	Path    string     `json:"path,omitempty"`
	Result  string     `json:"result"`
}

type remindResponse struct {
	Reminders []reminderJSON `json:"reminders"`
	Count     int            `json:"count"`
	Result    string         `json:"result"`
}

type reminderJSON struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Task    taskJSON `json:"task"`
}

type infoResponse struct {
	Backend  string          `json:"backend"`
	Location string          `json:"location,omitempty"`
	Tasks    int             `json:"tasks"`
	Bin      int             `json:"recycle_bin"`
	Keys     []storedKeyJSON `json:"keys"`
	Result   string          `json:"result"`
}

type storedKeyJSON struct {
	Key      string  `json:"key"`
	Modified *string `json:"modified,omitempty"`
}

type logResponse struct {
	Entries []logEntryJSON `json:"entries"`
	Count   int            `json:"count"`
	Total   int            `json:"total"`
	Result  string         `json:"result"`
}

type logEntryJSON struct {
	Time     string `json:"time"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type versionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Code   int    `json:"code"`
	Result string `json:"result"`
}

// taskToJSON converts a task.Task to taskJSON
func taskToJSON(t task.Task, now time.Time) taskJSON {
	result := taskJSON{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
	}
	if t.HasDueDate() {
		due := t.DueDate
		result.DueDate = &due
		if status, ok := dates.ClassifyString(t.DueDate, now); ok {
			result.DueStatus = status.String()
		}
	}
	return result
}

func tasksToJSON(tasks []task.Task, now time.Time) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToJSON(t, now))
	}
	return out
}

func entryToJSON(e task.Entry, now time.Time) entryJSON {
	result := entryJSON{taskJSON: taskToJSON(e.Task(), now)}
	if e.DeletedAt != nil {
		deleted := e.DeletedAt.UTC().Format(time.RFC3339)
		result.DeletedAt = &deleted
	}
	return result
}

// writeJSON marshals v as one line
func writeJSON(v interface{}, stdout io.Writer) error {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, string(jsonBytes))
	return nil
}

// outputActionJSON outputs action result in JSON format
func outputActionJSON(s *session, action string, t *task.Task, stdout io.Writer) error {
	response := actionResponse{
		Action:  action,
		Message: s.message(),
		Result:  ResultActionCompleted,
	}
	if t != nil {
		tj := taskToJSON(*t, s.coord.Now())
		response.Task = &tj
	}
	return writeJSON(response, stdout)
}

// outputErrorJSON outputs an error in JSON format
func outputErrorJSON(err error, stdout io.Writer) {
	response := errorResponse{
		Error:  err.Error(),
		Code:   1,
		Result: ResultError,
	}

	jsonBytes, _ := json.Marshal(response)
	_, _ = fmt.Fprintln(stdout, string(jsonBytes))
}

// resultCode prints code in no-prompt mode
func resultCode(cfg *Config, stdout io.Writer, code string) {
	if cfg != nil && cfg.NoPrompt {
		_, _ = fmt.Fprintln(stdout, code)
	}
}

// describe formats a task for a one-line confirmation
func describe(t task.Task) string {
	if t.HasDueDate() {
		return fmt.Sprintf("%s (Due: %s)", t.Text, dates.FormatString(t.DueDate))
	}
	return t.Text
}

// matchTasks resolves a search term against tasks: exact ID, then ID prefix,
// then exact text (case-insensitive), then partial text.
func matchTasks(tasks []task.Task, searchTerm string) []task.Task {
	for _, t := range tasks {
		if t.ID == searchTerm {
			return []task.Task{t}
		}
	}

	var matches []task.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, searchTerm) {
			matches = append(matches, t)
		}
	}
	if len(matches) > 0 {
		return matches
	}

	for _, t := range tasks {
		if strings.EqualFold(t.Text, searchTerm) {
			matches = append(matches, t)
		}
	}
	if len(matches) > 0 {
		return matches
	}

	searchLower := strings.ToLower(searchTerm)
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Text), searchLower) {
			matches = append(matches, t)
		}
	}
	return matches
}

// pickOne turns matches into a single task or an error. Several matches are
// listed in no-prompt mode and offered for selection otherwise.
func pickOne(s *session, matches []task.Task, searchTerm string, cfg *Config, notFound func(string) error) (task.Task, error) {
	switch len(matches) {
	case 0:
		return task.Task{}, notFound(searchTerm)
	case 1:
		return matches[0], nil
	}

	if cfg != nil && cfg.NoPrompt {
		matchNames := make([]string, len(matches))
		for i, m := range matches {
			matchNames[i] = fmt.Sprintf("%s (%s)", m.Text, shortID(m.ID))
		}
		return task.Task{}, utils.ErrAmbiguousTask(searchTerm, matchNames)
	}

	return selectFrom(s, matches, fmt.Sprintf("Multiple tasks match '%s':", searchTerm), cfg)
}

// selectFrom runs the interactive task selector over tasks
func selectFrom(s *session, tasks []task.Task, title string, cfg *Config) (task.Task, error) {
	selector := &prompt.TaskSelector{
		Tasks:    tasks,
		Prompt:   title,
		Reader:   promptInput(cfg),
		Writer:   s.out,
		NoPrompt: cfg.NoPrompt,
	}
	selected, err := selector.Run()
	if err != nil {
		return task.Task{}, err
	}
	return *selected, nil
}

// findTask searches the task list by ID or text
func findTask(s *session, searchTerm string, cfg *Config) (task.Task, error) {
	searchTerm = strings.TrimSpace(searchTerm)
	if searchTerm == "" {
		return task.Task{}, fmt.Errorf("task ID or text is required")
	}
	return pickOne(s, matchTasks(s.coord.Tasks(), searchTerm), searchTerm, cfg, utils.ErrTaskNotFound)
}

// resolveTask finds the task named by args, or asks the user to pick one
// the action applies to when no args are given.
func resolveTask(s *session, args []string, action string, cfg *Config) (task.Task, error) {
	if len(args) > 0 {
		return findTask(s, strings.Join(args, " "), cfg)
	}
	if cfg.NoPrompt {
		return task.Task{}, fmt.Errorf("task ID or text is required")
	}
	candidates := prompt.FilterTasksByAction(s.coord.Tasks(), action, false)
	if len(candidates) == 0 {
		return task.Task{}, prompt.ErrNoTasks
	}
	return selectFrom(s, candidates, fmt.Sprintf("Select a task to %s:", action), cfg)
}

// findEntry searches the recycle bin by ID or text
func findEntry(s *session, searchTerm string, cfg *Config) (task.Entry, error) {
	searchTerm = strings.TrimSpace(searchTerm)
	if searchTerm == "" {
		return task.Entry{}, fmt.Errorf("entry ID or text is required")
	}

	bin := s.coord.Bin()
	tasks := make([]task.Task, len(bin))
	for i, e := range bin {
		tasks[i] = e.Task()
	}
	t, err := pickOne(s, matchTasks(tasks, searchTerm), searchTerm, cfg, utils.ErrEntryNotFound)
	if err != nil {
		return task.Entry{}, err
	}
	for _, e := range bin {
		if e.ID == t.ID {
			return e, nil
		}
	}
	return task.Entry{}, utils.ErrEntryNotFound(searchTerm)
}

// shortID returns the first 8 characters of an ID
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
