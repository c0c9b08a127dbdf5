package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"todobin/internal/cli/prompt"
	"todobin/internal/edit"
	"todobin/internal/task"
	"todobin/internal/views"
)

// runFunc is the body of a command that works on an open session
type runFunc func(s *session, args []string) error

// withSession opens a session for the duration of fn
func withSession(cmd *cobra.Command, cfg *Config, stdout io.Writer, args []string, fn runFunc) error {
	s, err := openSession(cmd, cfg, stdout, false)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s, args)
}

// newAddCmd creates the 'add' subcommand
func newAddCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a task",
		Long:  "Add a task to the end of the list. The list is then ordered by due date. Without text, prompts for each field.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			due, _ := cmd.Flags().GetString("due")
			return withSession(cmd, cfg, stdout, args, func(s *session, args []string) error {
				if len(args) == 0 {
					return doInteractiveAdd(s, cfg, stdout)
				}
				return doAdd(s, strings.Join(args, " "), due, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringP("due", "d", "", "Due date (YYYY-MM-DD, today, tomorrow, +3d)")
	return cmd
}

// doAdd adds a task
func doAdd(s *session, text, due string, cfg *Config, stdout io.Writer) error {
	t, err := s.coord.AddTask(s.ctx, text, due)
	if err != nil {
		return err
	}
	if err := s.saved(); err != nil {
		return err
	}

	if s.json {
		return outputActionJSON(s, "add", &t, stdout)
	}
	_, _ = fmt.Fprintf(stdout, "Added task: %s\n", describe(t))
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}

// doInteractiveAdd prompts for the task fields and adds the task
func doInteractiveAdd(s *session, cfg *Config, stdout io.Writer) error {
	if cfg.NoPrompt {
		return fmt.Errorf("task text is required")
	}
	adder := &prompt.InteractiveAdder{
		Reader: promptInput(cfg),
		Writer: stdout,
		Now:    s.coord.Now(),
	}
	fields, err := adder.Run()
	if err != nil {
		return err
	}
	return doAdd(s, fields.Text, fields.DueDate, cfg, stdout)
}

// newListCmd creates the 'list' subcommand
func newListCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long:    "List tasks in due-date order. Use --filter to show only completed, pending, dueToday or overdue tasks.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, _ := cmd.Flags().GetString("filter")
			viewName, _ := cmd.Flags().GetString("view")
			return withSession(cmd, cfg, stdout, args, func(s *session, _ []string) error {
				return doList(s, filter, viewName, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringP("filter", "f", "", "Filter: all, completed, pending, dueToday, overdue")
	cmd.Flags().StringP("view", "v", "", "View to use for displaying tasks (default, all)")
	return cmd
}

// doList prints the visible tasks
func doList(s *session, filter, viewName string, cfg *Config, stdout io.Writer) error {
	if err := applyFilter(s, filter); err != nil {
		return err
	}

	visible := s.coord.Visible()
	now := s.coord.Now()

	if s.json {
		return writeJSON(listTasksResponse{
			Tasks:  tasksToJSON(visible, now),
			Filter: string(s.coord.Filter()),
			Count:  len(visible),
			Total:  len(s.coord.Tasks()),
			Result: ResultInfoOnly,
		}, stdout)
	}

	if len(visible) == 0 {
		_, _ = fmt.Fprintln(stdout, "No tasks.")
		resultCode(cfg, stdout, ResultInfoOnly)
		return nil
	}

	_, _ = fmt.Fprintf(stdout, "To Do Tasks (%s, %d of %d):\n\n", s.coord.Filter().Label(), len(visible), len(s.coord.Tasks()))
	views.RenderTasksWithView(visible, views.ViewByName(viewName), stdout, now)
	resultCode(cfg, stdout, ResultInfoOnly)
	return nil
}

// applyFilter sets the active filter when one is given
func applyFilter(s *session, filter string) error {
	if filter == "" {
		return nil
	}
	kind, err := views.ParseFilter(filter)
	if err != nil {
		return err
	}
	s.coord.SetFilter(kind)
	return nil
}

// newCompleteCmd creates the 'complete' subcommand
func newCompleteCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "complete [task]",
		Aliases: []string{"done"},
		Short:   "Mark a task as completed",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, args []string) error {
				return doSetCompleted(s, args, true, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newUncompleteCmd creates the 'uncomplete' subcommand
func newUncompleteCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "uncomplete [task]",
		Aliases: []string{"reopen"},
		Short:   "Mark a task as pending",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, args []string) error {
				return doSetCompleted(s, args, false, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// doSetCompleted sets the completed flag of one task
func doSetCompleted(s *session, args []string, completed bool, cfg *Config, stdout io.Writer) error {
	action := "complete"
	if !completed {
		action = "uncomplete"
	}
	t, err := resolveTask(s, args, action, cfg)
	if err != nil {
		return err
	}
	if err := s.coord.SetCompleted(s.ctx, t.ID, completed); err != nil {
		return err
	}
	if err := s.saved(); err != nil {
		return err
	}
	t.Completed = completed

	if s.json {
		return outputActionJSON(s, action, &t, stdout)
	}
	if completed {
		_, _ = fmt.Fprintf(stdout, "Completed task: %s\n", t.Text)
	} else {
		_, _ = fmt.Fprintf(stdout, "Reopened task: %s\n", t.Text)
	}
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}

// newEditCmd creates the 'edit' subcommand
func newEditCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [task] [new text]",
		Short: "Change a task's text",
		Long:  "Change a task's text. The task keeps its position in the list.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, args []string) error {
				return doEdit(s, args[0], strings.Join(args[1:], " "), edit.FieldText, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newDueCmd creates the 'due' subcommand
func newDueCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "due [task] [date]",
		Short: "Change a task's due date",
		Long:  "Change a task's due date (YYYY-MM-DD, today, tomorrow, +3d). The list is reordered afterwards.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, args []string) error {
				return doEdit(s, args[0], args[1], edit.FieldDueDate, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// doEdit runs one edit session on a task field and confirms it with value
func doEdit(s *session, searchTerm, value string, field edit.Field, cfg *Config, stdout io.Writer) error {
	t, err := findTask(s, searchTerm, cfg)
	if err != nil {
		return err
	}

	es, err := s.coord.BeginEdit(s.ctx, t.ID, field)
	if err != nil {
		return err
	}
	if es.Confirm(value, edit.KeyConfirm) != edit.Committed {
		return es.Err()
	}
	if err := s.saved(); err != nil {
		return err
	}

	updated, _ := s.coord.Task(t.ID)
	if s.json {
		return outputActionJSON(s, "edit", &updated, stdout)
	}
	if field == edit.FieldDueDate {
		_, _ = fmt.Fprintf(stdout, "Updated due date: %s\n", describe(updated))
	} else {
		_, _ = fmt.Fprintf(stdout, "Updated task: %s\n", updated.Text)
	}
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}

// newDeleteCmd creates the 'delete' subcommand
func newDeleteCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "delete [task]",
		Aliases: []string{"rm"},
		Short:   "Move a task to the recycle bin",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, args []string) error {
				return doDelete(s, args, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// doDelete moves one task to the recycle bin
func doDelete(s *session, args []string, cfg *Config, stdout io.Writer) error {
	t, err := resolveTask(s, args, "delete", cfg)
	if err != nil {
		return err
	}
	if _, err := s.coord.DeleteTask(s.ctx, t.ID); err != nil {
		return err
	}
	if err := s.saved(); err != nil {
		return err
	}

	if s.json {
		return outputActionJSON(s, "delete", &t, stdout)
	}
	_, _ = fmt.Fprintf(stdout, "Deleted task: %s\n", t.Text)
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}

// newDeleteVisibleCmd creates the 'delete-visible' subcommand
func newDeleteVisibleCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-visible",
		Short: "Move every task matching the filter to the recycle bin",
		Long:  "Move every task matching the filter to the recycle bin. Tasks hidden by the filter are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, _ := cmd.Flags().GetString("filter")
			return withSession(cmd, cfg, stdout, args, func(s *session, _ []string) error {
				return doDeleteVisible(s, filter, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringP("filter", "f", "", "Filter: all, completed, pending, dueToday, overdue")
	return cmd
}

// doDeleteVisible moves the visible tasks to the recycle bin
func doDeleteVisible(s *session, filter string, cfg *Config, stdout io.Writer) error {
	if err := applyFilter(s, filter); err != nil {
		return err
	}

	visible := s.coord.Visible()
	if len(visible) == 0 {
		if s.json {
			return writeJSON(actionResponse{Action: "delete-visible", Count: intPtr(0), Result: ResultInfoOnly}, stdout)
		}
		_, _ = fmt.Fprintln(stdout, "No visible tasks to delete.")
		resultCode(cfg, stdout, ResultInfoOnly)
		return nil
	}

	if !s.json && !confirm(cfg, stdout, fmt.Sprintf("Move %d tasks (%s) to the recycle bin?", len(visible), s.coord.Filter().Label())) {
		_, _ = fmt.Fprintln(stdout, "Cancelled.")
		return nil
	}

	entries, err := s.coord.DeleteVisible(s.ctx)
	if err != nil {
		return err
	}
	if err := s.saved(); err != nil {
		return err
	}

	if s.json {
		moved := make([]task.Task, len(entries))
		for i, e := range entries {
			moved[i] = e.Task()
		}
		return writeJSON(actionResponse{
			Action:  "delete-visible",
			Message: s.message(),
			Tasks:   tasksToJSON(moved, s.coord.Now()),
			Count:   intPtr(len(entries)),
			Result:  ResultActionCompleted,
		}, stdout)
	}
	_, _ = fmt.Fprintf(stdout, "Moved %d tasks to the recycle bin\n", len(entries))
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}

func intPtr(n int) *int {
	return &n
}
