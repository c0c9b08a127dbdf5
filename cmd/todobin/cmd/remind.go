package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"todobin/internal/notification"
	"todobin/internal/reminder"
	"todobin/internal/utils"
)

// newRemindCmd creates the 'remind' subcommand
func newRemindCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Show overdue and upcoming tasks",
		Long: `Check pending tasks against their due dates and report overdue tasks,
tasks due today and, when reminder.within is set, tasks due soon.
Reminders are also sent as desktop notifications when reminder.os_notification is enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			within, _ := cmd.Flags().GetString("within")
			return withSession(cmd, cfg, stdout, args, func(s *session, _ []string) error {
				return doRemind(s, within, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().String("within", "", "Also remind about tasks due within this interval (e.g. 3d, 12h, 1w)")
	return cmd
}

// doRemind reports reminders for the current task list
func doRemind(s *session, within string, cfg *Config, stdout io.Writer) error {
	rc := &reminder.Config{
		Enabled:      s.app.Reminder.Enabled,
		IncludeToday: s.app.Reminder.IncludeToday,
		Within:       s.app.Reminder.Within,
	}
	if within != "" {
		rc.Within = within
	}

	if !rc.Enabled {
		if s.json {
			return writeJSON(remindResponse{Reminders: []reminderJSON{}, Result: ResultInfoOnly}, stdout)
		}
		_, _ = fmt.Fprintln(stdout, "Reminders are disabled.")
		resultCode(cfg, stdout, ResultInfoOnly)
		return nil
	}

	svc, err := reminder.NewService(rc)
	if err != nil {
		return utils.WrapWithSuggestion(err, "Use an interval such as 3d, 12h or 1w")
	}
	if s.app.Reminder.OSNotification {
		svc.SetNotifier(notification.NewOSNotificationChannel(&notification.OSNotificationConfig{
			Enabled:   true,
			OnSuccess: true,
			OnInfo:    true,
			OnError:   true,
		}))
	}

	now := s.coord.Now()
	reminders, err := svc.Notify(s.coord.Tasks(), now)
	if err != nil {
		utils.Warnf("failed to send reminder notification: %v", err)
	}

	if s.json {
		out := make([]reminderJSON, 0, len(reminders))
		for _, r := range reminders {
			out = append(out, reminderJSON{Kind: string(r.Kind), Message: r.Message(), Task: taskToJSON(r.Task, now)})
		}
		return writeJSON(remindResponse{Reminders: out, Count: len(out), Result: ResultInfoOnly}, stdout)
	}

	if len(reminders) == 0 {
		_, _ = fmt.Fprintln(stdout, "No reminders.")
		resultCode(cfg, stdout, ResultInfoOnly)
		return nil
	}

	_, _ = fmt.Fprintf(stdout, "Reminders (%d):\n", len(reminders))
	for _, r := range reminders {
		_, _ = fmt.Fprintf(stdout, "  %s\n", r.Message())
	}
	resultCode(cfg, stdout, ResultInfoOnly)
	return nil
}
