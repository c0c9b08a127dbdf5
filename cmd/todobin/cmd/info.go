package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"todobin/backend"
	"todobin/internal/notification"
)

// newInfoCmd creates the 'info' subcommand
func newInfoCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show storage details",
		Long:  "Show the active backend, where it stores data, how many tasks and recycle bin entries it holds and when each stored key last changed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, _ []string) error {
				return doInfo(s, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// doInfo prints the backend summary
func doInfo(s *session, cfg *Config, stdout io.Writer) error {
	resp := infoResponse{
		Backend: s.app.Backend,
		Tasks:   len(s.coord.Tasks()),
		Bin:     len(s.coord.Bin()),
		Keys:    []storedKeyJSON{},
		Result:  ResultInfoOnly,
	}
	if loc, ok := s.kv.(backend.Locator); ok {
		resp.Location = loc.Location()
	}

	keys, err := storedKeys(s)
	if err != nil {
		return err
	}
	resp.Keys = keys

	if s.json {
		return writeJSON(resp, stdout)
	}

	_, _ = fmt.Fprintf(stdout, "Backend:     %s\n", resp.Backend)
	if resp.Location != "" {
		_, _ = fmt.Fprintf(stdout, "Location:    %s\n", resp.Location)
	}
	_, _ = fmt.Fprintf(stdout, "Tasks:       %d\n", resp.Tasks)
	_, _ = fmt.Fprintf(stdout, "Recycle bin: %d\n", resp.Bin)
	if len(resp.Keys) > 0 {
		_, _ = fmt.Fprintln(stdout, "Stored keys:")
		for _, k := range resp.Keys {
			if k.Modified != nil {
				_, _ = fmt.Fprintf(stdout, "  %-12s modified %s\n", k.Key, *k.Modified)
			} else {
				_, _ = fmt.Fprintf(stdout, "  %s\n", k.Key)
			}
		}
	}
	resultCode(cfg, stdout, ResultInfoOnly)
	return nil
}

// storedKeys lists the keys the store holds with their modification times
// where the store tracks them.
func storedKeys(s *session) ([]storedKeyJSON, error) {
	lister, ok := s.kv.(backend.Lister)
	if !ok {
		return []storedKeyJSON{}, nil
	}
	keys, err := lister.Keys(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored keys: %w", err)
	}

	modifier, _ := s.kv.(backend.Modifier)
	out := make([]storedKeyJSON, 0, len(keys))
	for _, key := range keys {
		entry := storedKeyJSON{Key: key}
		if modifier != nil {
			modified, found, err := modifier.Modified(s.ctx, key)
			if err != nil {
				return nil, fmt.Errorf("failed to read modification time of %s: %w", key, err)
			}
			if found {
				stamp := modified.UTC().Format(time.RFC3339)
				entry.Modified = &stamp
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// newLogCmd creates the 'log' subcommand
func newLogCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent notifications",
		Long: `Show the notifications recorded in the notification log, newest last.
Use --clear to delete the log and its rotated copy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			clearLog, _ := cmd.Flags().GetBool("clear")
			return withSession(cmd, cfg, stdout, args, func(s *session, _ []string) error {
				if clearLog {
					return doClearLog(s, cfg, stdout)
				}
				return doLog(s, limit, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().IntP("limit", "n", 20, "Show at most this many entries (0 for all)")
	cmd.Flags().Bool("clear", false, "Delete the notification log")
	return cmd
}

// doLog prints the most recent log entries
func doLog(s *session, limit int, cfg *Config, stdout io.Writer) error {
	entries, err := notification.ReadLog(s.app.GetNotificationLogPath())
	if err != nil {
		return fmt.Errorf("failed to read notification log: %w", err)
	}
	total := len(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	if s.json {
		out := make([]logEntryJSON, 0, len(entries))
		for _, n := range entries {
			out = append(out, logEntryJSON{
				Time:     n.Timestamp.UTC().Format(time.RFC3339),
				Severity: string(n.Severity),
				Message:  n.Message,
			})
		}
		return writeJSON(logResponse{Entries: out, Count: len(out), Total: total, Result: ResultInfoOnly}, stdout)
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(stdout, "No notifications logged.")
		resultCode(cfg, stdout, ResultInfoOnly)
		return nil
	}
	for _, n := range entries {
		_, _ = fmt.Fprintf(stdout, "%s [%s] %s\n", n.Timestamp.Local().Format("2006-01-02 15:04:05"), strings.ToUpper(string(n.Severity)), n.Message)
	}
	resultCode(cfg, stdout, ResultInfoOnly)
	return nil
}

// doClearLog deletes the notification log after confirmation
func doClearLog(s *session, cfg *Config, stdout io.Writer) error {
	if !s.json && !confirm(cfg, stdout, "Clear the notification log?") {
		_, _ = fmt.Fprintln(stdout, "Cancelled.")
		return nil
	}

	path := s.app.GetNotificationLogPath()
	if err := notification.ClearLog(path); err != nil {
		return err
	}

	if s.json {
		return writeJSON(actionResponse{Action: "clear-log", Path: path, Result: ResultActionCompleted}, stdout)
	}
	_, _ = fmt.Fprintln(stdout, "Notification log cleared.")
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}
