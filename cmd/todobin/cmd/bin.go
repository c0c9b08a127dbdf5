package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"todobin/internal/views"
)

// newBinCmd creates the 'bin' subcommand for the recycle bin
func newBinCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	binCmd := &cobra.Command{
		Use:     "bin",
		Aliases: []string{"trash"},
		Short:   "View and manage the recycle bin",
		Long:    "View deleted tasks or use subcommands to restore or purge them.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, _ []string) error {
				return doBinView(s, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	binCmd.AddCommand(newBinListCmd(stdout, cfg))
	binCmd.AddCommand(newBinRestoreCmd(stdout, cfg))
	binCmd.AddCommand(newBinRestoreAllCmd(stdout, cfg))
	binCmd.AddCommand(newBinPurgeCmd(stdout, cfg))

	return binCmd
}

// newBinListCmd creates the 'bin list' subcommand
func newBinListCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List deleted tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, _ []string) error {
				return doBinView(s, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// doBinView displays the recycle bin entries in deletion order
func doBinView(s *session, cfg *Config, stdout io.Writer) error {
	bin := s.coord.Bin()

	if s.json {
		entries := make([]entryJSON, 0, len(bin))
		for _, e := range bin {
			entries = append(entries, entryToJSON(e, s.coord.Now()))
		}
		return writeJSON(binResponse{Entries: entries, Count: len(entries), Result: ResultInfoOnly}, stdout)
	}

	if len(bin) == 0 {
		_, _ = fmt.Fprintln(stdout, "Recycle bin is empty.")
		resultCode(cfg, stdout, ResultInfoOnly)
		return nil
	}

	_, _ = fmt.Fprintf(stdout, "Recycle bin (%d):\n\n", len(bin))
	views.RenderBin(stdout, bin)
	resultCode(cfg, stdout, ResultInfoOnly)
	return nil
}

// newBinRestoreCmd creates the 'bin restore' subcommand
func newBinRestoreCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "restore [task]",
		Short: "Restore a deleted task",
		Long:  "Move a deleted task back to the end of the list. The list is then ordered by due date.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, args []string) error {
				return doBinRestore(s, strings.Join(args, " "), cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// doBinRestore moves one entry back to the task list
func doBinRestore(s *session, searchTerm string, cfg *Config, stdout io.Writer) error {
	e, err := findEntry(s, searchTerm, cfg)
	if err != nil {
		return err
	}
	t, err := s.coord.RestoreTask(s.ctx, e.ID)
	if err != nil {
		return err
	}
	if err := s.saved(); err != nil {
		return err
	}

	if s.json {
		return outputActionJSON(s, "restore", &t, stdout)
	}
	_, _ = fmt.Fprintf(stdout, "Restored task: %s\n", describe(t))
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}

// newBinRestoreAllCmd creates the 'bin restore-all' subcommand
func newBinRestoreAllCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "restore-all",
		Short: "Restore every deleted task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, _ []string) error {
				return doBinRestoreAll(s, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// doBinRestoreAll moves every entry back in deletion order
func doBinRestoreAll(s *session, cfg *Config, stdout io.Writer) error {
	if len(s.coord.Bin()) == 0 {
		if s.json {
			return writeJSON(actionResponse{Action: "restore-all", Count: intPtr(0), Result: ResultInfoOnly}, stdout)
		}
		_, _ = fmt.Fprintln(stdout, "Recycle bin is empty.")
		resultCode(cfg, stdout, ResultInfoOnly)
		return nil
	}

	restored, err := s.coord.RestoreAll(s.ctx)
	if err != nil {
		return err
	}
	if err := s.saved(); err != nil {
		return err
	}

	if s.json {
		return writeJSON(actionResponse{
			Action:  "restore-all",
			Message: s.message(),
			Tasks:   tasksToJSON(restored, s.coord.Now()),
			Count:   intPtr(len(restored)),
			Result:  ResultActionCompleted,
		}, stdout)
	}
	_, _ = fmt.Fprintf(stdout, "Restored %d tasks\n", len(restored))
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}

// newBinPurgeCmd creates the 'bin purge' subcommand
func newBinPurgeCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "purge",
		Aliases: []string{"empty"},
		Short:   "Permanently delete everything in the recycle bin",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, stdout, args, func(s *session, _ []string) error {
				return doBinPurge(s, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// doBinPurge empties the recycle bin after confirmation
func doBinPurge(s *session, cfg *Config, stdout io.Writer) error {
	count := len(s.coord.Bin())
	if count == 0 {
		if s.json {
			return writeJSON(actionResponse{Action: "purge", Count: intPtr(0), Result: ResultInfoOnly}, stdout)
		}
		_, _ = fmt.Fprintln(stdout, "Recycle bin is empty.")
		resultCode(cfg, stdout, ResultInfoOnly)
		return nil
	}

	if !s.json && !confirm(cfg, stdout, fmt.Sprintf("Permanently delete %d tasks from the recycle bin?", count)) {
		_, _ = fmt.Fprintln(stdout, "Cancelled.")
		return nil
	}

	if err := s.coord.PurgeBin(s.ctx); err != nil {
		return err
	}
	if err := s.saved(); err != nil {
		return err
	}

	if s.json {
		return writeJSON(actionResponse{Action: "purge", Message: s.message(), Count: intPtr(count), Result: ResultActionCompleted}, stdout)
	}
	_, _ = fmt.Fprintf(stdout, "Purged %d tasks\n", count)
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}
