package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"todobin/internal/transfer"
)

// newExportCmd creates the 'export' subcommand
func newExportCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks to a file",
		Long:  "Write the task list to To_Do_Tasks_Exported_<date>_<time>.<format> in the export directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			dir, _ := cmd.Flags().GetString("dir")
			return withSession(cmd, cfg, stdout, args, func(s *session, _ []string) error {
				return doExport(s, formatName, dir, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().String("format", "json", "Export format: json or md")
	cmd.Flags().String("dir", "", "Directory to write to (default: export_dir from config)")
	return cmd
}

// doExport writes the task list to a new file
func doExport(s *session, formatName, dir string, cfg *Config, stdout io.Writer) error {
	format, err := transfer.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = s.app.GetExportDir()
	}

	path, err := s.coord.ExportTasks(dir, format)
	if err != nil {
		return err
	}

	count := len(s.coord.Tasks())
	if s.json {
		return writeJSON(actionResponse{Action: "export", Message: s.message(), Path: path, Count: intPtr(count), Result: ResultActionCompleted}, stdout)
	}
	_, _ = fmt.Fprintf(stdout, "Exported %d tasks to %s\n", count, path)
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}

// newImportCmd creates the 'import' subcommand
func newImportCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the task list with the contents of a file",
		Long:  "Replace the task list with the tasks in a JSON or Markdown file. A malformed file is rejected and nothing changes. The recycle bin is not touched.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			return withSession(cmd, cfg, stdout, args, func(s *session, args []string) error {
				return doImport(s, args[0], formatName, cfg, stdout)
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().String("format", "", "Import format: json or md (default: from file extension)")
	return cmd
}

// doImport replaces the task list from path
func doImport(s *session, path, formatName string, cfg *Config, stdout io.Writer) error {
	var format transfer.Format
	if formatName != "" {
		var err error
		if format, err = transfer.ParseFormat(formatName); err != nil {
			return err
		}
	}

	tasks, err := s.coord.ImportFile(s.ctx, path, format)
	if err != nil {
		return err
	}
	if err := s.saved(); err != nil {
		return err
	}

	if s.json {
		return writeJSON(actionResponse{
			Action:  "import",
			Message: s.message(),
			Tasks:   tasksToJSON(tasks, s.coord.Now()),
			Count:   intPtr(len(tasks)),
			Path:    path,
			Result:  ResultActionCompleted,
		}, stdout)
	}
	_, _ = fmt.Fprintf(stdout, "Imported %d tasks from %s\n", len(tasks), path)
	resultCode(cfg, stdout, ResultActionCompleted)
	return nil
}
