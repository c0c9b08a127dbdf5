package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"todobin/internal/utils"
)

// Version information, set at build time
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Result codes for CLI output (used in no-prompt mode)
const (
	ResultActionCompleted = "ACTION_COMPLETED"
	ResultInfoOnly        = "INFO_ONLY"
	ResultError           = "ERROR"
)

// Config holds application configuration
type Config struct {
	NoPrompt            bool
	Verbose             bool
	OutputFormat        string
	ConfigPath          string           // Path to config file (for testing)
	Backend             string           // Overrides the configured backend
	DBPath              string           // Path to database file (for testing)
	StoreDir            string           // Directory for the file backend (for testing)
	ExportDir           string           // Overrides export_dir
	NotificationLogPath string           // Path to notification log (for testing)
	Now                 func() time.Time // Clock (for testing)
	Stdin               io.Reader        // Input for confirmation prompts
}

// Execute runs the CLI with the given arguments and IO writers
func Execute(args []string, stdout, stderr io.Writer, cfg *Config) int {
	rootCmd := NewTodoBin(stdout, stderr, cfg)

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		if containsJSONFlag(args) {
			outputErrorJSON(err, stdout)
		} else {
			_, _ = fmt.Fprintln(stderr, "Error:", err)
			if cfg != nil && cfg.NoPrompt {
				_, _ = fmt.Fprintln(stdout, ResultError)
			}
		}
		return 1
	}
	return 0
}

// containsJSONFlag checks if args contain --json flag
func containsJSONFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--json" {
			return true
		}
	}
	return false
}

// NewTodoBin creates the root command with injectable IO
func NewTodoBin(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	if cfg == nil {
		cfg = &Config{}
	}

	cmd := &cobra.Command{
		Use:     "todobin",
		Short:   "A to-do list with a recycle bin",
		Long:    "todobin keeps a due-date ordered task list. Deleted tasks go to a recycle bin and can be restored until the bin is emptied.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyGlobalFlags(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("no-prompt", "y", false, "Disable interactive prompts")
	cmd.PersistentFlags().BoolP("verbose", "V", false, "Enable verbose/debug output")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().StringP("backend", "b", "", "Storage backend (sqlite, file, memory)")

	cmd.AddCommand(newAddCmd(stdout, cfg))
	cmd.AddCommand(newListCmd(stdout, cfg))
	cmd.AddCommand(newCompleteCmd(stdout, cfg))
	cmd.AddCommand(newUncompleteCmd(stdout, cfg))
	cmd.AddCommand(newEditCmd(stdout, cfg))
	cmd.AddCommand(newDueCmd(stdout, cfg))
	cmd.AddCommand(newDeleteCmd(stdout, cfg))
	cmd.AddCommand(newDeleteVisibleCmd(stdout, cfg))
	cmd.AddCommand(newBinCmd(stdout, cfg))
	cmd.AddCommand(newExportCmd(stdout, cfg))
	cmd.AddCommand(newImportCmd(stdout, cfg))
	cmd.AddCommand(newRemindCmd(stdout, cfg))
	cmd.AddCommand(newInfoCmd(stdout, cfg))
	cmd.AddCommand(newLogCmd(stdout, cfg))
	cmd.AddCommand(newTUICmd(stdout, stderr, cfg))
	cmd.AddCommand(newVersionCmd(stdout))

	return cmd
}

// applyGlobalFlags copies the no-prompt and verbose flags into cfg.
// Flags that pick storage are read per command by openSession.
func applyGlobalFlags(cmd *cobra.Command, cfg *Config) error {
	if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
		cfg.NoPrompt = true
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Verbose = true
	}
	utils.SetVerboseMode(cfg.Verbose)
	return nil
}

// newVersionCmd creates the 'version' subcommand
func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				jsonBytes, err := json.Marshal(versionResponse{Version: Version, Commit: Commit, BuildDate: BuildDate})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(stdout, string(jsonBytes))
				return nil
			}
			_, _ = fmt.Fprintln(stdout, "todobin")
			_, _ = fmt.Fprintf(stdout, "  Version: %s\n", Version)
			_, _ = fmt.Fprintf(stdout, "  Commit:  %s\n", Commit)
			_, _ = fmt.Fprintf(stdout, "  Built:   %s\n", BuildDate)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}
