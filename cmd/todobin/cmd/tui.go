package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"todobin/backend"
	"todobin/internal/tui"
	"todobin/internal/utils"
	"todobin/internal/watcher"
)

// newTUICmd creates the 'tui' subcommand
func newTUICmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive terminal UI",
		Long: `Launch a two-pane terminal UI with the task list on the left and the
recycle bin on the right. Press ? inside the UI for key bindings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			return doTUI(cmd, watch, cfg, stdout, stderr)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().BoolP("watch", "w", false, "Reload when another process changes the store")
	return cmd
}

// doTUI runs the terminal UI until the user quits or a signal arrives
func doTUI(cmd *cobra.Command, watch bool, cfg *Config, stdout, stderr io.Writer) error {
	if cfg.Stdin == nil && !term.IsTerminal(int(os.Stdin.Fd())) {
		return utils.WrapWithSuggestion(fmt.Errorf("the TUI needs an interactive terminal"), "Use 'todobin list' and the other subcommands in scripts")
	}

	s, err := openSession(cmd, cfg, stdout, true)
	if err != nil {
		return err
	}
	defer s.Close()

	stopSignals := s.shutdown.HandleSignals()
	defer stopSignals()

	// Log lines would corrupt the screen while the TUI owns it.
	logDir := filepath.Dir(s.app.GetNotificationLogPath())
	if err := os.MkdirAll(logDir, 0755); err == nil {
		restore, err := utils.GetLogger().RedirectToFile(filepath.Join(logDir, "todobin.log"))
		if err != nil {
			utils.Warnf("%v", err)
		} else {
			defer restore()
		}
	}

	model := tui.New(s.coord, s.recorder).WithContext(s.ctx)
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(s.ctx),
		tea.WithOutput(stdout),
	}
	if cfg.Stdin != nil {
		opts = append(opts, tea.WithInput(cfg.Stdin))
	}
	p := tea.NewProgram(model, opts...)

	if watch || s.app.IsWatchEnabled() {
		if loc, ok := s.kv.(backend.Locator); ok {
			w, err := watcher.New(&watcher.Config{
				Paths:            []string{loc.Location()},
				DebounceDuration: s.app.GetDebounceDuration(),
				OnChange:         func() { p.Send(tui.ReloadMsg{}) },
			})
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()
			utils.Debugf("watching %s for changes", loc.Location())
		} else {
			_, _ = fmt.Fprintf(stderr, "Warning: the %s backend cannot be watched for changes\n", s.app.Backend)
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
