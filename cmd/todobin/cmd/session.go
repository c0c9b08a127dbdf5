package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"todobin/backend"
	_ "todobin/backend/file"
	_ "todobin/backend/memory"
	_ "todobin/backend/sqlite"
	"todobin/internal/config"
	"todobin/internal/coordinator"
	"todobin/internal/notification"
	"todobin/internal/shutdown"
	"todobin/internal/utils"
)

// session is one command's view of the configured store
type session struct {
	ctx      context.Context
	app      *config.Config
	kv       backend.Store
	coord    *coordinator.Coordinator
	notifier notification.NotificationManager
	recorder *notification.Recorder
	shutdown *shutdown.Manager
	out      io.Writer
	json     bool
}

// openSession loads the config, opens the backend and restores both
// collections. Action messages are printed to stdout unless quiet or JSON
// output is requested.
func openSession(cmd *cobra.Command, cfg *Config, stdout io.Writer, quiet bool) (*session, error) {
	app, err := loadAppConfig(cmd, cfg)
	if err != nil {
		return nil, err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	jsonOutput = jsonOutput || cfg.OutputFormat == "json" || app.OutputFormat == "json"
	if app.NoPrompt {
		cfg.NoPrompt = true
	}

	kv, err := openStore(app)
	if err != nil {
		return nil, err
	}

	recorder := notification.NewRecorder()
	opts := []notification.Option{notification.WithChannel(recorder)}
	if !quiet && !jsonOutput {
		opts = append(opts, notification.WithChannel(notification.NewWriterChannel(stdout)))
	}
	notifier, err := notification.NewManager(notificationConfig(app), opts...)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	coordOpts := []coordinator.Option{
		coordinator.WithNotifier(notifier),
		coordinator.WithFilter(app.GetDefaultFilter()),
	}
	if cfg.Now != nil {
		coordOpts = append(coordOpts, coordinator.WithClock(cfg.Now))
	}

	s := &session{
		app:      app,
		kv:       kv,
		coord:    coordinator.New(kv, coordOpts...),
		notifier: notifier,
		recorder: recorder,
		shutdown: shutdown.NewManager(),
		out:      stdout,
		json:     jsonOutput,
	}
	s.shutdown.RegisterCloser("store", kv)
	s.shutdown.RegisterCloser("notifications", notifier)
	s.ctx = s.shutdown.Context()

	if err := s.coord.Load(s.ctx); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.coord.StorageErr(); err != nil {
		s.Close()
		return nil, err
	}
	utils.Debugf("opened %s backend: %d tasks, %d in recycle bin", app.Backend, len(s.coord.Tasks()), len(s.coord.Bin()))
	return s, nil
}

// Close releases the store and notification channels.
func (s *session) Close() {
	s.shutdown.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.shutdown.Wait(ctx); err != nil {
		utils.Warnf("shutdown: %v", err)
	}
}

// saved returns an error when the last action could not be persisted.
func (s *session) saved() error {
	if err := s.coord.StorageErr(); err != nil {
		return fmt.Errorf("changes were not saved: %w", err)
	}
	return nil
}

// message returns the last action message.
func (s *session) message() string {
	if n, ok := s.recorder.Last(); ok {
		return n.Message
	}
	return ""
}

// loadAppConfig reads the config file and applies Config and flag overrides.
func loadAppConfig(cmd *cobra.Command, cfg *Config) (*config.Config, error) {
	path := cfg.ConfigPath
	if flagPath, _ := cmd.Flags().GetString("config"); flagPath != "" {
		path = flagPath
	}

	app, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	backendName := cfg.Backend
	if flagBackend, _ := cmd.Flags().GetString("backend"); flagBackend != "" {
		backendName = flagBackend
	}
	app.ApplyFlags(cfg.NoPrompt, cfg.OutputFormat, backendName, "")

	if cfg.DBPath != "" {
		app.Backends.SQLite.Path = cfg.DBPath
	}
	if cfg.StoreDir != "" {
		app.Backends.File.Dir = cfg.StoreDir
	}
	if cfg.ExportDir != "" {
		app.ExportDir = cfg.ExportDir
	}
	if cfg.NotificationLogPath != "" {
		app.Notifications.LogPath = cfg.NotificationLogPath
	}

	if err := app.Validate(); err != nil {
		return nil, err
	}
	return app, nil
}

// openStore opens the configured backend
func openStore(app *config.Config) (backend.Store, error) {
	return backend.Open(app.Backend, backend.Options{
		Path: app.GetDatabasePath(),
		Dir:  app.GetFileDir(),
	})
}

// notificationConfig maps the notifications section onto channel settings
func notificationConfig(app *config.Config) *notification.Config {
	return &notification.Config{
		Enabled: true,
		OSNotification: notification.OSNotificationConfig{
			Enabled:   app.Notifications.OSEnabled,
			OnSuccess: true,
			OnInfo:    true,
			OnError:   true,
		},
		LogNotification: notification.LogNotificationConfig{
			Enabled:   app.IsLogNotificationEnabled(),
			Path:      app.GetNotificationLogPath(),
			MaxSizeMB: app.GetNotificationMaxSizeMB(),
		},
	}
}

// confirm asks a yes/no question unless prompts are disabled
func confirm(cfg *Config, stdout io.Writer, prompt string) bool {
	if cfg.NoPrompt {
		return true
	}
	return utils.PromptYesNoWithReader(prompt, promptInput(cfg), stdout)
}

// promptInput returns where interactive answers are read from
func promptInput(cfg *Config) io.Reader {
	if cfg.Stdin != nil {
		return cfg.Stdin
	}
	return os.Stdin
}
