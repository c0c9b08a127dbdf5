// Package config handles application configuration
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"todobin/internal/utils"
	"todobin/internal/views"
)

//go:embed config.sample.yaml
var sampleConfig string

// GetSampleConfig returns the embedded sample configuration content
func GetSampleConfig() string {
	return sampleConfig
}

// Config represents the application configuration
type Config struct {
	Backend       string              `yaml:"backend"`
	Backends      BackendsConfig      `yaml:"backends"`
	DefaultFilter string              `yaml:"default_filter"`
	OutputFormat  string              `yaml:"output_format"`
	NoPrompt      bool                `yaml:"no_prompt"`
	ExportDir     string              `yaml:"export_dir"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Reminder      ReminderConfig      `yaml:"reminder"`
	UI            UIConfig            `yaml:"ui"`
}

// BackendsConfig holds configuration for all backends
type BackendsConfig struct {
	SQLite SQLiteConfig `yaml:"sqlite"`
	File   FileConfig   `yaml:"file"`
}

// SQLiteConfig holds SQLite backend configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// FileConfig holds file backend configuration
type FileConfig struct {
	Dir string `yaml:"dir"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	LogEnabled *bool  `yaml:"log_enabled"` // default: true
	LogPath    string `yaml:"log_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	OSEnabled  bool   `yaml:"os_enabled"`
}

// ReminderConfig holds due-date reminder settings
type ReminderConfig struct {
	Enabled        bool   `yaml:"enabled"`
	IncludeToday   bool   `yaml:"include_today"`
	Within         string `yaml:"within"`
	OSNotification bool   `yaml:"os_notification"`
}

// UIConfig holds terminal UI settings
type UIConfig struct {
	Watch      bool `yaml:"watch"`
	DebounceMs int  `yaml:"debounce_ms"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: "sqlite",
		Backends: BackendsConfig{
			SQLite: SQLiteConfig{Path: filepath.Join(GetDataDir(), "todobin.db")},
			File:   FileConfig{Dir: filepath.Join(GetDataDir(), "store")},
		},
		DefaultFilter: string(views.FilterAll),
		OutputFormat:  "text",
		Reminder: ReminderConfig{
			Enabled:      true,
			IncludeToday: true,
		},
		UI: UIConfig{DebounceMs: 300},
	}
}

// Load loads configuration from the specified path, or the default XDG path if empty.
// If the config file doesn't exist, it creates one from the sample and returns defaults.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = filepath.Join(GetConfigDir(), "config.yaml")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse reads YAML on top of the defaults, so unset fields keep their
// default values.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file: %w", err)
	}
	cfg.expandPaths()
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path without creating it.
// A missing file returns nil, nil.
func LoadFromPath(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config path is required")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

func (c *Config) expandPaths() {
	c.Backends.SQLite.Path = ExpandPath(c.Backends.SQLite.Path)
	c.Backends.File.Dir = ExpandPath(c.Backends.File.Dir)
	c.ExportDir = ExpandPath(c.ExportDir)
	c.Notifications.LogPath = ExpandPath(c.Notifications.LogPath)
}

// save writes the embedded sample config to path
func (c *Config) save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OutputFormat != "text" && c.OutputFormat != "json" {
		return fmt.Errorf("invalid output_format: %q (must be 'text' or 'json')", c.OutputFormat)
	}

	validBackends := map[string]bool{"sqlite": true, "file": true, "memory": true}
	if !validBackends[c.Backend] {
		return fmt.Errorf("unknown backend: %q (must be 'sqlite', 'file' or 'memory')", c.Backend)
	}
	switch c.Backend {
	case "sqlite":
		if c.Backends.SQLite.Path == "" {
			return utils.ErrBackendNotConfigured("sqlite")
		}
	case "file":
		if c.Backends.File.Dir == "" {
			return utils.ErrBackendNotConfigured("file")
		}
	}

	if _, err := views.ParseFilter(c.DefaultFilter); err != nil {
		return fmt.Errorf("invalid default_filter: %w", err)
	}

	if c.Notifications.MaxSizeMB < 0 {
		return fmt.Errorf("notifications.max_size_mb must not be negative, got %d", c.Notifications.MaxSizeMB)
	}
	if c.UI.DebounceMs < 0 {
		return fmt.Errorf("ui.debounce_ms must not be negative, got %d", c.UI.DebounceMs)
	}

	return nil
}

// ApplyFlags applies CLI flag overrides to the configuration
func (c *Config) ApplyFlags(noPrompt bool, outputFormat, backendName, filter string) {
	if noPrompt {
		c.NoPrompt = true
	}
	if outputFormat != "" {
		c.OutputFormat = outputFormat
	}
	if backendName != "" {
		c.Backend = backendName
	}
	if filter != "" {
		c.DefaultFilter = filter
	}
}

// GetDatabasePath returns the path to the SQLite database
func (c *Config) GetDatabasePath() string {
	return c.Backends.SQLite.Path
}

// GetFileDir returns the file backend directory
func (c *Config) GetFileDir() string {
	return c.Backends.File.Dir
}

// GetDefaultFilter returns the configured start-up filter, or all when the
// value does not parse.
func (c *Config) GetDefaultFilter() views.FilterKind {
	kind, err := views.ParseFilter(c.DefaultFilter)
	if err != nil {
		return views.FilterAll
	}
	return kind
}

// GetExportDir returns where exports are written.
// Returns the current directory if not configured.
func (c *Config) GetExportDir() string {
	if c.ExportDir == "" {
		return "."
	}
	return c.ExportDir
}

// IsLogNotificationEnabled returns true if notifications are appended to the log file.
// Returns true (default) if not configured.
func (c *Config) IsLogNotificationEnabled() bool {
	if c.Notifications.LogEnabled == nil {
		return true
	}
	return *c.Notifications.LogEnabled
}

// GetNotificationLogPath returns the notification log path.
// Defaults to notifications.log in the data directory.
func (c *Config) GetNotificationLogPath() string {
	if c.Notifications.LogPath == "" {
		return filepath.Join(GetDataDir(), "notifications.log")
	}
	return c.Notifications.LogPath
}

// GetNotificationMaxSizeMB returns the log size that triggers rotation.
// Returns 1 if not configured.
func (c *Config) GetNotificationMaxSizeMB() int {
	if c.Notifications.MaxSizeMB <= 0 {
		return 1
	}
	return c.Notifications.MaxSizeMB
}

// IsWatchEnabled returns true if the TUI reloads on external changes.
func (c *Config) IsWatchEnabled() bool {
	return c.UI.Watch
}

// GetDebounceDuration returns the watcher debounce.
// Returns 300ms if not configured.
func (c *Config) GetDebounceDuration() time.Duration {
	if c.UI.DebounceMs <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.UI.DebounceMs) * time.Millisecond
}

// getXDGDir returns a directory path following XDG spec.
// envVar is the XDG environment variable (e.g., "XDG_CONFIG_HOME").
// fallbackPath is the relative path from home (e.g., ".config").
func getXDGDir(envVar, fallbackPath string) string {
	if xdgDir := os.Getenv(envVar); xdgDir != "" {
		return filepath.Join(xdgDir, "todobin")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", fallbackPath, "todobin")
	}
	return filepath.Join(home, fallbackPath, "todobin")
}

// GetConfigDir returns the configuration directory following XDG spec
func GetConfigDir() string {
	return getXDGDir("XDG_CONFIG_HOME", ".config")
}

// GetDataDir returns the data directory following XDG spec
func GetDataDir() string {
	return getXDGDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
