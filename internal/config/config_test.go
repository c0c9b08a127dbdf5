package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"todobin/internal/views"
)

// =============================================================================
// Configuration System Tests
// =============================================================================

func setXDG(t *testing.T) (configDir, dataDir string) {
	t.Helper()
	tmpDir := t.TempDir()
	configDir = filepath.Join(tmpDir, "config")
	dataDir = filepath.Join(tmpDir, "data")
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("XDG_DATA_HOME", dataDir)
	t.Setenv("HOME", tmpDir)
	return configDir, dataDir
}

// TestConfigAutoCreate verifies first run creates config file at XDG path with defaults
func TestConfigAutoCreate(t *testing.T) {
	configDir, dataDir := setXDG(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	configPath := filepath.Join(configDir, "todobin", "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Errorf("config file not created at %s", configPath)
	}

	if cfg.Backend != "sqlite" {
		t.Errorf("expected Backend = 'sqlite', got %q", cfg.Backend)
	}
	if cfg.OutputFormat != "text" {
		t.Errorf("expected OutputFormat = 'text', got %q", cfg.OutputFormat)
	}
	wantDB := filepath.Join(dataDir, "todobin", "todobin.db")
	if cfg.GetDatabasePath() != wantDB {
		t.Errorf("expected database path %q, got %q", wantDB, cfg.GetDatabasePath())
	}
}

// TestConfigCustomPath verifies a given path is read and overrides defaults
func TestConfigCustomPath(t *testing.T) {
	setXDG(t)
	tmpDir := t.TempDir()

	customConfigPath := filepath.Join(tmpDir, "custom-config.yaml")
	customConfig := `
backend: file
backends:
  file:
    dir: "/custom/store"
default_filter: pending
no_prompt: true
output_format: json
ui:
  watch: true
`
	if err := os.WriteFile(customConfigPath, []byte(customConfig), 0644); err != nil {
		t.Fatalf("failed to write custom config: %v", err)
	}

	cfg, err := Load(customConfigPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend != "file" {
		t.Errorf("expected Backend = 'file', got %q", cfg.Backend)
	}
	if cfg.GetFileDir() != "/custom/store" {
		t.Errorf("expected file dir '/custom/store', got %q", cfg.GetFileDir())
	}
	if cfg.GetDefaultFilter() != views.FilterPending {
		t.Errorf("expected pending filter, got %q", cfg.GetDefaultFilter())
	}
	if !cfg.NoPrompt || cfg.OutputFormat != "json" || !cfg.IsWatchEnabled() {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.GetDatabasePath() == "" {
		t.Error("expected sqlite default path to survive partial config")
	}
}

// TestConfigInvalidYAML verifies a parse error is reported
func TestConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("backend: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

// TestLoadFromPathMissing verifies a missing file yields nil without creating it
func TestLoadFromPathMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	cfg, err := LoadFromPath(path)
	if err != nil || cfg != nil {
		t.Fatalf("LoadFromPath = %v, %v", cfg, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("LoadFromPath created the file")
	}
}

func TestValidate(t *testing.T) {
	setXDG(t)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"file backend", func(c *Config) { c.Backend = "file" }, false},
		{"memory backend", func(c *Config) { c.Backend = "memory" }, false},
		{"unknown backend", func(c *Config) { c.Backend = "todoist" }, true},
		{"sqlite without path", func(c *Config) { c.Backends.SQLite.Path = "" }, true},
		{"file without dir", func(c *Config) { c.Backend = "file"; c.Backends.File.Dir = "" }, true},
		{"bad output format", func(c *Config) { c.OutputFormat = "xml" }, true},
		{"bad filter", func(c *Config) { c.DefaultFilter = "someday" }, true},
		{"filter alias", func(c *Config) { c.DefaultFilter = "due-today" }, false},
		{"negative log size", func(c *Config) { c.Notifications.MaxSizeMB = -1 }, true},
		{"negative debounce", func(c *Config) { c.UI.DebounceMs = -5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	setXDG(t)
	cfg := DefaultConfig()

	cfg.ApplyFlags(false, "", "", "")
	if cfg.NoPrompt || cfg.OutputFormat != "text" || cfg.Backend != "sqlite" {
		t.Errorf("empty flags changed config: %+v", cfg)
	}

	cfg.ApplyFlags(true, "json", "file", "overdue")
	if !cfg.NoPrompt || cfg.OutputFormat != "json" || cfg.Backend != "file" || cfg.GetDefaultFilter() != views.FilterOverdue {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestGetters(t *testing.T) {
	_, dataDir := setXDG(t)
	cfg := DefaultConfig()

	if cfg.GetExportDir() != "." {
		t.Errorf("GetExportDir = %q", cfg.GetExportDir())
	}
	if !cfg.IsLogNotificationEnabled() {
		t.Error("log notifications should default to enabled")
	}
	disabled := false
	cfg.Notifications.LogEnabled = &disabled
	if cfg.IsLogNotificationEnabled() {
		t.Error("explicit log_enabled: false ignored")
	}
	if want := filepath.Join(dataDir, "todobin", "notifications.log"); cfg.GetNotificationLogPath() != want {
		t.Errorf("GetNotificationLogPath = %q, want %q", cfg.GetNotificationLogPath(), want)
	}
	if cfg.GetNotificationMaxSizeMB() != 1 {
		t.Errorf("GetNotificationMaxSizeMB = %d", cfg.GetNotificationMaxSizeMB())
	}
	if cfg.GetDebounceDuration() != 300*time.Millisecond {
		t.Errorf("GetDebounceDuration = %v", cfg.GetDebounceDuration())
	}
	cfg.DefaultFilter = "nonsense"
	if cfg.GetDefaultFilter() != views.FilterAll {
		t.Errorf("GetDefaultFilter fallback = %q", cfg.GetDefaultFilter())
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TODOBIN_TEST_DIR", "/srv/tasks")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~/tasks.db", filepath.Join(home, "tasks.db")},
		{"$TODOBIN_TEST_DIR/tasks.db", "/srv/tasks/tasks.db"},
		{"/abs/path", "/abs/path"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
