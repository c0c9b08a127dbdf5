package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// Sample Config Tests
// =============================================================================

// TestSampleConfigEmbedded verifies config.sample.yaml is embedded in binary via go:embed
func TestSampleConfigEmbedded(t *testing.T) {
	content := GetSampleConfig()

	if content == "" {
		t.Error("expected embedded sample config to have content, got empty string")
	}

	for _, key := range []string{"backend:", "backends:", "default_filter:", "notifications:", "ui:"} {
		if !strings.Contains(content, key) {
			t.Errorf("expected sample config to contain %q", key)
		}
	}
}

// TestSampleConfigCopyOnFirstRun verifies first run copies sample to the XDG config dir
func TestSampleConfigCopyOnFirstRun(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "config")
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv("HOME", tmpDir)

	if _, err := Load(""); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(configDir, "todobin", "config.yaml"))
	if err != nil {
		t.Fatalf("failed to read created config: %v", err)
	}
	if string(data) != GetSampleConfig() {
		t.Error("created config does not match the embedded sample")
	}
}

// TestSampleConfigMatchesDefaults verifies the sample parses to a valid config equal to the defaults
func TestSampleConfigMatchesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv("HOME", tmpDir)

	cfg, err := Parse([]byte(GetSampleConfig()))
	if err != nil {
		t.Fatalf("Parse(sample) error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}

	def := DefaultConfig()
	if cfg.Backend != def.Backend || cfg.GetDatabasePath() != def.GetDatabasePath() || cfg.GetFileDir() != def.GetFileDir() {
		t.Errorf("sample backends differ from defaults: %+v vs %+v", cfg.Backends, def.Backends)
	}
	if cfg.GetDefaultFilter() != def.GetDefaultFilter() || cfg.GetDebounceDuration() != def.GetDebounceDuration() {
		t.Errorf("sample differs from defaults: %+v", cfg)
	}
	if !cfg.IsLogNotificationEnabled() {
		t.Error("sample should enable log notifications")
	}
}
