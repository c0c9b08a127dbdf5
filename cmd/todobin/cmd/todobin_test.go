package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todobin/internal/utils"
)

// =============================================================================
// Core CLI Tests
// These tests verify basic CLI functionality: help, version, flags, and arg parsing.
// Feature-specific CLI tests are co-located with their feature code:
// - Task and recycle bin commands: internal/coordinator/cli_test.go
// - Export and import: internal/transfer/cli_test.go
// - Backends: backend/file/cli_test.go
// =============================================================================

// newTestConfig returns a Config isolated in a temp directory
func newTestConfig(t *testing.T) *Config {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("backend: sqlite\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	now := time.Date(2025, time.January, 3, 12, 0, 0, 0, time.Local)
	return &Config{
		NoPrompt:            true,
		ConfigPath:          configPath,
		DBPath:              filepath.Join(tmpDir, "test.db"),
		ExportDir:           filepath.Join(tmpDir, "exports"),
		NotificationLogPath: filepath.Join(tmpDir, "notifications.log"),
		Now:                 func() time.Time { return now },
	}
}

// --- Help and Version Tests ---

// TestHelpFlagCoreCLI verifies that --help displays usage information
func TestHelpFlagCoreCLI(t *testing.T) {
	var stdout, stderr bytes.Buffer

	exitCode := Execute([]string{"--help"}, &stdout, &stderr, nil)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, stderr.String())
	}

	output := stdout.String()
	if !strings.Contains(output, "todobin") {
		t.Errorf("help output should contain 'todobin', got: %s", output)
	}
	if !strings.Contains(output, "Usage:") {
		t.Errorf("help output should contain 'Usage:', got: %s", output)
	}
	for _, sub := range []string{"add", "bin", "delete-visible", "export", "import", "info", "log", "tui"} {
		if !strings.Contains(output, sub) {
			t.Errorf("help output should list '%s', got: %s", sub, output)
		}
	}
}

// TestVersionFlagCoreCLI verifies that --version displays version string
func TestVersionFlagCoreCLI(t *testing.T) {
	var stdout, stderr bytes.Buffer

	exitCode := Execute([]string{"--version"}, &stdout, &stderr, nil)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, stderr.String())
	}

	output := stdout.String()
	if !strings.Contains(output, "todobin") {
		t.Errorf("version output should contain 'todobin', got: %s", output)
	}
}

// TestVersionCommand verifies that 'todobin version' displays build info
func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer

	exitCode := Execute([]string{"version"}, &stdout, &stderr, nil)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, stderr.String())
	}

	output := stdout.String()
	for _, want := range []string{"Version:", "Commit:", "Built:"} {
		if !strings.Contains(output, want) {
			t.Errorf("version output should contain '%s', got: %s", want, output)
		}
	}
}

// TestVersionJSON verifies that 'todobin --json version' returns JSON with version fields
func TestVersionJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer

	exitCode := Execute([]string{"--json", "version"}, &stdout, &stderr, nil)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, stderr.String())
	}

	var result map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("expected valid JSON output, got: %s, error: %v", stdout.String(), err)
	}
	for _, field := range []string{"version", "commit", "build_date"} {
		if _, ok := result[field]; !ok {
			t.Errorf("JSON output should contain '%s' field, got: %v", field, result)
		}
	}
}

// --- Global Flag Tests ---

// TestNoPromptFlagCoreCLI verifies that -y / --no-prompt flag is recognized
func TestNoPromptFlagCoreCLI(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"short flag", []string{"-y", "--help"}},
		{"long flag", []string{"--no-prompt", "--help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			exitCode := Execute(tt.args, &stdout, &stderr, nil)

			if exitCode != 0 {
				t.Fatalf("expected exit code 0, got %d: stderr=%s", exitCode, stderr.String())
			}
		})
	}
}

// TestVerboseModeEnabledCoreCLI verifies that -V sends debug messages to the logger
func TestVerboseModeEnabledCoreCLI(t *testing.T) {
	cfg := newTestConfig(t)

	var logBuf bytes.Buffer
	utils.GetLogger().SetOutput(&logBuf)
	defer func() {
		utils.GetLogger().SetOutput(nil)
		utils.SetVerboseMode(false)
	}()

	var stdout, stderr bytes.Buffer
	exitCode := Execute([]string{"-V", "list"}, &stdout, &stderr, cfg)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: stderr=%s", exitCode, stderr.String())
	}
	if !strings.Contains(logBuf.String(), "[DEBUG]") {
		t.Errorf("verbose mode should log debug messages, got: %s", logBuf.String())
	}
}

// --- Error Handling Tests ---

// TestUnknownCommandCoreCLI verifies that unknown commands fail with an error
func TestUnknownCommandCoreCLI(t *testing.T) {
	var stdout, stderr bytes.Buffer

	exitCode := Execute([]string{"frobnicate"}, &stdout, &stderr, &Config{NoPrompt: true})

	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(stderr.String(), "Error:") {
		t.Errorf("stderr should contain 'Error:', got: %s", stderr.String())
	}
	if !strings.Contains(stdout.String(), ResultError) {
		t.Errorf("stdout should contain %s in no-prompt mode, got: %s", ResultError, stdout.String())
	}
}

// TestErrorJSONCoreCLI verifies that errors are reported as JSON with --json
func TestErrorJSONCoreCLI(t *testing.T) {
	cfg := newTestConfig(t)
	var stdout, stderr bytes.Buffer

	exitCode := Execute([]string{"--json", "complete", "nothing here"}, &stdout, &stderr, cfg)

	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode)
	}
	var resp errorResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("expected JSON error, got: %s (%v)", stdout.String(), err)
	}
	if resp.Result != ResultError {
		t.Errorf("expected result %s, got %s", ResultError, resp.Result)
	}
	if !strings.Contains(resp.Error, "nothing here") {
		t.Errorf("error should name the search term, got: %s", resp.Error)
	}
}

// TestUnknownBackendCoreCLI verifies that an unregistered backend is rejected
func TestUnknownBackendCoreCLI(t *testing.T) {
	cfg := newTestConfig(t)
	var stdout, stderr bytes.Buffer

	exitCode := Execute([]string{"--backend", "postgres", "list"}, &stdout, &stderr, cfg)

	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(stderr.String(), "postgres") {
		t.Errorf("error should name the backend, got: %s", stderr.String())
	}
}

// --- Matching Tests ---

func TestMatchTasksPrefersExactText(t *testing.T) {
	cfg := newTestConfig(t)
	var stdout, stderr bytes.Buffer

	for _, text := range []string{"Buy milk", "Buy milk and eggs"} {
		if code := Execute([]string{"add", text}, &stdout, &stderr, cfg); code != 0 {
			t.Fatalf("add %q failed: %s", text, stderr.String())
		}
	}

	stdout.Reset()
	if code := Execute([]string{"complete", "buy milk"}, &stdout, &stderr, cfg); code != 0 {
		t.Fatalf("complete failed: %s", stderr.String())
	}
	if !strings.Contains(stdout.String(), "Completed task: Buy milk\n") {
		t.Errorf("expected exact match to win, got: %s", stdout.String())
	}
}

func TestMatchTasksAmbiguous(t *testing.T) {
	cfg := newTestConfig(t)
	var stdout, stderr bytes.Buffer

	for _, text := range []string{"Buy milk", "Buy bread"} {
		if code := Execute([]string{"add", text}, &stdout, &stderr, cfg); code != 0 {
			t.Fatalf("add %q failed: %s", text, stderr.String())
		}
	}

	stderr.Reset()
	if code := Execute([]string{"delete", "buy"}, &stdout, &stderr, cfg); code != 1 {
		t.Fatalf("expected exit code 1 for ambiguous match, got %d", code)
	}
	if !strings.Contains(stderr.String(), `multiple tasks match "buy"`) {
		t.Errorf("expected ambiguity error, got: %s", stderr.String())
	}
}
