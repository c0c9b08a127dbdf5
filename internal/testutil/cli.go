// Package testutil provides shared test utilities for CLI testing across packages.
// This enables co-located CLI tests while maintaining consistent test infrastructure.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todobin/cmd/todobin/cmd"
)

// defaultTestConfig is the minimal config used by most test constructors to ensure isolation.
const defaultTestConfig = "# test config\nbackend: sqlite\n"

// FixedNow is the clock every CLITest runs with. Due-date statuses in tests
// are relative to it.
var FixedNow = time.Date(2025, time.January, 3, 9, 30, 0, 0, time.Local)

// CLITest provides a test helper for running CLI commands in isolation.
type CLITest struct {
	t          *testing.T
	cfg        *cmd.Config
	tmpDir     string
	configPath string // Path to config file for SetConfigValue
}

// NewCLITest creates a new CLI test helper with an isolated SQLite database.
func NewCLITest(t *testing.T) *CLITest {
	t.Helper()
	return newCLITest(t, defaultTestConfig)
}

// NewCLITestWithBackend creates a CLI test helper that stores tasks in the
// named backend (sqlite, file or memory).
func NewCLITestWithBackend(t *testing.T, backendName string) *CLITest {
	t.Helper()
	return newCLITest(t, "# test config\nbackend: "+backendName+"\n")
}

// NewCLITestWithConfig creates a CLI test helper with an empty config file.
// Use SetConfigValue or SetFullConfig to populate it.
func NewCLITestWithConfig(t *testing.T) *CLITest {
	t.Helper()
	return newCLITest(t, "# test config\n")
}

func newCLITest(t *testing.T, initialConfig string) *CLITest {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write a minimal default config to ensure isolation
	if err := os.WriteFile(configPath, []byte(initialConfig), 0644); err != nil {
		t.Fatalf("failed to create config file: %v", err)
	}

	cfg := &cmd.Config{
		NoPrompt:            true,
		ConfigPath:          configPath,
		DBPath:              filepath.Join(tmpDir, "test.db"),
		StoreDir:            filepath.Join(tmpDir, "store"),
		ExportDir:           filepath.Join(tmpDir, "exports"),
		NotificationLogPath: filepath.Join(tmpDir, "notifications.log"),
		Now:                 func() time.Time { return FixedNow },
	}

	return &CLITest{
		t:          t,
		cfg:        cfg,
		tmpDir:     tmpDir,
		configPath: configPath,
	}
}

// Config returns the test configuration.
func (c *CLITest) Config() *cmd.Config {
	return c.cfg
}

// TmpDir returns the temporary directory for the test.
func (c *CLITest) TmpDir() string {
	return c.tmpDir
}

// ExportDir returns the directory export writes to.
func (c *CLITest) ExportDir() string {
	return c.cfg.ExportDir
}

// NotificationLogPath returns the path of the notification log.
func (c *CLITest) NotificationLogPath() string {
	return c.cfg.NotificationLogPath
}

// SetConfigValue sets a configuration key-value pair in the test config file.
// This is used for testing configuration-based features like default_filter.
func (c *CLITest) SetConfigValue(key, value string) {
	c.t.Helper()

	// Read existing config
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		c.t.Fatalf("failed to read config file: %v", err)
	}

	// Append the new key-value pair
	newConfig := string(data) + key + ": " + value + "\n"

	if err := os.WriteFile(c.configPath, []byte(newConfig), 0644); err != nil {
		c.t.Fatalf("failed to write config file: %v", err)
	}
}

// SetFullConfig replaces the entire config file with the given YAML content.
func (c *CLITest) SetFullConfig(yamlContent string) {
	c.t.Helper()

	if err := os.WriteFile(c.configPath, []byte(yamlContent), 0644); err != nil {
		c.t.Fatalf("failed to write config file: %v", err)
	}
}

// SetNow moves the test clock.
func (c *CLITest) SetNow(now time.Time) {
	c.cfg.Now = func() time.Time { return now }
}

// SetStdin supplies the answers for confirmation prompts and turns prompts on.
func (c *CLITest) SetStdin(input string) {
	c.cfg.NoPrompt = false
	c.cfg.Stdin = strings.NewReader(input)
}

// ConfigPath returns the path to the config file.
func (c *CLITest) ConfigPath() string {
	return c.configPath
}

// Execute runs a CLI command with the given arguments and returns stdout, stderr, and exit code.
func (c *CLITest) Execute(args ...string) (stdout, stderr string, exitCode int) {
	c.t.Helper()

	var stdoutBuf, stderrBuf bytes.Buffer
	exitCode = cmd.Execute(args, &stdoutBuf, &stderrBuf, c.cfg)
	return stdoutBuf.String(), stderrBuf.String(), exitCode
}

// MustExecute runs a CLI command and fails the test if exit code is non-zero.
func (c *CLITest) MustExecute(args ...string) string {
	c.t.Helper()

	stdout, stderr, exitCode := c.Execute(args...)
	if exitCode != 0 {
		c.t.Fatalf("expected exit code 0, got %d: stdout=%s stderr=%s", exitCode, stdout, stderr)
	}
	return stdout
}

// ExecuteAndFail runs a CLI command and fails the test if exit code is zero.
func (c *CLITest) ExecuteAndFail(args ...string) (stdout, stderr string) {
	c.t.Helper()

	stdout, stderr, exitCode := c.Execute(args...)
	if exitCode == 0 {
		c.t.Fatalf("expected non-zero exit code, got 0: stdout=%s", stdout)
	}
	return stdout, stderr
}

// AssertContains fails the test if output doesn't contain expected string.
func AssertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

// AssertNotContains fails the test if output contains unexpected string.
func AssertNotContains(t *testing.T, output, unexpected string) {
	t.Helper()
	if strings.Contains(output, unexpected) {
		t.Errorf("expected output NOT to contain %q, got:\n%s", unexpected, output)
	}
}

// AssertExitCode fails the test if exit code doesn't match expected.
func AssertExitCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("expected exit code %d, got %d", want, got)
	}
}

// AssertResultCode verifies that the output ends with the expected result code.
func AssertResultCode(t *testing.T, output, expectedCode string) {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		t.Errorf("expected result code %q but output is empty", expectedCode)
		return
	}
	lastLine := strings.TrimSpace(lines[len(lines)-1])
	if lastLine != expectedCode {
		t.Errorf("expected result code %q, got %q\nFull output:\n%s", expectedCode, lastLine, output)
	}
}

// AssertOrder fails the test unless each string appears after the previous one.
func AssertOrder(t *testing.T, output string, parts ...string) {
	t.Helper()
	pos := 0
	for _, p := range parts {
		idx := strings.Index(output[pos:], p)
		if idx < 0 {
			t.Errorf("expected %q after position %d, got:\n%s", p, pos, output)
			return
		}
		pos += idx + len(p)
	}
}

// Result code constants for convenience.
const (
	ResultActionCompleted = cmd.ResultActionCompleted
	ResultInfoOnly        = cmd.ResultInfoOnly
	ResultError           = cmd.ResultError
)
