package notification

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// logTimeLayout stamps each line in UTC with second precision.
const logTimeLayout = "2006-01-02T15:04:05Z"

// logChannel appends one line per notification to a file and rotates it to
// <path>.old when it would grow past the size limit.
type logChannel struct {
	path     string
	maxBytes int64

	mu   sync.Mutex
	file *os.File
	size int64
}

// NewLogNotificationChannel creates a channel writing to cfg.Path. A
// MaxSizeMB of zero disables rotation.
func NewLogNotificationChannel(cfg *LogNotificationConfig) NotificationChannel {
	return &logChannel{
		path:     cfg.Path,
		maxBytes: int64(cfg.MaxSizeMB) * 1024 * 1024,
	}
}

// formatLogLine renders n as "<UTC time> [SEVERITY] message".
func formatLogLine(n Notification) string {
	return fmt.Sprintf("%s [%s] %s", n.Timestamp.UTC().Format(logTimeLayout), strings.ToUpper(string(n.Severity)), n.Message)
}

// parseLogLine reverses formatLogLine. ok is false for any other shape.
func parseLogLine(line string) (n Notification, ok bool) {
	stamp, rest, found := strings.Cut(line, " [")
	if !found {
		return Notification{}, false
	}
	severity, message, found := strings.Cut(rest, "] ")
	if !found {
		return Notification{}, false
	}
	ts, err := time.Parse(logTimeLayout, stamp)
	if err != nil {
		return Notification{}, false
	}
	return Notification{
		Severity:  Severity(strings.ToLower(severity)),
		Message:   message,
		Timestamp: ts,
	}, true
}

// Send appends n to the log, rotating first if the line would not fit.
func (c *logChannel) Send(n Notification) error {
	line := formatLogLine(n) + "\n"

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.open(); err != nil {
		return err
	}
	if c.maxBytes > 0 && c.size > 0 && c.size+int64(len(line)) > c.maxBytes {
		if err := c.rotate(); err != nil {
			return err
		}
	}

	written, err := c.file.WriteString(line)
	c.size += int64(written)
	if err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	return c.file.Sync()
}

// open opens the log for appending on first use. Callers hold c.mu.
func (c *logChannel) open() error {
	if c.file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	c.file = file
	c.size = info.Size()
	return nil
}

// rotate moves the full log aside and starts an empty one. Callers hold c.mu.
func (c *logChannel) rotate() error {
	_ = c.file.Close()
	c.file = nil
	if err := os.Rename(c.path, c.path+".old"); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	return c.open()
}

// Close closes the log file
func (c *logChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

// ReadLog returns the notifications recorded at path, oldest first. A
// missing log has no entries; lines written in another format are skipped.
func ReadLog(path string) ([]Notification, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var entries []Notification
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if n, ok := parseLogLine(scanner.Text()); ok {
			entries = append(entries, n)
		}
	}
	return entries, scanner.Err()
}

// ClearLog removes the log at path and its rotated copy.
func ClearLog(path string) error {
	for _, p := range []string{path, path + ".old"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to clear notification log: %w", err)
		}
	}
	return nil
}
