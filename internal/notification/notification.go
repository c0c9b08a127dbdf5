// Package notification delivers the short user-facing messages produced after
// each task action to one or more channels (terminal, log file, desktop).
package notification

import (
	"time"
)

// Severity classifies a notification. Error is also used for destructive
// actions that succeeded (delete, purge).
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
)

// Notification is one message to deliver
type Notification struct {
	Severity  Severity
	Title     string
	Message   string
	Timestamp time.Time
}

// New builds a notification stamped with the current time.
func New(severity Severity, message string) Notification {
	return Notification{
		Severity:  severity,
		Title:     "todobin",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NotificationManager is the interface for managing notifications
type NotificationManager interface {
	Send(n Notification) error
	Close() error
	ChannelCount() int
}

// NotificationChannel is the interface for a notification channel
type NotificationChannel interface {
	Send(n Notification) error
	Close() error
}

// Config holds the notification configuration
type Config struct {
	Enabled         bool
	OSNotification  OSNotificationConfig
	LogNotification LogNotificationConfig
}

// OSNotificationConfig holds desktop notification configuration
type OSNotificationConfig struct {
	Enabled   bool
	OnSuccess bool
	OnInfo    bool
	OnError   bool
}

// LogNotificationConfig holds log notification configuration
type LogNotificationConfig struct {
	Enabled   bool
	Path      string
	MaxSizeMB int
}

// CommandExecutor is the interface for executing system commands
type CommandExecutor interface {
	Execute(cmd string, args ...string) error
}

// MockCommandExecutor is a mock implementation of CommandExecutor for testing
type MockCommandExecutor struct {
	ExecuteFunc func(cmd string, args ...string) error
}

// Execute implements CommandExecutor
func (m *MockCommandExecutor) Execute(cmd string, args ...string) error {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(cmd, args...)
	}
	return nil
}

// Option is a functional option for configuring notification channels
type Option func(interface{})

// WithCommandExecutor sets a custom command executor
func WithCommandExecutor(executor CommandExecutor) Option {
	return func(c interface{}) {
		if ch, ok := c.(*osNotificationChannel); ok {
			ch.executor = executor
		}
		if mgr, ok := c.(*manager); ok {
			mgr.commandExecutor = executor
		}
	}
}

// WithPlatform sets the platform for OS notifications
func WithPlatform(platform string) Option {
	return func(c interface{}) {
		if ch, ok := c.(*osNotificationChannel); ok {
			ch.platform = platform
		}
	}
}

// WithChannel adds an extra channel to a manager, e.g. a terminal writer.
func WithChannel(ch NotificationChannel) Option {
	return func(c interface{}) {
		if mgr, ok := c.(*manager); ok {
			mgr.extra = append(mgr.extra, ch)
		}
	}
}
