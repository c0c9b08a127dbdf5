// Package reminder reports pending tasks that are overdue, due today or due
// within a configured window.
package reminder

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"todobin/internal/dates"
	"todobin/internal/notification"
	"todobin/internal/task"
)

// Config holds the reminder configuration
type Config struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	IncludeToday bool   `yaml:"include_today" json:"include_today"`
	Within       string `yaml:"within" json:"within"` // upcoming window, e.g. "3d"; empty disables
}

// Kind classifies a reminder.
type Kind string

const (
	KindOverdue  Kind = "overdue"
	KindToday    Kind = "today"
	KindUpcoming Kind = "upcoming"
)

// Reminder is one task that needs attention.
type Reminder struct {
	Task task.Task
	Kind Kind
	Due  time.Time
}

// Message formats the reminder for a notification or a terminal line.
func (r Reminder) Message() string {
	switch r.Kind {
	case KindOverdue:
		return fmt.Sprintf("Overdue: %s (Due: %s)", r.Task.Text, dates.Format(r.Due))
	case KindToday:
		return fmt.Sprintf("Due today: %s", r.Task.Text)
	default:
		return fmt.Sprintf("Upcoming: %s (Due: %s)", r.Task.Text, dates.Format(r.Due))
	}
}

// Notifier receives reminder notifications.
type Notifier interface {
	Send(n notification.Notification) error
}

// Service computes and sends reminders
type Service struct {
	config   *Config
	window   time.Duration
	notifier Notifier
}

// NewService creates a new reminder service
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	s := &Service{config: cfg}
	if cfg.Within != "" {
		d, err := ParseInterval(cfg.Within)
		if err != nil {
			return nil, err
		}
		s.window = d
	}
	return s, nil
}

// SetNotifier sets where reminders are sent
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Check returns reminders for pending tasks in list order: overdue first,
// then due today, then upcoming. Completed and undated tasks never remind.
func (s *Service) Check(tasks []task.Task, now time.Time) []Reminder {
	if !s.config.Enabled {
		return nil
	}

	var overdue, today, upcoming []Reminder
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		due, ok := dates.Parse(t.DueDate, now.Location())
		if !ok {
			continue
		}
		switch dates.Classify(due, now) {
		case dates.Overdue:
			overdue = append(overdue, Reminder{Task: t, Kind: KindOverdue, Due: due})
		case dates.Today:
			if s.config.IncludeToday {
				today = append(today, Reminder{Task: t, Kind: KindToday, Due: due})
			}
		case dates.Future:
			if s.window > 0 && due.Sub(now) <= s.window {
				upcoming = append(upcoming, Reminder{Task: t, Kind: KindUpcoming, Due: due})
			}
		}
	}

	out := append(overdue, today...)
	return append(out, upcoming...)
}

// Notify runs Check and sends one notification per reminder. Overdue tasks
// are sent as errors, the rest as info.
func (s *Service) Notify(tasks []task.Task, now time.Time) ([]Reminder, error) {
	reminders := s.Check(tasks, now)
	if s.notifier == nil {
		return reminders, nil
	}

	var errs []error
	for _, r := range reminders {
		severity := notification.SeverityInfo
		if r.Kind == KindOverdue {
			severity = notification.SeverityError
		}
		n := notification.New(severity, r.Message())
		n.Title = "Task Reminder"
		n.Timestamp = now
		if err := s.notifier.Send(n); err != nil {
			errs = append(errs, err)
		}
	}
	return reminders, errors.Join(errs...)
}

var intervalPattern = regexp.MustCompile(`^(\d+)\s*(d|day|days|h|hour|hours|w|week|weeks)$`)

// ParseInterval parses an interval string and returns the duration.
// Supports both shorthand formats (1d, 12h, 1w) and full word formats (1 day, 12 hours, 1 week).
func ParseInterval(interval string) (time.Duration, error) {
	interval = strings.TrimSpace(strings.ToLower(interval))

	matches := intervalPattern.FindStringSubmatch(interval)
	if matches == nil {
		return 0, fmt.Errorf("invalid interval format: %s", interval)
	}

	num, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "d", "day", "days":
		return time.Duration(num) * 24 * time.Hour, nil
	case "h", "hour", "hours":
		return time.Duration(num) * time.Hour, nil
	default:
		return time.Duration(num) * 7 * 24 * time.Hour, nil
	}
}
