package reminder_test

import (
	"strings"
	"testing"
	"time"

	"todobin/internal/notification"
	"todobin/internal/reminder"
	"todobin/internal/task"
)

var now = time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: "1", Text: "Soon", DueDate: "2025-01-07"},
		{ID: "2", Text: "Today", DueDate: "2025-01-05"},
		{ID: "3", Text: "Late", DueDate: "2025-01-01"},
		{ID: "4", Text: "Done late", DueDate: "2025-01-01", Completed: true},
		{ID: "5", Text: "Undated"},
		{ID: "6", Text: "Far", DueDate: "2025-03-01"},
	}
}

func mustService(t *testing.T, cfg *reminder.Config) *reminder.Service {
	t.Helper()
	s, err := reminder.NewService(cfg)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return s
}

func TestCheckOrdersByKind(t *testing.T) {
	s := mustService(t, &reminder.Config{Enabled: true, IncludeToday: true, Within: "3d"})

	got := s.Check(sampleTasks(), now)
	var ids []string
	for _, r := range got {
		ids = append(ids, r.Task.ID+":"+string(r.Kind))
	}
	want := "3:overdue,2:today,1:upcoming"
	if strings.Join(ids, ",") != want {
		t.Errorf("Check = %v, want %s", ids, want)
	}
}

func TestCheckOptions(t *testing.T) {
	tests := []struct {
		name string
		cfg  reminder.Config
		want int
	}{
		{"disabled", reminder.Config{Enabled: false, IncludeToday: true}, 0},
		{"overdue only", reminder.Config{Enabled: true}, 1},
		{"with today", reminder.Config{Enabled: true, IncludeToday: true}, 2},
		{"wide window", reminder.Config{Enabled: true, Within: "2w"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			s := mustService(t, &cfg)
			if got := s.Check(sampleTasks(), now); len(got) != tt.want {
				t.Errorf("Check returned %d reminders, want %d", len(got), tt.want)
			}
		})
	}
}

func TestNotifySendsOnePerReminder(t *testing.T) {
	s := mustService(t, &reminder.Config{Enabled: true, IncludeToday: true})
	rec := notification.NewRecorder()
	s.SetNotifier(rec)

	reminders, err := s.Notify(sampleTasks(), now)
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	sent := rec.All()
	if len(sent) != len(reminders) || len(sent) != 2 {
		t.Fatalf("sent %d notifications for %d reminders", len(sent), len(reminders))
	}
	if sent[0].Severity != notification.SeverityError || sent[0].Message != "Overdue: Late (Due: Jan 1, 2025)" {
		t.Errorf("first notification = %+v", sent[0])
	}
	if sent[1].Severity != notification.SeverityInfo || sent[1].Message != "Due today: Today" {
		t.Errorf("second notification = %+v", sent[1])
	}
}

func TestNewServiceRejectsBadWindow(t *testing.T) {
	if _, err := reminder.NewService(&reminder.Config{Within: "soon"}); err == nil {
		t.Error("expected error for invalid window")
	}
	if _, err := reminder.NewService(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"1d", 24 * time.Hour, false},
		{"3 days", 72 * time.Hour, false},
		{"12h", 12 * time.Hour, false},
		{"1 week", 7 * 24 * time.Hour, false},
		{"2W", 14 * 24 * time.Hour, false},
		{"15m", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := reminder.ParseInterval(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInterval(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseInterval(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
