// Package task holds the canonical task records and the two ordered
// collections (active tasks and the recycle bin) persisted to a backend.Store.
package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"todobin/internal/utils"
)

// ErrNotFound is returned when no task or entry has the requested ID.
var ErrNotFound = errors.New("not found")

// Task is a to-do item. DueDate holds the raw stored date ("" for none),
// normally in YYYY-MM-DD form.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	DueDate   string `json:"dueDate,omitempty"`
}

// HasDueDate reports whether the task carries a due date string.
func (t Task) HasDueDate() bool {
	return strings.TrimSpace(t.DueDate) != ""
}

// Entry is a soft-deleted task held in the recycle bin.
type Entry struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	DueDate   string     `json:"dueDate,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Task rebuilds the task an entry was made from, keeping its ID.
func (e Entry) Task() Task {
	return Task{ID: e.ID, Text: e.Text, Completed: e.Completed, DueDate: e.DueDate}
}

// entryAlias avoids recursion in Entry.UnmarshalJSON.
type entryAlias Entry

// UnmarshalJSON accepts both the structured record and the older bare-string
// form, where an entry was saved as its text only.
func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*e = Entry{Text: text}
		return nil
	}
	var a entryAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = Entry(a)
	return nil
}

// NewID returns a fresh task identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidateText trims text and rejects it when nothing is left.
func ValidateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", utils.ErrEmptyText()
	}
	return text, nil
}

// EncodeTasks serializes tasks as the JSON array stored under "tasks".
func EncodeTasks(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeTasks parses a stored or imported task array. A record whose ID is
// missing or repeats an earlier one gets a new ID. A record whose text is
// blank makes the whole array invalid.
func DecodeTasks(data []byte) ([]Task, error) {
	tasks, _, err := decodeTasks(data, NewID)
	return tasks, err
}

// decodeTasks is DecodeTasks with an ID source. changed reports whether any
// ID was assigned, so the caller knows the stored form is out of date.
func decodeTasks(data []byte, newID func() string) (tasks []Task, changed bool, err error) {
	var raw []Task
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, false, err
	}
	if dec.More() {
		return nil, false, errors.New("unexpected data after task array")
	}
	if raw == nil {
		return nil, false, errors.New("expected a JSON array of tasks")
	}

	ids := newIDSet(newID)
	tasks = make([]Task, 0, len(raw))
	for i, t := range raw {
		text, err := ValidateText(t.Text)
		if err != nil {
			return nil, false, fmt.Errorf("task %d: %w", i, err)
		}
		t.Text = text
		t.DueDate = strings.TrimSpace(t.DueDate)
		id := ids.claim(t.ID)
		changed = changed || id != t.ID
		t.ID = id
		tasks = append(tasks, t)
	}
	return tasks, changed, nil
}

// EncodeEntries serializes the recycle bin.
func EncodeEntries(entries []Entry) (string, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeEntries parses the stored recycle bin. An entry whose ID is missing
// or repeated gets a new one. Entries with blank text are dropped.
func DecodeEntries(data []byte) ([]Entry, error) {
	entries, _, err := decodeEntries(data, NewID)
	return entries, err
}

func decodeEntries(data []byte, newID func() string) (entries []Entry, changed bool, err error) {
	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, err
	}
	ids := newIDSet(newID)
	entries = make([]Entry, 0, len(raw))
	for _, e := range raw {
		text, err := ValidateText(e.Text)
		if err != nil {
			changed = true
			continue
		}
		e.Text = text
		id := ids.claim(e.ID)
		changed = changed || id != e.ID
		e.ID = id
		entries = append(entries, e)
	}
	return entries, changed, nil
}

// idSet hands out IDs that are unique within one collection.
type idSet struct {
	seen  map[string]struct{}
	newID func() string
}

func newIDSet(newID func() string) *idSet {
	return &idSet{seen: make(map[string]struct{}), newID: newID}
}

// claim returns id if it is non-empty and unused, otherwise a fresh ID.
func (s *idSet) claim(id string) string {
	for {
		if _, taken := s.seen[id]; id != "" && !taken {
			s.seen[id] = struct{}{}
			return id
		}
		id = s.newID()
	}
}
