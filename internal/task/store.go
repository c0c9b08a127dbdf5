package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"todobin/backend"
	"todobin/internal/utils"
)

// Option configures a Store or RecycleBin.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock sets the time source used to stamp recycle entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator replaces uuid generation, mainly for tests.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now, newID: NewID}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Store is the ordered collection of active tasks, persisted under
// backend.KeyTasks. Mutations are in-memory only; Persist writes the whole
// collection.
type Store struct {
	kv    backend.Store
	tasks []Task
	opts  options
}

// NewStore creates an empty Store bound to kv. A nil kv keeps the store
// memory-only.
func NewStore(kv backend.Store, opts ...Option) *Store {
	return &Store{
		kv:    kv,
		tasks: []Task{},
		opts:  applyOptions(opts),
	}
}

// Detach stops all further persistence. The in-memory collection keeps working.
func (s *Store) Detach() {
	s.kv = nil
}

// Attached reports whether the store still writes to a backend.
func (s *Store) Attached() bool {
	return s.kv != nil
}

// Add appends a new pending task. Text and due date are trimmed; blank text
// is a ValidationError and leaves the store unchanged.
func (s *Store) Add(text, dueDate string) (Task, error) {
	text, err := ValidateText(text)
	if err != nil {
		return Task{}, err
	}
	t := Task{
		ID:      s.opts.newID(),
		Text:    text,
		DueDate: strings.TrimSpace(dueDate),
	}
	s.tasks = append(s.tasks, t)
	return t, nil
}

// Append adds existing tasks (e.g. restored from the bin) at the end and
// returns them as stored. A task whose ID is missing or already in the list
// gets a new one.
func (s *Store) Append(tasks ...Task) []Task {
	ids := newIDSet(s.opts.newID)
	for _, t := range s.tasks {
		ids.claim(t.ID)
	}
	added := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		t.ID = ids.claim(t.ID)
		s.tasks = append(s.tasks, t)
		added = append(added, t)
	}
	return added
}

func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) lookup(id string) (int, error) {
	i := s.index(id)
	if i < 0 {
		return -1, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return i, nil
}

// Get returns the task with the given ID.
func (s *Store) Get(id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// SetCompleted sets the completed flag. Setting the current value is a no-op.
func (s *Store) SetCompleted(id string, completed bool) error {
	i, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.tasks[i].Completed = completed
	return nil
}

// SetText replaces the text in place. Blank text is a ValidationError.
func (s *Store) SetText(id, text string) error {
	text, err := ValidateText(text)
	if err != nil {
		return err
	}
	i, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.tasks[i].Text = text
	return nil
}

// SetDueDate replaces the due date. A blank date is a ValidationError.
func (s *Store) SetDueDate(id, dueDate string) error {
	dueDate = strings.TrimSpace(dueDate)
	if dueDate == "" {
		return utils.ErrEmptyDueDate()
	}
	i, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.tasks[i].DueDate = dueDate
	return nil
}

func (s *Store) entry(t Task) Entry {
	at := s.opts.now().UTC().Truncate(time.Second)
	return Entry{ID: t.ID, Text: t.Text, Completed: t.Completed, DueDate: t.DueDate, DeletedAt: &at}
}

// Remove detaches a task and returns a snapshot of its last state.
func (s *Store) Remove(id string) (Entry, error) {
	i, err := s.lookup(id)
	if err != nil {
		return Entry{}, err
	}
	e := s.entry(s.tasks[i])
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	return e, nil
}

// RemoveVisible removes every task matching pred, keeping the others in
// order, and returns the removed tasks as entries in their original order.
func (s *Store) RemoveVisible(pred func(Task) bool) []Entry {
	removed := []Entry{}
	kept := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if pred(t) {
			removed = append(removed, s.entry(t))
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	return removed
}

// ReplaceAll overwrites the collection.
func (s *Store) ReplaceAll(tasks []Task) {
	s.tasks = make([]Task, 0, len(tasks))
	s.Append(tasks...)
}

// Tasks returns a copy of the ordered collection.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Persist writes the full collection under backend.KeyTasks.
func (s *Store) Persist(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}
	value, err := EncodeTasks(s.tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := s.kv.Set(ctx, backend.KeyTasks, value); err != nil {
		return utils.ErrStorage("write", backend.KeyTasks, err)
	}
	return nil
}

// Restore replaces the collection with the persisted one. An absent key
// yields an empty collection. When records needed new IDs the collection is
// written back, so the IDs stay the same on the next load.
func (s *Store) Restore(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}
	value, ok, err := s.kv.Get(ctx, backend.KeyTasks)
	if err != nil {
		return utils.ErrStorage("read", backend.KeyTasks, err)
	}
	if !ok {
		s.tasks = []Task{}
		return nil
	}
	tasks, changed, err := decodeTasks([]byte(value), s.opts.newID)
	if err != nil {
		return fmt.Errorf("failed to decode stored %s: %w", backend.KeyTasks, err)
	}
	s.tasks = tasks
	if changed {
		return s.Persist(ctx)
	}
	return nil
}
