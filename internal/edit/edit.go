// Package edit models one in-progress edit of a task field as a small state
// machine: Editing until the first confirm or cancel, then Committed or
// Cancelled for good.
package edit

import (
	"errors"
	"sync"
)

// State is the lifecycle state of a Session.
type State int

const (
	Editing State = iota
	Committed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return "editing"
	}
}

// Trigger names what confirmed the edit.
type Trigger int

const (
	// KeyConfirm is an explicit confirm (Enter).
	KeyConfirm Trigger = iota
	// FocusLoss is the field losing focus.
	FocusLoss
)

func (t Trigger) String() string {
	if t == FocusLoss {
		return "focus-loss"
	}
	return "key"
}

// Field identifies what a session edits.
type Field int

const (
	FieldText Field = iota
	FieldDueDate
)

func (f Field) String() string {
	if f == FieldDueDate {
		return "due date"
	}
	return "text"
}

// CommitFunc applies a confirmed value. Returning an error cancels the
// session and leaves the task as it was.
type CommitFunc func(value string) error

// Session is one edit of one field of one task.
type Session struct {
	mu       sync.Mutex
	taskID   string
	field    Field
	initial  string
	state    State
	trigger  Trigger
	err      error
	commit   CommitFunc
	onClose  func()
	closeRan bool
}

// New opens a session in the Editing state. onClose runs exactly once when
// the session leaves Editing; it may be nil.
func New(taskID string, field Field, initial string, commit CommitFunc, onClose func()) *Session {
	return &Session{
		taskID:  taskID,
		field:   field,
		initial: initial,
		commit:  commit,
		onClose: onClose,
	}
}

// TaskID returns the task being edited.
func (s *Session) TaskID() string { return s.taskID }

// Field returns the field being edited.
func (s *Session) Field() Field { return s.field }

// Initial returns the value the field had when the session opened.
func (s *Session) Initial() string { return s.initial }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that cancelled a confirmed session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Trigger returns what closed the session. Only meaningful once closed.
func (s *Session) Trigger() Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trigger
}

// Confirm commits value. The first call decides the outcome; later calls
// (e.g. the focus loss that follows an Enter) do nothing and report the
// state already reached. A value the commit rejects cancels the session.
func (s *Session) Confirm(value string, trigger Trigger) State {
	s.mu.Lock()
	if s.state != Editing {
		state := s.state
		s.mu.Unlock()
		return state
	}
	s.trigger = trigger
	if err := s.commit(value); err != nil {
		s.state = Cancelled
		s.err = err
	} else {
		s.state = Committed
	}
	state := s.state
	s.mu.Unlock()

	s.close()
	return state
}

// Cancel closes the session without committing. It has no effect once the
// session is closed.
func (s *Session) Cancel() State {
	s.mu.Lock()
	if s.state != Editing {
		state := s.state
		s.mu.Unlock()
		return state
	}
	s.state = Cancelled
	s.mu.Unlock()

	s.close()
	return Cancelled
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closeRan {
		s.mu.Unlock()
		return
	}
	s.closeRan = true
	fn := s.onClose
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// ErrInProgress is returned when a task already has an open session.
var ErrInProgress = errors.New("an edit is already in progress for this task")

// Registry enforces at most one open session per task.
type Registry struct {
	mu   sync.Mutex
	open map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{open: make(map[string]*Session)}
}

// Begin opens a session for taskID, or fails with ErrInProgress when one is
// already open. The slot is released when the session closes.
func (r *Registry) Begin(taskID string, field Field, initial string, commit CommitFunc) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.open[taskID]; busy {
		return nil, ErrInProgress
	}

	var s *Session
	s = New(taskID, field, initial, commit, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.open[taskID] == s {
			delete(r.open, taskID)
		}
	})
	r.open[taskID] = s
	return s, nil
}

// Open returns the session currently open for taskID.
func (r *Registry) Open(taskID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.open[taskID]
	return s, ok
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}
