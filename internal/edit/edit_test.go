package edit

import (
	"errors"
	"testing"
)

type recorder struct {
	values []string
	fail   error
}

func (r *recorder) commit(v string) error {
	if r.fail != nil {
		return r.fail
	}
	r.values = append(r.values, v)
	return nil
}

// TestFirstConfirmWins verifies the Enter-then-blur double confirm commits once
func TestFirstConfirmWins(t *testing.T) {
	rec := &recorder{}
	s := New("t1", FieldText, "old", rec.commit, nil)

	if got := s.Confirm("new", KeyConfirm); got != Committed {
		t.Fatalf("first Confirm = %v, want committed", got)
	}
	if got := s.Confirm("other", FocusLoss); got != Committed {
		t.Errorf("second Confirm = %v, want committed", got)
	}
	if len(rec.values) != 1 || rec.values[0] != "new" {
		t.Errorf("commits = %v, want [new]", rec.values)
	}
	if s.Trigger() != KeyConfirm {
		t.Errorf("Trigger = %v, want key", s.Trigger())
	}
}

// TestRejectedValueCancels verifies a failing commit closes as Cancelled
func TestRejectedValueCancels(t *testing.T) {
	cause := errors.New("empty")
	rec := &recorder{fail: cause}
	s := New("t1", FieldText, "old", rec.commit, nil)

	if got := s.Confirm("", FocusLoss); got != Cancelled {
		t.Fatalf("Confirm = %v, want cancelled", got)
	}
	if !errors.Is(s.Err(), cause) {
		t.Errorf("Err = %v", s.Err())
	}

	rec.fail = nil
	if got := s.Confirm("later", KeyConfirm); got != Cancelled || len(rec.values) != 0 {
		t.Errorf("Confirm after cancel = %v, commits %v", got, rec.values)
	}
}

// TestCancelThenConfirm verifies Cancel is final
func TestCancelThenConfirm(t *testing.T) {
	rec := &recorder{}
	closed := 0
	s := New("t1", FieldDueDate, "2025-01-01", rec.commit, func() { closed++ })

	s.Cancel()
	s.Confirm("2025-02-02", KeyConfirm)
	s.Cancel()

	if s.State() != Cancelled || len(rec.values) != 0 {
		t.Errorf("state = %v commits = %v", s.State(), rec.values)
	}
	if closed != 1 {
		t.Errorf("onClose ran %d times, want 1", closed)
	}
}

// TestRegistryOneSessionPerTask verifies the per-task slot
func TestRegistryOneSessionPerTask(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}

	s, err := r.Begin("t1", FieldText, "a", rec.commit)
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if _, err := r.Begin("t1", FieldDueDate, "", rec.commit); !errors.Is(err, ErrInProgress) {
		t.Errorf("second Begin = %v, want ErrInProgress", err)
	}
	if _, err := r.Begin("t2", FieldText, "b", rec.commit); err != nil {
		t.Errorf("Begin other task: %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}

	s.Confirm("A", KeyConfirm)
	if _, ok := r.Open("t1"); ok {
		t.Error("slot not released after commit")
	}
	if _, err := r.Begin("t1", FieldText, "A", rec.commit); err != nil {
		t.Errorf("Begin after close: %v", err)
	}
}
