package utils

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestErrorWithSuggestionError verifies Error() method output
func TestErrorWithSuggestionError(t *testing.T) {
	err := &ErrorWithSuggestion{
		Err:        errors.New("something went wrong"),
		Suggestion: "Try doing X",
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "something went wrong") {
		t.Errorf("Error() should contain error message, got: %s", errStr)
	}
	if !strings.Contains(errStr, "Suggestion: Try doing X") {
		t.Errorf("Error() should contain suggestion, got: %s", errStr)
	}
}

// TestWrapWithSuggestion verifies the wrapper keeps the error chain
func TestWrapWithSuggestion(t *testing.T) {
	underlying := errors.New("original error")
	wrapped := WrapWithSuggestion(underlying, "custom suggestion")

	var errWithSuggestion *ErrorWithSuggestion
	if !errors.As(wrapped, &errWithSuggestion) {
		t.Fatal("WrapWithSuggestion should return *ErrorWithSuggestion")
	}
	if errWithSuggestion.GetSuggestion() != "custom suggestion" {
		t.Errorf("Suggestion = %s, want 'custom suggestion'", errWithSuggestion.GetSuggestion())
	}
	if !errors.Is(wrapped, underlying) {
		t.Error("errors.Is should find the underlying error")
	}
}

// TestValidationErrors verifies the empty-input constructors are ValidationErrors
func TestValidationErrors(t *testing.T) {
	for _, err := range []error{ErrEmptyText(), ErrEmptyDueDate()} {
		if !IsValidation(err) {
			t.Errorf("IsValidation(%v) = false, want true", err)
		}
		if IsStorageUnavailable(err) || IsMalformedImport(err) {
			t.Errorf("%v classified as the wrong error kind", err)
		}
	}
}

// TestStorageUnavailableUnwrap verifies storage errors survive %w wrapping
func TestStorageUnavailableUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("failed to persist: %w", ErrStorage("set", "tasks", cause))

	if !IsStorageUnavailable(err) {
		t.Fatal("IsStorageUnavailable should see through fmt.Errorf wrapping")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the backend cause")
	}
	if !strings.Contains(err.Error(), "tasks") {
		t.Errorf("error should name the key, got: %s", err)
	}
}

// TestMalformedImportError verifies message and classification
func TestMalformedImportError(t *testing.T) {
	err := ErrMalformedImport("tasks.json", errors.New("unexpected EOF"))
	if !IsMalformedImport(err) {
		t.Fatal("IsMalformedImport = false, want true")
	}
	if !strings.Contains(err.Error(), "tasks.json") {
		t.Errorf("error should name the source, got: %s", err)
	}
}

// TestNotFoundSuggestions verifies lookup errors carry a suggestion
func TestNotFoundSuggestions(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"task", ErrTaskNotFound("milk"), "todobin list"},
		{"entry", ErrEntryNotFound("milk"), "todobin bin list"},
		{"ambiguous", ErrAmbiguousTask("m", []string{"milk", "mail"}), "ID"},
		{"filter", ErrInvalidFilter("soon", []string{"all", "pending"}), "all, pending"},
		{"format", ErrInvalidFormat("xml"), "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ews *ErrorWithSuggestion
			if !errors.As(tt.err, &ews) {
				t.Fatal("should return *ErrorWithSuggestion")
			}
			if !strings.Contains(ews.GetSuggestion(), tt.want) {
				t.Errorf("suggestion %q should contain %q", ews.GetSuggestion(), tt.want)
			}
		})
	}
}
