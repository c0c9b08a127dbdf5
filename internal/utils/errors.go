package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with a user-friendly suggestion.
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface.
func (e *ErrorWithSuggestion) Error() string {
	return fmt.Sprintf("%s\n\nSuggestion: %s", e.Err.Error(), e.Suggestion)
}

// GetSuggestion returns the suggestion text.
func (e *ErrorWithSuggestion) GetSuggestion() string {
	return e.Suggestion
}

// Unwrap returns the underlying error for error chain support.
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// WrapWithSuggestion wraps an existing error with a suggestion.
func WrapWithSuggestion(err error, suggestion string) error {
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// ValidationError reports empty or malformed user input (task text, due date).
// The operation that produced it made no state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// MalformedImportError reports an import payload that is not a valid task array.
type MalformedImportError struct {
	Source string
	Err    error
}

func (e *MalformedImportError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("malformed import: %v", e.Err)
	}
	return fmt.Sprintf("malformed import %s: %v", e.Source, e.Err)
}

func (e *MalformedImportError) Unwrap() error {
	return e.Err
}

// StorageUnavailableError reports a failure of the key-value persistence layer.
type StorageUnavailableError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable (%s %s): %v", e.Op, e.Key, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsMalformedImport reports whether err is (or wraps) a MalformedImportError.
func IsMalformedImport(err error) bool {
	var m *MalformedImportError
	return errors.As(err, &m)
}

// IsStorageUnavailable reports whether err is (or wraps) a StorageUnavailableError.
func IsStorageUnavailable(err error) bool {
	var s *StorageUnavailableError
	return errors.As(err, &s)
}

// ErrEmptyText returns the validation error for blank task text.
func ErrEmptyText() error {
	return &ValidationError{Field: "text", Reason: "task text cannot be empty"}
}

// ErrEmptyDueDate returns the validation error for a blank due date on edit.
func ErrEmptyDueDate() error {
	return &ValidationError{Field: "due date", Reason: "due date cannot be empty"}
}

// ErrStorage wraps a backend failure for the given operation and key.
func ErrStorage(op, key string, err error) error {
	return &StorageUnavailableError{Op: op, Key: key, Err: err}
}

// ErrMalformedImport wraps a decode failure for an import source.
func ErrMalformedImport(source string, err error) error {
	return &MalformedImportError{Source: source, Err: err}
}

// ErrTaskNotFound returns an error for when a task is not found.
func ErrTaskNotFound(searchTerm string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("task not found: %s", searchTerm),
		Suggestion: "Check the search term or use 'todobin list' to see all tasks",
	}
}

// ErrEntryNotFound returns an error for a missing recycle bin entry.
func ErrEntryNotFound(searchTerm string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("recycle bin entry not found: %s", searchTerm),
		Suggestion: "Use 'todobin bin list' to see deleted tasks",
	}
}

// ErrAmbiguousTask returns an error when a search term matches several tasks.
func ErrAmbiguousTask(searchTerm string, matches []string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("multiple tasks match %q: %s", searchTerm, strings.Join(matches, ", ")),
		Suggestion: "Use the task ID (or a longer ID prefix) to select a single task",
	}
}

// ErrBackendNotConfigured returns an error when a backend is not configured.
func ErrBackendNotConfigured(name string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("backend not configured: %s", name),
		Suggestion: fmt.Sprintf("Add %s configuration to your config file", name),
	}
}

// ErrInvalidDate returns an error for an invalid date string.
func ErrInvalidDate(dateStr string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("invalid date: %s", dateStr),
		Suggestion: "Use date format YYYY-MM-DD (e.g., 2026-01-15), today, tomorrow or +Nd",
	}
}

// ErrInvalidFilter returns an error for an unknown filter name with valid options.
func ErrInvalidFilter(filter string, valid []string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("invalid filter: %s", filter),
		Suggestion: fmt.Sprintf("Valid options: %s", strings.Join(valid, ", ")),
	}
}

// ErrInvalidFormat returns an error for an unknown import/export format.
func ErrInvalidFormat(format string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("invalid format: %s", format),
		Suggestion: "Valid options: json, md",
	}
}
