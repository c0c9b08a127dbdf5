// Package transfer exports the task list to a file and imports it back.
// Imports are all-or-nothing: any malformed record rejects the whole file.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"todobin/internal/markdown"
	"todobin/internal/task"
	"todobin/internal/utils"
)

// Format is an export/import file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// fileNameLayout is the timestamp part of exported file names.
const fileNameLayout = "2006-01-02_15-04"

// ParseFormat reads a format name. An empty name means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", utils.ErrInvalidFormat(s)
	}
}

// FormatForPath picks the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatJSON
	}
}

// FileName returns the export file name for the given time, e.g.
// To_Do_Tasks_Exported_2025-01-05_14-30.json.
func FileName(now time.Time, format Format) string {
	return fmt.Sprintf("To_Do_Tasks_Exported_%s.%s", now.Format(fileNameLayout), format)
}

// Encode writes tasks in the given format. JSON is indented by two spaces.
func Encode(w io.Writer, tasks []task.Task, format Format) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	if format == FormatMarkdown {
		return markdown.WriteTasks(w, tasks)
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Decode parses a whole task file. Every failure is a MalformedImportError
// naming source.
func Decode(r io.Reader, format Format, source string) ([]task.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, utils.ErrMalformedImport(source, err)
	}

	var tasks []task.Task
	if format == FormatMarkdown {
		tasks, err = markdown.ReadTasks(bytes.NewReader(data))
	} else {
		tasks, err = task.DecodeTasks(data)
	}
	if err != nil {
		return nil, utils.ErrMalformedImport(source, err)
	}
	return tasks, nil
}

// Export writes tasks into dir under FileName(now, format) and returns the
// full path. dir is created if needed.
func Export(dir string, tasks []task.Task, now time.Time, format Format) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(now, format))
	var buf bytes.Buffer
	if err := Encode(&buf, tasks, format); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	utils.Debugf("exported %d tasks to %s", len(tasks), path)
	return path, nil
}

// ImportFile reads and decodes path. An empty format is picked from the
// file extension. Only decode failures are MalformedImportErrors.
func ImportFile(path string, format Format) ([]task.Task, error) {
	if format == "" {
		format = FormatForPath(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f, format, path)
}
