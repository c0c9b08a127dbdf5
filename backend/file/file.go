// Package file implements a backend.Store that keeps each key in its own
// JSON file inside a data directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"todobin/backend"
)

// Config holds file backend configuration
type Config struct {
	Dir string // Data directory
}

// Backend implements backend.Store for file-based storage
type Backend struct {
	dir string // Resolved absolute path
}

// validKey keeps keys usable as file names.
var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func init() {
	backend.RegisterWithPriority("file", func(opts backend.Options) (backend.Store, error) {
		return New(Config{Dir: opts.Dir})
	}, 20)
}

// New creates a new file backend
func New(cfg Config) (*Backend, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}

	if !filepath.IsAbs(dir) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = filepath.Join(wd, dir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Backend{dir: dir}, nil
}

// Close closes the backend
func (b *Backend) Close() error {
	return nil
}

// Location returns the data directory.
func (b *Backend) Location() string {
	return b.dir
}

// PathFor returns the file holding key.
func (b *Backend) PathFor(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

// Get returns the content of the key's file.
func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(b.PathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Set replaces the key's file atomically (temp file + rename).
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return os.Rename(tmpName, b.PathFor(key))
}

// Delete removes the key's file. Deleting a missing key is not an error.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(b.PathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Modified returns the modification time of the key's file.
func (b *Backend) Modified(ctx context.Context, key string) (time.Time, bool, error) {
	if err := checkKey(key); err != nil {
		return time.Time{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}

	info, err := os.Stat(b.PathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return info.ModTime(), true, nil
}

// Keys lists the keys present in the data directory.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, err
	}

	keys := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Verify interface compliance at compile time
var (
	_ backend.Store    = (*Backend)(nil)
	_ backend.Lister   = (*Backend)(nil)
	_ backend.Modifier = (*Backend)(nil)
	_ backend.Locator  = (*Backend)(nil)
)
