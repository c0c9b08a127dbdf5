// Package memory implements a process-local backend.Store. It backs tests
// and the --backend=memory mode, and can be told to fail to simulate an
// unavailable store.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"todobin/backend"
)

// ErrUnavailable is returned by every operation once Fail has been called.
var ErrUnavailable = errors.New("memory store unavailable")

// Backend implements backend.Store in memory.
type Backend struct {
	mu     sync.RWMutex
	data   map[string]string
	writes int
	failed bool
}

func init() {
	backend.RegisterWithPriority("memory", func(backend.Options) (backend.Store, error) {
		return New(), nil
	}, 90)
}

// New creates an empty store.
func New() *Backend {
	return &Backend{data: make(map[string]string)}
}

// Fail makes every subsequent operation return ErrUnavailable.
func (b *Backend) Fail() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failed = true
}

// Writes returns how many Set and Delete calls succeeded.
func (b *Backend) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}

// Get returns the value stored under key.
func (b *Backend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.failed {
		return "", false, ErrUnavailable
	}
	v, ok := b.data[key]
	return v, ok, nil
}

// Set overwrites key.
func (b *Backend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failed {
		return ErrUnavailable
	}
	b.data[key] = value
	b.writes++
	return nil
}

// Delete removes key.
func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failed {
		return ErrUnavailable
	}
	delete(b.data, key)
	b.writes++
	return nil
}

// Keys returns the stored keys in lexical order.
func (b *Backend) Keys(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.failed {
		return nil, ErrUnavailable
	}
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op.
func (b *Backend) Close() error {
	return nil
}

// Verify interface compliance at compile time
var (
	_ backend.Store  = (*Backend)(nil)
	_ backend.Lister = (*Backend)(nil)
)
