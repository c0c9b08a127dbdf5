package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Options carries the settings a backend constructor may need.
type Options struct {
	// Path is the database file for the sqlite backend (":memory:" allowed).
	Path string
	// Dir is the data directory for the file backend.
	Dir string
}

// Constructor creates a Store from Options.
type Constructor func(opts Options) (Store, error)

// registration holds a constructor with its priority
type registration struct {
	constructor Constructor
	priority    int
}

var (
	registryMu    sync.RWMutex
	registrations = make(map[string]registration)
)

// Register registers a backend constructor with the default priority.
// Backends call this in their init() function.
func Register(name string, constructor Constructor) {
	RegisterWithPriority(name, constructor, 100)
}

// RegisterWithPriority registers a backend constructor with a priority.
// Lower priority numbers are listed first (sqlite=10, file=20).
func RegisterWithPriority(name string, constructor Constructor, priority int) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registrations[name] = registration{
		constructor: constructor,
		priority:    priority,
	}
}

// Names returns the registered backend names ordered by priority.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registrations))
	for name := range registrations {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := registrations[names[i]].priority, registrations[names[j]].priority
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})
	return names
}

// Open constructs the named backend.
func Open(name string, opts Options) (Store, error) {
	registryMu.RLock()
	reg, ok := registrations[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, Names())
	}

	store, err := reg.constructor(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", name, err)
	}
	return store, nil
}
