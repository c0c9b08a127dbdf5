package backend

import (
	"context"
	"time"
)

// Keys under which the two collections are persisted.
const (
	KeyTasks      = "tasks"
	KeyRecycleBin = "recycleBin"
)

// Store is a key-value text store. Set overwrites the whole value; there is
// no partial or merge write. A missing key is reported as ok=false, not as
// an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Modifier is implemented by stores that record when a key was last written.
type Modifier interface {
	Modified(ctx context.Context, key string) (time.Time, bool, error)
}

// Locator is implemented by stores backed by a filesystem location that
// other processes may modify. The TUI watches this path for changes.
type Locator interface {
	Location() string
}
