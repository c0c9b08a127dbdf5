package task

import (
	"context"
	"fmt"

	"todobin/backend"
	"todobin/internal/utils"
)

// RecycleBin holds soft-deleted tasks, persisted under backend.KeyRecycleBin.
//
// Every mutating method updates memory first and then persists. When the
// write fails the in-memory change stands and the returned error is a
// StorageUnavailableError, so callers can keep the result.
type RecycleBin struct {
	kv      backend.Store
	entries []Entry
	opts    options
}

// NewRecycleBin creates an empty bin bound to kv. A nil kv keeps it memory-only.
func NewRecycleBin(kv backend.Store, opts ...Option) *RecycleBin {
	return &RecycleBin{
		kv:      kv,
		entries: []Entry{},
		opts:    applyOptions(opts),
	}
}

// Detach stops all further persistence.
func (r *RecycleBin) Detach() {
	r.kv = nil
}

// Attached reports whether the bin still writes to a backend.
func (r *RecycleBin) Attached() bool {
	return r.kv != nil
}

// Add appends one entry and persists. It returns the entry as stored.
func (r *RecycleBin) Add(ctx context.Context, e Entry) (Entry, error) {
	added, err := r.AddAll(ctx, []Entry{e})
	return added[0], err
}

// AddAll appends a batch of entries and persists once. An entry whose ID is
// missing or already in the bin gets a new one; the stored entries are
// returned in order.
func (r *RecycleBin) AddAll(ctx context.Context, entries []Entry) ([]Entry, error) {
	ids := newIDSet(r.opts.newID)
	for _, e := range r.entries {
		ids.claim(e.ID)
	}
	added := make([]Entry, 0, len(entries))
	for _, e := range entries {
		e.ID = ids.claim(e.ID)
		r.entries = append(r.entries, e)
		added = append(added, e)
	}
	return added, r.Persist(ctx)
}

func (r *RecycleBin) index(id string) int {
	for i := range r.entries {
		if r.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the entry with the given ID.
func (r *RecycleBin) Get(id string) (Entry, bool) {
	i := r.index(id)
	if i < 0 {
		return Entry{}, false
	}
	return r.entries[i], true
}

// RestoreOne removes an entry and returns the task rebuilt from it.
func (r *RecycleBin) RestoreOne(ctx context.Context, id string) (Task, error) {
	i := r.index(id)
	if i < 0 {
		return Task{}, fmt.Errorf("recycle entry %s: %w", id, ErrNotFound)
	}
	t := r.entries[i].Task()
	r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
	return t, r.Persist(ctx)
}

// RestoreAll empties the bin and returns every task in bin order.
// It persists once after the batch.
func (r *RecycleBin) RestoreAll(ctx context.Context) ([]Task, error) {
	tasks := make([]Task, 0, len(r.entries))
	for _, e := range r.entries {
		tasks = append(tasks, e.Task())
	}
	r.entries = []Entry{}
	return tasks, r.Persist(ctx)
}

// Purge clears the bin and removes its key from the backend entirely.
func (r *RecycleBin) Purge(ctx context.Context) error {
	r.entries = []Entry{}
	if r.kv == nil {
		return nil
	}
	if err := r.kv.Delete(ctx, backend.KeyRecycleBin); err != nil {
		return utils.ErrStorage("delete", backend.KeyRecycleBin, err)
	}
	return nil
}

// Entries returns a copy of the bin in order.
func (r *RecycleBin) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of entries.
func (r *RecycleBin) Len() int {
	return len(r.entries)
}

// Persist writes the full bin under backend.KeyRecycleBin.
func (r *RecycleBin) Persist(ctx context.Context) error {
	if r.kv == nil {
		return nil
	}
	value, err := EncodeEntries(r.entries)
	if err != nil {
		return fmt.Errorf("failed to encode recycle bin: %w", err)
	}
	if err := r.kv.Set(ctx, backend.KeyRecycleBin, value); err != nil {
		return utils.ErrStorage("write", backend.KeyRecycleBin, err)
	}
	return nil
}

// Restore replaces the bin with the persisted one. An absent key yields an
// empty bin. Entries that needed new IDs or were dropped for blank text are
// written back once.
func (r *RecycleBin) Restore(ctx context.Context) error {
	if r.kv == nil {
		return nil
	}
	value, ok, err := r.kv.Get(ctx, backend.KeyRecycleBin)
	if err != nil {
		return utils.ErrStorage("read", backend.KeyRecycleBin, err)
	}
	if !ok {
		r.entries = []Entry{}
		return nil
	}
	entries, changed, err := decodeEntries([]byte(value), r.opts.newID)
	if err != nil {
		return fmt.Errorf("failed to decode stored %s: %w", backend.KeyRecycleBin, err)
	}
	r.entries = entries
	if changed {
		return r.Persist(ctx)
	}
	return nil
}
