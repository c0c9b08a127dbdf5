// Package coordinator runs each user action against the task and recycle
// stores in a fixed order: mutate, persist, re-sort, re-filter, notify.
package coordinator

import (
	"context"
	"fmt"
	"io"
	"time"

	"todobin/backend"
	"todobin/internal/dates"
	"todobin/internal/edit"
	"todobin/internal/notification"
	"todobin/internal/task"
	"todobin/internal/transfer"
	"todobin/internal/utils"
	"todobin/internal/views"
)

// Messages sent to the notifier after each action.
const (
	MsgTaskAdded        = "Task added!"
	MsgInvalidTaskName  = "Please enter a valid task name"
	MsgTaskCompleted    = "Task completed!"
	MsgTaskPending      = "Task marked as pending!"
	MsgTaskDeleted      = "Task deleted and moved to recycle bin!"
	MsgVisibleDeleted   = "All visible tasks deleted and moved to recycle bin!"
	MsgTaskRestored     = "Task restored!"
	MsgAllRestored      = "All Tasks restored!"
	MsgBinEmptied       = "Recycle bin emptied!"
	MsgExportSuccessful = "Export Successful"
	MsgImportSuccessful = "Import Successful"
	MsgInvalidFile      = "Invalid file format!"
	MsgStorageLost      = "Storage unavailable: changes will not be saved"
)

// Notifier receives one notification per completed action.
type Notifier interface {
	Send(n notification.Notification) error
}

type nopNotifier struct{}

func (nopNotifier) Send(notification.Notification) error { return nil }

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the time source used for classification and filtering.
func WithClock(now dates.Clock) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithNotifier sets where action messages go.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

// WithFilter sets the initial active filter.
func WithFilter(kind views.FilterKind) Option {
	return func(c *Coordinator) {
		c.filter = kind
	}
}

// WithTaskOptions passes options through to the task and recycle stores.
func WithTaskOptions(opts ...task.Option) Option {
	return func(c *Coordinator) {
		c.taskOpts = append(c.taskOpts, opts...)
	}
}

// Coordinator owns the task list, the recycle bin and the active filter.
// It is not safe for concurrent use; callers run one action at a time.
type Coordinator struct {
	tasks    *task.Store
	bin      *task.RecycleBin
	filter   views.FilterKind
	visible  []task.Task
	now      dates.Clock
	notifier Notifier
	logger   *utils.Logger
	edits    *edit.Registry
	taskOpts []task.Option

	storageErr error
}

// New creates a Coordinator persisting to kv. A nil kv runs memory-only.
func New(kv backend.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		filter:   views.FilterAll,
		now:      time.Now,
		notifier: nopNotifier{},
		logger:   utils.GetLogger(),
		edits:    edit.NewRegistry(),
		visible:  []task.Task{},
	}
	for _, opt := range opts {
		opt(c)
	}

	taskOpts := append([]task.Option{task.WithClock(c.now)}, c.taskOpts...)
	c.tasks = task.NewStore(kv, taskOpts...)
	c.bin = task.NewRecycleBin(kv, taskOpts...)
	return c
}

// Load restores both collections from storage, then sorts and filters.
// A storage failure leaves both empty and switches to memory-only mode.
func (c *Coordinator) Load(ctx context.Context) error {
	if err := c.handleStorage(c.tasks.Restore(ctx)); err != nil {
		return err
	}
	if err := c.handleStorage(c.bin.Restore(ctx)); err != nil {
		return err
	}
	c.resort()
	c.logger.Debug("loaded %d tasks, %d in recycle bin", c.tasks.Len(), c.bin.Len())
	return nil
}

// Reload re-reads storage after an external change. It is skipped while an
// edit is open so the edit does not land on stale state.
func (c *Coordinator) Reload(ctx context.Context) (bool, error) {
	if c.edits.Len() > 0 || !c.Persistent() {
		return false, nil
	}
	if err := c.Load(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// AddTask validates, appends, persists, re-sorts and notifies.
func (c *Coordinator) AddTask(ctx context.Context, text, dueDate string) (task.Task, error) {
	if _, err := task.ValidateText(text); err != nil {
		c.notify(notification.SeverityError, MsgInvalidTaskName)
		return task.Task{}, err
	}
	due, err := utils.NormalizeDueDate(dueDate, c.now())
	if err != nil {
		return task.Task{}, err
	}

	t, err := c.tasks.Add(text, due)
	if err != nil {
		return task.Task{}, err
	}
	if err := c.handleStorage(c.tasks.Persist(ctx)); err != nil {
		return t, err
	}
	c.resort()
	c.logger.Debug("added task %s %q", t.ID, t.Text)
	c.notify(notification.SeveritySuccess, MsgTaskAdded)
	return t, nil
}

// EditText validates and replaces a task's text, then persists. Position is
// unchanged so there is no re-sort.
func (c *Coordinator) EditText(ctx context.Context, id, text string) error {
	if _, err := task.ValidateText(text); err != nil {
		return err
	}
	if err := c.tasks.SetText(id, text); err != nil {
		return err
	}
	if err := c.handleStorage(c.tasks.Persist(ctx)); err != nil {
		return err
	}
	c.refilter()
	c.logger.Debug("edited text of %s", id)
	return nil
}

// EditDueDate validates and replaces a task's due date, persists and
// re-sorts. An empty date is a ValidationError.
func (c *Coordinator) EditDueDate(ctx context.Context, id, dueDate string) error {
	due, err := utils.NormalizeDueDate(dueDate, c.now())
	if err != nil {
		return err
	}
	if due == "" {
		return utils.ErrEmptyDueDate()
	}
	if err := c.tasks.SetDueDate(id, due); err != nil {
		return err
	}
	if status, ok := dates.ClassifyString(due, c.now()); ok {
		c.logger.Debug("task %s now due %s (%s)", id, due, status)
	}
	if err := c.handleStorage(c.tasks.Persist(ctx)); err != nil {
		return err
	}
	c.resort()
	return nil
}

// SetCompleted sets the completed flag, persists, re-filters and notifies.
func (c *Coordinator) SetCompleted(ctx context.Context, id string, completed bool) error {
	if err := c.tasks.SetCompleted(id, completed); err != nil {
		return err
	}
	if err := c.handleStorage(c.tasks.Persist(ctx)); err != nil {
		return err
	}
	c.refilter()
	if completed {
		c.notify(notification.SeverityInfo, MsgTaskCompleted)
	} else {
		c.notify(notification.SeverityInfo, MsgTaskPending)
	}
	return nil
}

// ToggleComplete flips the completed flag and returns the new value.
func (c *Coordinator) ToggleComplete(ctx context.Context, id string) (bool, error) {
	t, ok := c.tasks.Get(id)
	if !ok {
		return false, fmt.Errorf("task %s: %w", id, task.ErrNotFound)
	}
	return !t.Completed, c.SetCompleted(ctx, id, !t.Completed)
}

// DeleteTask moves a task to the recycle bin and persists both collections.
func (c *Coordinator) DeleteTask(ctx context.Context, id string) (task.Entry, error) {
	e, err := c.tasks.Remove(id)
	if err != nil {
		return task.Entry{}, err
	}
	e, err = c.bin.Add(ctx, e)
	if err = c.handleStorage(err); err != nil {
		return e, err
	}
	if err := c.handleStorage(c.tasks.Persist(ctx)); err != nil {
		return e, err
	}
	c.refilter()
	c.logger.Debug("moved task %s to recycle bin", id)
	c.notify(notification.SeverityError, MsgTaskDeleted)
	return e, nil
}

// DeleteVisible moves every task matching the active filter to the recycle
// bin, persisting each collection once. Hidden tasks are untouched.
func (c *Coordinator) DeleteVisible(ctx context.Context) ([]task.Entry, error) {
	entries := c.tasks.RemoveVisible(views.Predicate(c.filter, c.now()))
	if len(entries) == 0 {
		return entries, nil
	}
	entries, err := c.bin.AddAll(ctx, entries)
	if err = c.handleStorage(err); err != nil {
		return entries, err
	}
	if err := c.handleStorage(c.tasks.Persist(ctx)); err != nil {
		return entries, err
	}
	c.refilter()
	c.logger.Debug("moved %d visible tasks (%s) to recycle bin", len(entries), c.filter)
	c.notify(notification.SeverityError, MsgVisibleDeleted)
	return entries, nil
}

// RestoreTask moves one entry back to the end of the task list, persists
// both collections and re-sorts.
func (c *Coordinator) RestoreTask(ctx context.Context, id string) (task.Task, error) {
	t, err := c.bin.RestoreOne(ctx, id)
	if err = c.handleStorage(err); err != nil {
		return task.Task{}, err
	}
	t = c.tasks.Append(t)[0]
	if err := c.handleStorage(c.tasks.Persist(ctx)); err != nil {
		return t, err
	}
	c.resort()
	c.notify(notification.SeveritySuccess, MsgTaskRestored)
	return t, nil
}

// RestoreAll moves every entry back in bin order, persists both collections
// once and re-sorts.
func (c *Coordinator) RestoreAll(ctx context.Context) ([]task.Task, error) {
	if c.bin.Len() == 0 {
		return []task.Task{}, nil
	}
	tasks, err := c.bin.RestoreAll(ctx)
	if err = c.handleStorage(err); err != nil {
		return nil, err
	}
	tasks = c.tasks.Append(tasks...)
	if err := c.handleStorage(c.tasks.Persist(ctx)); err != nil {
		return tasks, err
	}
	c.resort()
	c.notify(notification.SeveritySuccess, MsgAllRestored)
	return tasks, nil
}

// PurgeBin permanently discards the recycle bin and its stored key.
func (c *Coordinator) PurgeBin(ctx context.Context) error {
	if err := c.handleStorage(c.bin.Purge(ctx)); err != nil {
		return err
	}
	c.notify(notification.SeverityError, MsgBinEmptied)
	return nil
}

// ReplaceTasks overwrites the task list (import), persists and re-sorts.
func (c *Coordinator) ReplaceTasks(ctx context.Context, tasks []task.Task) error {
	c.tasks.ReplaceAll(tasks)
	if err := c.handleStorage(c.tasks.Persist(ctx)); err != nil {
		return err
	}
	c.resort()
	return nil
}

// ImportTasks replaces the task list with the decoded contents of r. A
// malformed file leaves every collection untouched.
func (c *Coordinator) ImportTasks(ctx context.Context, r io.Reader, format transfer.Format, source string) ([]task.Task, error) {
	tasks, err := transfer.Decode(r, format, source)
	return c.applyImport(ctx, tasks, err, source)
}

// ImportFile is ImportTasks for a file on disk. An empty format is taken
// from the extension. A file that cannot be opened is reported without the
// invalid-file notification.
func (c *Coordinator) ImportFile(ctx context.Context, path string, format transfer.Format) ([]task.Task, error) {
	tasks, err := transfer.ImportFile(path, format)
	return c.applyImport(ctx, tasks, err, path)
}

func (c *Coordinator) applyImport(ctx context.Context, tasks []task.Task, err error, source string) ([]task.Task, error) {
	if err != nil {
		if utils.IsMalformedImport(err) {
			c.logger.Debug("import of %s rejected: %v", source, err)
			c.notify(notification.SeverityError, MsgInvalidFile)
		}
		return nil, err
	}
	if err := c.ReplaceTasks(ctx, tasks); err != nil {
		return nil, err
	}
	c.notify(notification.SeveritySuccess, MsgImportSuccessful)
	return c.Tasks(), nil
}

// ExportTasks writes a snapshot of the task list into dir and returns the
// file path.
func (c *Coordinator) ExportTasks(dir string, format transfer.Format) (string, error) {
	path, err := transfer.Export(dir, c.Tasks(), c.now(), format)
	if err != nil {
		return "", err
	}
	c.notify(notification.SeveritySuccess, MsgExportSuccessful)
	return path, nil
}

// SetFilter changes the active filter and recomputes the visible tasks.
func (c *Coordinator) SetFilter(kind views.FilterKind) {
	c.filter = kind
	c.refilter()
}

// Filter returns the active filter.
func (c *Coordinator) Filter() views.FilterKind {
	return c.filter
}

// Tasks returns the full ordered task list.
func (c *Coordinator) Tasks() []task.Task {
	return c.tasks.Tasks()
}

// Visible returns the tasks matching the active filter, in list order.
func (c *Coordinator) Visible() []task.Task {
	out := make([]task.Task, len(c.visible))
	copy(out, c.visible)
	return out
}

// Task returns one task by ID.
func (c *Coordinator) Task(id string) (task.Task, bool) {
	return c.tasks.Get(id)
}

// Bin returns the recycle bin entries in order.
func (c *Coordinator) Bin() []task.Entry {
	return c.bin.Entries()
}

// Status classifies a task's due date against now. ok is false for tasks
// without a usable due date.
func (c *Coordinator) Status(t task.Task) (dates.Status, bool) {
	return dates.ClassifyString(t.DueDate, c.now())
}

// Now returns the coordinator's current time.
func (c *Coordinator) Now() time.Time {
	return c.now()
}

// Persistent reports whether changes are still being written to storage.
func (c *Coordinator) Persistent() bool {
	return c.storageErr == nil && c.tasks.Attached()
}

// StorageErr returns the storage failure that switched the coordinator to
// memory-only mode, or nil.
func (c *Coordinator) StorageErr() error {
	return c.storageErr
}

// BeginEdit opens an edit session on one field of a task. Only one session
// per task may be open; a second returns edit.ErrInProgress. Confirming the
// session runs EditText or EditDueDate; a rejected value cancels it silently.
func (c *Coordinator) BeginEdit(ctx context.Context, id string, field edit.Field) (*edit.Session, error) {
	t, ok := c.tasks.Get(id)
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, task.ErrNotFound)
	}

	initial := t.Text
	commit := func(v string) error { return c.EditText(ctx, id, v) }
	if field == edit.FieldDueDate {
		initial = t.DueDate
		commit = func(v string) error { return c.EditDueDate(ctx, id, v) }
	}
	return c.edits.Begin(id, field, initial, commit)
}

// BeginTextEdit opens a text edit session.
func (c *Coordinator) BeginTextEdit(ctx context.Context, id string) (*edit.Session, error) {
	return c.BeginEdit(ctx, id, edit.FieldText)
}

// BeginDueDateEdit opens a due date edit session.
func (c *Coordinator) BeginDueDateEdit(ctx context.Context, id string) (*edit.Session, error) {
	return c.BeginEdit(ctx, id, edit.FieldDueDate)
}

func (c *Coordinator) notify(severity notification.Severity, message string) {
	if err := c.notifier.Send(notification.New(severity, message)); err != nil {
		c.logger.Debug("notification failed: %v", err)
	}
}

// handleStorage absorbs a StorageUnavailableError: the first one is logged
// and notified, and persistence is detached for the rest of the session.
// Other errors pass through.
func (c *Coordinator) handleStorage(err error) error {
	if err == nil {
		return nil
	}
	if !utils.IsStorageUnavailable(err) {
		return err
	}
	if c.storageErr == nil {
		c.storageErr = err
		c.tasks.Detach()
		c.bin.Detach()
		c.logger.Warn("storage unavailable, continuing in memory: %v", err)
		c.notify(notification.SeverityError, MsgStorageLost)
	}
	return nil
}

// resort orders the task list by due date and recomputes the visible tasks.
// The new order is kept in memory only; every load sorts again.
func (c *Coordinator) resort() {
	c.tasks.ReplaceAll(views.SortTasks(c.tasks.Tasks()))
	c.refilter()
}

func (c *Coordinator) refilter() {
	c.visible = views.FilterTasks(c.tasks.Tasks(), c.filter, c.now())
}
