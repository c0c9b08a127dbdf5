// Package tui provides a terminal user interface for the task list and the
// recycle bin.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todobin/internal/dates"
	"todobin/internal/edit"
	"todobin/internal/markdown"
	"todobin/internal/notification"
	"todobin/internal/task"
	"todobin/internal/views"
)

// Coordinator is the subset of coordinator.Coordinator the TUI drives.
type Coordinator interface {
	Load(ctx context.Context) error
	Reload(ctx context.Context) (bool, error)
	AddTask(ctx context.Context, text, dueDate string) (task.Task, error)
	ToggleComplete(ctx context.Context, id string) (bool, error)
	DeleteTask(ctx context.Context, id string) (task.Entry, error)
	DeleteVisible(ctx context.Context) ([]task.Entry, error)
	RestoreTask(ctx context.Context, id string) (task.Task, error)
	RestoreAll(ctx context.Context) ([]task.Task, error)
	PurgeBin(ctx context.Context) error
	BeginTextEdit(ctx context.Context, id string) (*edit.Session, error)
	BeginDueDateEdit(ctx context.Context, id string) (*edit.Session, error)
	SetFilter(kind views.FilterKind)
	Filter() views.FilterKind
	Visible() []task.Task
	Bin() []task.Entry
	Persistent() bool
	Now() time.Time
}

// Notices supplies the latest action message for the status bar.
type Notices interface {
	Last() (notification.Notification, bool)
}

// Focus indicates which pane has focus
type Focus int

const (
	FocusTasks Focus = iota
	FocusBin
)

// Mode indicates the current input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeEdit
	ModeHelp
	ModeConfirm
)

// ReloadMsg asks the model to re-read storage, e.g. after the store changed
// on disk.
type ReloadMsg struct{}

type loadMsg struct{}

// confirmation is a pending yes/no question
type confirmation struct {
	prompt string
	action func() error
}

// Model represents the TUI state
type Model struct {
	coord   Coordinator
	notices Notices
	ctx     context.Context

	// Selection
	taskCursor int
	binCursor  int
	focus      Focus

	// Mode and input
	mode      Mode
	textInput textinput.Model
	session   *edit.Session
	confirm   *confirmation
	err       error

	// UI dimensions
	width  int
	height int

	// Styles
	taskPaneStyle  lipgloss.Style
	binPaneStyle   lipgloss.Style
	focusedBorder  lipgloss.Color
	selectedStyle  lipgloss.Style
	completedStyle lipgloss.Style
	overdueStyle   lipgloss.Style
	todayStyle     lipgloss.Style
	helpStyle      lipgloss.Style
	dialogStyle    lipgloss.Style
	statusBarStyle lipgloss.Style
	errorStyle     lipgloss.Style
}

// New creates a new TUI model. notices may be nil.
func New(c Coordinator, notices Notices) *Model {
	ti := textinput.New()
	ti.Placeholder = "Enter text..."
	ti.CharLimit = 256

	return &Model{
		coord:         c,
		notices:       notices,
		ctx:           context.Background(),
		textInput:     ti,
		focus:         FocusTasks,
		mode:          ModeNormal,
		focusedBorder: lipgloss.Color("62"),
		taskPaneStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		binPaneStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		completedStyle: lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color("240")),
		overdueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		todayStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		dialogStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
		statusBarStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}

// WithContext sets the context passed to every action.
func (m *Model) WithContext(ctx context.Context) *Model {
	m.ctx = ctx
	return m
}

// Init initializes the TUI
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return loadMsg{} }
}

// Mode returns the current input mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// Err returns the error from the last action, if any.
func (m *Model) Err() error {
	return m.err
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadMsg:
		m.err = m.coord.Load(m.ctx)
		m.clampCursors()
		return m, nil

	case ReloadMsg:
		if _, err := m.coord.Reload(m.ctx); err != nil {
			m.err = err
		}
		m.clampCursors()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAdd:
			return m.handleAddMode(msg)
		case ModeEdit:
			return m.handleEditMode(msg)
		case ModeHelp:
			return m.handleHelpMode(msg)
		case ModeConfirm:
			return m.handleConfirmMode(msg)
		}
		return m.handleNormalMode(msg)
	}

	if m.mode == ModeAdd || m.mode == ModeEdit {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.focus == FocusTasks {
			m.focus = FocusBin
		} else {
			m.focus = FocusTasks
		}

	case "up", "k":
		if m.focus == FocusTasks && m.taskCursor > 0 {
			m.taskCursor--
		} else if m.focus == FocusBin && m.binCursor > 0 {
			m.binCursor--
		}

	case "down", "j":
		if m.focus == FocusTasks && m.taskCursor < len(m.coord.Visible())-1 {
			m.taskCursor++
		} else if m.focus == FocusBin && m.binCursor < len(m.coord.Bin())-1 {
			m.binCursor++
		}

	case "a":
		m.mode = ModeAdd
		m.textInput.Reset()
		m.textInput.Placeholder = "New task (optional @YYYY-MM-DD)..."
		m.textInput.Focus()
		return m, textinput.Blink

	case "e":
		return m.beginEdit(edit.FieldText)

	case "d":
		return m.beginEdit(edit.FieldDueDate)

	case " ", "c":
		if t, ok := m.selectedTask(); ok {
			_, m.err = m.coord.ToggleComplete(m.ctx, t.ID)
		}

	case "x", "delete":
		if t, ok := m.selectedTask(); ok {
			_, m.err = m.coord.DeleteTask(m.ctx, t.ID)
		}

	case "X":
		if len(m.coord.Visible()) > 0 {
			m.ask(fmt.Sprintf("Move all %d visible tasks to the recycle bin?", len(m.coord.Visible())), func() error {
				_, err := m.coord.DeleteVisible(m.ctx)
				return err
			})
		}

	case "f":
		m.coord.SetFilter(m.coord.Filter().Next())
		m.taskCursor = 0

	case "r":
		if e, ok := m.selectedEntry(); ok {
			_, m.err = m.coord.RestoreTask(m.ctx, e.ID)
		}

	case "R":
		_, m.err = m.coord.RestoreAll(m.ctx)

	case "P":
		if len(m.coord.Bin()) > 0 {
			m.ask("Permanently delete everything in the recycle bin?", func() error {
				return m.coord.PurgeBin(m.ctx)
			})
		}

	case "?":
		m.mode = ModeHelp
	}

	m.clampCursors()
	return m, nil
}

func (m *Model) beginEdit(field edit.Field) (tea.Model, tea.Cmd) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}

	var s *edit.Session
	var err error
	if field == edit.FieldDueDate {
		s, err = m.coord.BeginDueDateEdit(m.ctx, t.ID)
	} else {
		s, err = m.coord.BeginTextEdit(m.ctx, t.ID)
	}
	if err != nil {
		m.err = err
		return m, nil
	}

	m.session = s
	m.mode = ModeEdit
	m.textInput.Reset()
	m.textInput.SetValue(s.Initial())
	if field == edit.FieldDueDate {
		m.textInput.Placeholder = "YYYY-MM-DD, today, +3d..."
	} else {
		m.textInput.Placeholder = "Task text..."
	}
	m.textInput.Focus()
	return m, textinput.Blink
}

func (m *Model) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		text, due := markdown.ParseTaskText(m.textInput.Value())
		m.mode = ModeNormal
		m.textInput.Blur()
		if _, err := m.coord.AddTask(m.ctx, text, due); err != nil {
			m.err = err
			return m, nil
		}
		m.selectTask(text)
		return m, nil

	case tea.KeyEsc:
		m.mode = ModeNormal
		m.textInput.Blur()
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		m.finishEdit(m.session.Confirm(m.textInput.Value(), edit.KeyConfirm))
		return m, nil

	case tea.KeyTab:
		m.finishEdit(m.session.Confirm(m.textInput.Value(), edit.FocusLoss))
		return m, nil

	case tea.KeyEsc:
		m.finishEdit(m.session.Cancel())
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) finishEdit(state edit.State) {
	if state == edit.Cancelled {
		m.err = m.session.Err()
	}
	m.session = nil
	m.mode = ModeNormal
	m.textInput.Blur()
	m.clampCursors()
}

func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.mode = ModeNormal
		return m, nil
	}

	if msg.String() == "q" || msg.String() == "?" {
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if m.confirm != nil {
			m.err = m.confirm.action()
		}
		m.confirm = nil
		m.mode = ModeNormal
		m.clampCursors()
		return m, nil

	case "n", "N":
		m.confirm = nil
		m.mode = ModeNormal
		return m, nil
	}

	if msg.Type == tea.KeyEsc {
		m.confirm = nil
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *Model) ask(prompt string, action func() error) {
	m.confirm = &confirmation{prompt: prompt, action: action}
	m.mode = ModeConfirm
}

func (m *Model) selectedTask() (task.Task, bool) {
	visible := m.coord.Visible()
	if m.focus != FocusTasks || m.taskCursor >= len(visible) {
		return task.Task{}, false
	}
	return visible[m.taskCursor], true
}

func (m *Model) selectedEntry() (task.Entry, bool) {
	bin := m.coord.Bin()
	if m.focus != FocusBin || m.binCursor >= len(bin) {
		return task.Entry{}, false
	}
	return bin[m.binCursor], true
}

// selectTask moves the cursor to the first visible task with the given text
func (m *Model) selectTask(text string) {
	for i, t := range m.coord.Visible() {
		if t.Text == strings.TrimSpace(text) {
			m.taskCursor = i
			return
		}
	}
}

func (m *Model) clampCursors() {
	if n := len(m.coord.Visible()); m.taskCursor >= n {
		m.taskCursor = max(n-1, 0)
	}
	if n := len(m.coord.Bin()); m.binCursor >= n {
		m.binCursor = max(n-1, 0)
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		m.width = 80
		m.height = 24
	}

	switch m.mode {
	case ModeAdd:
		return m.renderInputDialog("Add New Task")
	case ModeEdit:
		return m.renderInputDialog(m.editTitle())
	case ModeHelp:
		return m.renderHelpDialog()
	case ModeConfirm:
		return m.renderConfirmDialog()
	}

	binWidth := m.width / 3
	taskWidth := m.width - binWidth - 4

	taskStyle, binStyle := m.taskPaneStyle, m.binPaneStyle
	if m.focus == FocusTasks {
		taskStyle = taskStyle.BorderForeground(m.focusedBorder)
	} else {
		binStyle = binStyle.BorderForeground(m.focusedBorder)
	}

	taskPane := taskStyle.Width(taskWidth).Height(m.height - 4).Render(m.renderTaskPane(taskWidth - 4))
	binPane := binStyle.Width(binWidth).Height(m.height - 4).Render(m.renderBinPane(binWidth - 4))

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, taskPane, binPane))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *Model) renderTaskPane(width int) string {
	var b strings.Builder
	b.WriteString("To Do Tasks (" + m.coord.Filter().Label() + ")\n")
	b.WriteString(strings.Repeat("─", max(width, 0)))
	b.WriteString("\n")

	visible := m.coord.Visible()
	if len(visible) == 0 {
		b.WriteString("No tasks\n")
		return b.String()
	}

	now := m.coord.Now()
	for i, t := range visible {
		selected := i == m.taskCursor && m.focus == FocusTasks
		cursor := " "
		if selected {
			cursor = ">"
		}

		text := t.Text
		switch {
		case t.Completed:
			text = m.completedStyle.Render(text)
		case selected:
			text = m.selectedStyle.Render(text)
		}

		line := cursor + " " + views.FormatCheckbox(t.Completed) + " " + text
		if t.HasDueDate() {
			line += " " + m.helpStyle.Render("Due: "+dates.FormatString(t.DueDate))
		}
		switch tag := views.StatusTag(t, now); tag {
		case "[OVERDUE]":
			line += " " + m.overdueStyle.Render(tag)
		case "[TODAY]":
			line += " " + m.todayStyle.Render(tag)
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

func (m *Model) renderBinPane(width int) string {
	bin := m.coord.Bin()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Recycle Bin (%d)\n", len(bin)))
	b.WriteString(strings.Repeat("─", max(width, 0)))
	b.WriteString("\n")

	if len(bin) == 0 {
		b.WriteString("Empty\n")
		return b.String()
	}

	for i, e := range bin {
		selected := i == m.binCursor && m.focus == FocusBin
		cursor := " "
		text := m.completedStyle.Render(e.Text)
		if selected {
			cursor = ">"
			text = m.selectedStyle.Render(e.Text)
		}
		b.WriteString(cursor + " " + text + "\n")
	}

	return b.String()
}

func (m *Model) renderStatusBar() string {
	left := ""
	if m.notices != nil {
		if n, ok := m.notices.Last(); ok {
			left = n.Message
		}
	}
	if m.err != nil {
		left = m.errorStyle.Render("Error: " + m.err.Error())
	}
	if !m.coord.Persistent() {
		left = "[memory only] " + left
	}

	right := "q:quit  ?:help"
	padding := m.width - lipgloss.Width(left) - len(right) - 2
	if padding < 1 {
		padding = 1
	}

	return m.statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m *Model) editTitle() string {
	if m.session == nil {
		return "Edit Task"
	}
	if m.session.Field() == edit.FieldDueDate {
		return "Edit Due Date"
	}
	return "Edit: " + m.session.Initial()
}

func (m *Model) renderInputDialog(title string) string {
	dialog := m.dialogStyle.Render(
		title + "\n\n" +
			m.textInput.View() + "\n\n" +
			m.helpStyle.Render("Enter: confirm  Esc: cancel"),
	)
	return m.centerDialog(dialog)
}

func (m *Model) renderHelpDialog() string {
	help := `Help - Key Bindings

Navigation:
  j/↓    Move down
  k/↑    Move up
  Tab    Switch between tasks and recycle bin

Tasks:
  a      Add new task (text @YYYY-MM-DD)
  e      Edit task text
  d      Edit due date
  Space  Toggle completion
  x      Move task to recycle bin
  X      Move all visible tasks to recycle bin
  f      Cycle filter

Recycle bin:
  r      Restore selected task
  R      Restore all
  P      Empty recycle bin (with confirm)

General:
  ?      Show this help
  q      Quit

Press Esc to close`

	return m.centerDialog(m.dialogStyle.Render(help))
}

func (m *Model) renderConfirmDialog() string {
	prompt := ""
	if m.confirm != nil {
		prompt = m.confirm.prompt
	}
	dialog := m.dialogStyle.Render(
		prompt + "\n\n" +
			m.helpStyle.Render("y: yes  n: no"),
	)
	return m.centerDialog(dialog)
}

func (m *Model) centerDialog(dialog string) string {
	lines := strings.Split(dialog, "\n")
	dialogHeight := len(lines)
	dialogWidth := lipgloss.Width(dialog)

	topPad := max((m.height-dialogHeight)/2, 0)
	leftPad := max((m.width-dialogWidth)/2, 0)

	var b strings.Builder
	for i := 0; i < topPad; i++ {
		b.WriteString("\n")
	}
	for _, line := range lines {
		b.WriteString(strings.Repeat(" ", leftPad))
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
