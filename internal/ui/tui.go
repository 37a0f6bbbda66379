// Package ui provides the interactive terminal editor for the task tree.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskgrid/internal/state"
	"github.com/nibzard/taskgrid/internal/tree"
)

// ErrNoTTY is returned by Run when stdout is not a terminal.
var ErrNoTTY = errors.New("tui requires a TTY")

// Run starts the editor on app and blocks until the user quits.
func Run(ctx context.Context, app *state.App) error {
	if !IsTTY(os.Stdout) {
		return ErrNoTTY
	}
	program := tea.NewProgram(newTUIModel(ctx, app), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeConfirm
)

type editField int

const (
	editTitle editField = iota
	editDescription
)

// pending is an action waiting for y/n.
type pending struct {
	prompt string
	run    func() (string, error)
}

type tuiModel struct {
	ctx      context.Context
	app      *state.App
	rows     []*tree.Node
	cursor   int
	mode     mode
	input    textinput.Model
	field    editField
	target   string
	confirm  *pending
	showHelp bool
	status   string
	isErr    bool
	width    int
	styles   styles
}

func newTUIModel(ctx context.Context, app *state.App) *tuiModel {
	m := &tuiModel{
		ctx:    ctx,
		app:    app,
		input:  newInput(),
		styles: defaultStyles(),
	}
	m.refresh("")
	return m
}

func newInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60
	ti.Prompt = "› "
	return ti
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 30 {
			m.input.Width = msg.Width - 20
		}
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}

	if m.mode == modeEdit {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *tuiModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		return m, tea.Quit
	}
	if m.showHelp {
		if key == "?" || key == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch key {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.rows) - 1
	case "s":
		m.split()
	case "u":
		m.askUnsplit()
	case " ", "x":
		m.toggleCompleted()
	case "e":
		return m, m.startEdit(editTitle)
	case "d":
		return m, m.startEdit(editDescription)
	case "+", "=":
		m.adjust(1, 0)
	case "-", "_":
		m.adjust(-1, 0)
	case ">", ".":
		m.adjust(0, 1)
	case "<", ",":
		m.adjust(0, -1)
	case "c":
		m.toggleShowCompleted()
	case "R":
		m.ask("Reset the goal? Every task is removed. (y/n)", func() (string, error) {
			return "Started a new goal", m.app.ResetRoot(m.ctx)
		})
	case "C":
		m.ask("Clear all saved data? (y/n)", func() (string, error) {
			return "Cleared saved data", m.app.ClearAll(m.ctx)
		})
	case "?":
		m.showHelp = true
	}
	return m, nil
}

func (m *tuiModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	p := m.confirm
	m.confirm = nil
	m.mode = modeBrowse
	if p == nil {
		return m, nil
	}

	switch msg.String() {
	case "y", "Y":
		keep := m.selectedID()
		done, err := p.run()
		m.refresh(keep)
		m.report(done, err)
	default:
		m.report("Cancelled", nil)
	}
	return m, nil
}

func (m *tuiModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.endEdit()
		m.report("Edit cancelled", nil)
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		m.endEdit()
		m.commitEdit(value)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) selected() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *tuiModel) selectedID() string {
	if n := m.selected(); n != nil {
		return n.ID
	}
	return ""
}

func (m *tuiModel) move(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *tuiModel) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// refresh rebuilds the visible rows and keeps the cursor on keepID when it
// is still visible.
func (m *tuiModel) refresh(keepID string) {
	m.rows = tree.Flatten(m.app.Root(), !m.app.ShowCompleted())
	if keepID != "" {
		for i, n := range m.rows {
			if n.ID == keepID {
				m.cursor = i
				return
			}
		}
	}
	m.clampCursor()
}

func (m *tuiModel) report(msg string, err error) {
	if err != nil {
		m.status = err.Error()
		m.isErr = true
		return
	}
	m.status = msg
	m.isErr = false
}

func (m *tuiModel) ask(prompt string, run func() (string, error)) {
	m.confirm = &pending{prompt: prompt, run: run}
	m.mode = modeConfirm
}

func (m *tuiModel) split() {
	n := m.selected()
	if err := m.app.Model().CheckSplit(n); err != nil {
		m.report("", fmt.Errorf("cannot split: %w", err))
		return
	}
	_, err := m.app.Split(m.ctx, n.ID)
	m.refresh(n.ID)
	m.report(fmt.Sprintf("Split %q into 2 sub-tasks", n.DisplayTitle()), err)
}

func (m *tuiModel) askUnsplit() {
	n := m.selected()
	if n == nil || n.IsLeaf() {
		m.report("", errors.New("nothing to unsplit"))
		return
	}
	id, title := n.ID, n.DisplayTitle()
	count := tree.CountNodes(n) - 1
	m.ask(fmt.Sprintf("Remove %d sub-tasks under %q? (y/n)", count, title), func() (string, error) {
		return fmt.Sprintf("Removed %d sub-tasks", count), m.app.Unsplit(m.ctx, id)
	})
}

func (m *tuiModel) toggleCompleted() {
	n := m.selected()
	if n == nil {
		return
	}
	done, err := m.app.ToggleCompleted(m.ctx, n.ID)
	m.refresh(n.ID)
	msg := "Marked not done"
	if done {
		msg = "Marked done"
	}
	m.report(msg, err)
}

func (m *tuiModel) toggleShowCompleted() {
	show, err := m.app.ToggleShowCompleted(m.ctx)
	m.refresh(m.selectedID())
	msg := "Hiding completed tasks"
	if show {
		msg = "Showing completed tasks"
	}
	m.report(msg, err)
}

func (m *tuiModel) adjust(difficulty, priority int) {
	n := m.selected()
	if n == nil {
		return
	}
	f := tree.FieldsOf(n)
	f.Difficulty += difficulty
	f.Priority += priority
	err := m.app.Edit(m.ctx, n.ID, f)
	m.report(fmt.Sprintf("Difficulty %d, priority %d", n.Difficulty, n.Priority), err)
}

func (m *tuiModel) startEdit(field editField) tea.Cmd {
	n := m.selected()
	if n == nil {
		return nil
	}
	m.mode = modeEdit
	m.field = field
	m.target = n.ID
	m.input.Reset()
	if field == editTitle {
		m.input.Placeholder = tree.UntitledTitle
		m.input.SetValue(n.Title)
	} else {
		m.input.Placeholder = "Add a description"
		m.input.SetValue(n.Description)
	}
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *tuiModel) endEdit() {
	m.input.Blur()
	m.mode = modeBrowse
}

func (m *tuiModel) commitEdit(value string) {
	n := tree.Find(m.app.Root(), m.target)
	if n == nil {
		m.report("", fmt.Errorf("%w: %q", state.ErrNodeNotFound, m.target))
		return
	}
	f := tree.FieldsOf(n)
	if m.field == editTitle {
		f.Title = value
	} else {
		f.Description = value
	}
	err := m.app.Edit(m.ctx, n.ID, f)
	m.refresh(n.ID)
	m.report("Saved", err)
}
