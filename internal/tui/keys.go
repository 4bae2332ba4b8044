package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/slot"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.log.Debug("key", zap.String("key", msg.String()), zap.Int("mode", int(m.mode)))

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModePrompt:
		return m.handlePromptKeys(msg)
	case ModeForm:
		return m.handleFormKeys(msg)
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	case ModeMove:
		return m.handleMoveKeys(msg)
	case ModeSelect:
		return m.handleSelectKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNavigation moves the cursor and reports whether msg was a navigation key.
func (m *Model) handleNavigation(msg tea.KeyMsg) bool {
	ed := m.sess.Editor()
	row := m.rowOf(m.cursor)

	switch msg.String() {
	case "h", "left":
		if m.cursor.Day > 0 {
			m.cursor.Day--
		} else {
			ed.ShiftWeek(-1)
			m.cursor.Day = grid.DaysPerWeek - 1
		}
	case "l", "right":
		if m.cursor.Day < grid.DaysPerWeek-1 {
			m.cursor.Day++
		} else {
			ed.ShiftWeek(1)
			m.cursor.Day = 0
		}
	case "j", "down":
		if row < m.rows()-1 {
			m.cursor = m.positionAt(m.cursor.Day, row+1)
		}
	case "k", "up":
		if row > 0 {
			m.cursor = m.positionAt(m.cursor.Day, row-1)
		}
	case "pgdown", "ctrl+d":
		m.cursor = m.positionAt(m.cursor.Day, min(m.rows()-1, row+m.visibleRows()))
	case "pgup", "ctrl+u":
		m.cursor = m.positionAt(m.cursor.Day, max(0, row-m.visibleRows()))
	case "[", "H", "shift+left":
		ed.ShiftWeek(-1)
	case "]", "L", "shift+right":
		ed.ShiftWeek(1)
	default:
		return false
	}
	m.ensureCursorVisible()
	return true
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.handleNavigation(msg) {
		return m, nil
	}
	ed := m.sess.Editor()

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "t":
		return m.goToToday(), nil

	case "enter":
		if s := m.slotAtCursor(); s != nil {
			d, err := ed.EditDraft(s.ID)
			if err != nil {
				return m.setError(err)
			}
			return m.openForm(d)
		}
		if !ed.BeginSelection(m.cursor) {
			return m.setError(m.selectionError())
		}
		d, _ := ed.FinishSelection()
		return m.openForm(d)

	case " ", "v":
		if !ed.BeginSelection(m.cursor) {
			return m.setError(m.selectionError())
		}
		m.mode = ModeSelect
		return m, nil

	case "m":
		s := m.slotAtCursor()
		if s == nil {
			return m.setStatus("no slot under the cursor")
		}
		if !ed.Role().CanEdit() {
			return m.setError(slot.ErrNotEditor)
		}
		m.mode = ModeMove
		m.moveID = s.ID
		return m, nil

	case "x", "d", "delete":
		s := m.slotAtCursor()
		if s == nil {
			return m.setStatus("no slot under the cursor")
		}
		if !ed.Role().CanEdit() {
			return m.setError(slot.ErrNotEditor)
		}
		m.mode = ModeConfirm
		m.deleteID = s.ID
		return m, nil

	case "o":
		return m.run(actionVoteOK)
	case "n":
		return m.run(actionVoteNG)
	case "s":
		return m.run(actionShare)
	case "a":
		return m.run(actionAnswer)
	case "r":
		if ed.Role() != slot.RoleOwner {
			return m.setError(slot.ErrNotEditor)
		}
		if m.sess.Actor() == "" {
			return m.askName(actionTitle), textinput.Blink
		}
		return m.run(actionTitle)
	}
	return m, nil
}

func (m Model) selectionError() error {
	ed := m.sess.Editor()
	switch {
	case !ed.Role().CanEdit():
		return slot.ErrNotEditor
	case !ed.Grid().Valid(m.cursor):
		return grid.ErrOutOfRange
	}
	return slot.ErrSlotInPast
}

// handleSelectKeys extends the range selection until it is confirmed.
func (m Model) handleSelectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.sess.Editor()
	week := ed.WeekStart()
	if m.handleNavigation(msg) {
		if !ed.WeekStart().Equal(week) {
			// The selection lives in one week.
			ed.CancelSelection()
			m.mode = ModeNormal
			return m, nil
		}
		ed.UpdateSelection(m.cursor)
		return m, nil
	}

	switch msg.String() {
	case "esc", "q":
		ed.CancelSelection()
		m.mode = ModeNormal
		return m, nil
	case " ", "v", "enter":
		d, ok := ed.FinishSelection()
		if !ok {
			m.mode = ModeNormal
			return m, nil
		}
		return m.openForm(d)
	}
	return m, nil
}

// handleMoveKeys moves the cursor as a preview and drops the slot on enter.
func (m Model) handleMoveKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.handleNavigation(msg) {
		return m, nil
	}

	switch msg.String() {
	case "esc", "q":
		m.mode = ModeNormal
		m.moveID = ""
		return m, nil
	case "enter", "m":
		id := m.moveID
		m.mode = ModeNormal
		m.moveID = ""
		if !m.sess.Editor().MoveSlot(id, m.cursor) {
			return m.setStatus("cannot move the slot here")
		}
		if err := m.sess.Save(m.ctx); err != nil {
			return m.setError(err)
		}
		return m.setStatus("moved")
	}
	return m, nil
}

// handleConfirmKeys confirms or cancels a pending delete.
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.deleteID
	m.mode = ModeNormal
	m.deleteID = ""

	switch msg.String() {
	case "y", "Y", "enter":
		if err := m.sess.Editor().DeleteSlot(id); err != nil {
			return m.setError(err)
		}
		if err := m.sess.Save(m.ctx); err != nil {
			return m.setError(err)
		}
		return m.setStatus("deleted")
	}
	return m, nil
}

// handleFormKeys handles keys while the slot form is open.
func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.formTitle.Blur()
		m.formNotes.Blur()
		return m, nil
	case "enter":
		return m.submitForm()
	case "tab", "down":
		return m.focusField((m.formFocus + 1) % fieldCount)
	case "shift+tab", "up":
		return m.focusField((m.formFocus + fieldCount - 1) % fieldCount)
	}

	var cmd tea.Cmd
	switch m.formFocus {
	case fieldTitle:
		m.formTitle, cmd = m.formTitle.Update(msg)
	case fieldNotes:
		m.formNotes, cmd = m.formNotes.Update(msg)
	case fieldColor:
		switch msg.String() {
		case "left", "h":
			m.formColor = (m.formColor + len(slot.Palette) - 1) % len(slot.Palette)
		case "right", "l", " ":
			m.formColor = (m.formColor + 1) % len(slot.Palette)
		}
	}
	return m, cmd
}

func (m Model) focusField(f formField) (Model, tea.Cmd) {
	m.formFocus = f
	m.formTitle.Blur()
	m.formNotes.Blur()
	switch f {
	case fieldTitle:
		return m, m.formTitle.Focus()
	case fieldNotes:
		return m, m.formNotes.Focus()
	}
	return m, nil
}

// handlePromptKeys handles the name and title prompts.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.pending = actionNone
		m.prompt.Blur()
		return m, nil
	case "enter":
		return m.submitPrompt()
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) submitPrompt() (Model, tea.Cmd) {
	value := strings.TrimSpace(m.prompt.Value())
	if value == "" {
		return m, nil
	}

	switch m.promptKind {
	case promptName:
		if err := m.sess.SetName(m.ctx, value); err != nil {
			return m.setError(err)
		}
	case promptTitle:
		if err := m.sess.SetTitle(m.ctx, value); err != nil {
			if errors.Is(err, slot.ErrEmptyTitle) {
				return m, nil
			}
			return m.setError(err)
		}
	}

	m.mode = ModeNormal
	m.prompt.Blur()
	next := m.pending
	m.pending = actionNone
	if next != actionNone {
		return m.run(next)
	}
	return m, nil
}
