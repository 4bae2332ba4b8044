package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/grid"
)

// handleMouseMsg selects a range by dragging with the left button: press
// starts the selection, motion extends it and release opens the slot form.
// A press on an existing slot edits it. The wheel scrolls the rows.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll = max(0, m.scroll-1)
		return m, nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll = max(0, min(m.scroll+1, m.rows()-m.visibleRows()))
		return m, nil
	}

	ed := m.sess.Editor()
	pos, onGrid := m.cellPosition(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.mode != ModeNormal || !onGrid {
			return m, nil
		}
		m.cursor = pos
		if s := m.slotAtCursor(); s != nil {
			d, err := ed.EditDraft(s.ID)
			if err != nil {
				return m.setError(err)
			}
			return m.openForm(d)
		}
		if !ed.BeginSelection(pos) {
			return m.setError(m.selectionError())
		}
		m.log.Debug("mouse selection started", zap.Int("day", pos.Day), zap.Int("minutes", pos.Minutes()))
		m.mode = ModeSelect
		m.dragging = true
		return m, nil

	case tea.MouseActionMotion:
		if !m.dragging || m.mode != ModeSelect || !onGrid {
			return m, nil
		}
		m.cursor = pos
		ed.UpdateSelection(pos)
		return m, nil

	case tea.MouseActionRelease:
		if !m.dragging {
			return m, nil
		}
		m.dragging = false
		if m.mode != ModeSelect {
			return m, nil
		}
		if onGrid {
			m.cursor = pos
			ed.UpdateSelection(pos)
		}
		d, ok := ed.FinishSelection()
		if !ok {
			m.mode = ModeNormal
			return m, nil
		}
		return m.openForm(d)
	}
	return m, nil
}

// cellPosition maps a terminal cell to a grid position. The grid geometry
// is laid over the screen with the time column as the label column, one
// day column per colWidth cells and one row per half hour.
func (m Model) cellPosition(x, y int) (grid.Position, bool) {
	colW := float64(m.colWidth())
	row := m.bucketHeight()
	r := m.sess.Editor().Grid().Range

	p := grid.Point{
		X: float64(x-timeColWidth) + colW,
		Y: (float64(y-headerLines) + 0.5) * row,
	}
	size := grid.Size{
		Width:  colW * grid.Columns,
		Height: float64(m.visibleRows()) * row,
	}
	scroll := float64(r.Start*60/grid.BucketMinutes+m.scroll) * row
	return m.sess.Editor().Grid().PositionFromPoint(p, size, scroll)
}
