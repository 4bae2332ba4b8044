package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/chousei/internal/approval"
	"github.com/javiermolinar/chousei/internal/dateutil"
	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/layout"
	"github.com/javiermolinar/chousei/internal/slot"
)

const bucket = grid.BucketMinutes * time.Minute

// gridState is the per-frame data shared by all cells.
type gridState struct {
	weekStart time.Time
	now       time.Time
	byDay     [grid.DaysPerWeek][]*slot.Slot
	blocks    map[string]layout.Block
	alt       map[string]bool
	nowRow    int // -1 when now is outside the displayed week

	selecting      bool
	selLo, selHi   time.Time
	moving         *slot.Slot
	moveLo, moveHi time.Time
}

func (m Model) buildGridState() gridState {
	ed := m.sess.Editor()
	g := gridState{
		weekStart: ed.WeekStart(),
		now:       m.now(),
		blocks:    make(map[string]layout.Block),
		alt:       make(map[string]bool),
		nowRow:    -1,
	}

	for _, b := range layout.Blocks(ed.WeekSlots(), g.weekStart, ed.Grid()) {
		g.blocks[b.Slot.ID] = b
		g.alt[b.Slot.ID] = len(g.byDay[b.Day])%2 == 1
		g.byDay[b.Day] = append(g.byDay[b.Day], b.Slot)
	}
	if _, top, ok := ed.Grid().NowLine(g.now, g.weekStart); ok {
		g.nowRow = m.rowAtOffset(top)
	}

	if from, to, ok := ed.Selection(); ok && m.mode == ModeSelect {
		a, b := from.Time(g.weekStart), to.Time(g.weekStart)
		if b.Before(a) {
			a, b = b, a
		}
		g.selecting, g.selLo, g.selHi = true, a, b
	}
	if m.mode == ModeMove {
		if s := slot.Find(ed.Slots(), m.moveID); s != nil {
			g.moving = s
			g.moveLo = m.cursorTime()
			g.moveHi = g.moveLo.Add(s.Duration())
		}
	}
	return g
}

// View renders the model.
func (m Model) View() string {
	colW := m.colWidth()
	g := m.buildGridState()

	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderTitle(), m.renderMeta(), m.renderDayHeader(colW))

	end := min(m.rows(), m.scroll+m.visibleRows())
	for row := m.scroll; row < end; row++ {
		lines = append(lines, m.renderRow(g, row, colW))
	}
	for len(lines) < m.height-footerLines {
		lines = append(lines, "")
	}
	lines = append(lines, m.renderFooter()...)
	base := strings.Join(lines, "\n")

	o := overlay{bg: m.styles.Background()}
	switch m.mode {
	case ModeForm:
		return o.Render(base, m.width, m.height, m.renderForm())
	case ModePrompt:
		return o.Render(base, m.width, m.height, m.renderPrompt())
	case ModeConfirm:
		return o.Render(base, m.width, m.height, m.renderConfirm())
	}
	return base
}

func (m Model) renderTitle() string {
	title := m.sess.Title()
	if title == "" {
		title = "Untitled schedule"
	}
	return m.styles.TitleStyle.Render(title) + m.styles.MetaStyle.Render("  "+m.weekLabel())
}

func (m Model) renderMeta() string {
	parts := []string{m.sess.Editor().Role().String()}
	if actor := m.sess.Actor(); actor != "" {
		parts = append(parts, actor)
	}
	if known := m.sess.Known(); len(known) > 0 {
		parts = append(parts, "respondents: "+strings.Join(known, ", "))
	}
	return m.styles.MetaStyle.Render(strings.Join(parts, " · "))
}

func (m Model) renderDayHeader(colW int) string {
	var b strings.Builder
	b.WriteString(m.styles.TimeColumnStyle.Width(timeColWidth).Render(""))
	weekStart := m.sess.Editor().WeekStart()
	for day := 0; day < grid.DaysPerWeek; day++ {
		label := weekStart.AddDate(0, 0, day).Format("Mon 2")
		style := m.styles.DayHeaderStyle
		if m.isToday(day) {
			style = m.styles.DayHeaderTodayStyle
		}
		b.WriteString(style.Width(colW).Render(ansi.Truncate(label, colW, "")))
	}
	return b.String()
}

func (m Model) renderRow(g gridState, row, colW int) string {
	var b strings.Builder

	pos := m.positionAt(0, row)
	label := ""
	if pos.Minute == 0 {
		label = dateutil.FormatClock(pos.Minutes())
	}
	labelStyle := m.styles.TimeColumnStyle
	if g.nowRow == row {
		labelStyle = m.styles.NowLabelStyle
		label = dateutil.FormatClock(dateutil.MinutesOfDay(g.now))
	}
	b.WriteString(labelStyle.Width(timeColWidth).Render(label))

	for day := 0; day < grid.DaysPerWeek; day++ {
		b.WriteString(m.renderCell(g, m.positionAt(day, row), colW))
	}
	return b.String()
}

func (m Model) renderCell(g gridState, pos grid.Position, w int) string {
	start := pos.Time(g.weekStart)
	end := start.Add(bucket)

	var covering []*slot.Slot
	for _, s := range g.byDay[pos.Day] {
		if s.Start.Before(end) && s.End.After(start) {
			covering = append(covering, s)
		}
	}

	// Cursor, selection and move preview paint the whole cell.
	text := ""
	if len(covering) > 0 {
		text = m.blockText(covering[0], start)
	}
	switch {
	case pos == m.cursor:
		if m.mode == ModeMove && g.moving != nil {
			text = " " + g.moving.Title
		}
		return m.styles.CursorStyle.Width(w).Render(ansi.Truncate(text, w, "…"))
	case g.moving != nil && pos.Day == m.cursor.Day && start.Before(g.moveHi) && end.After(g.moveLo):
		return m.styles.MovePreviewStyle.Width(w).Render("")
	case g.selecting && !start.Before(g.selLo) && !start.After(g.selHi):
		return m.styles.SelectionStyle.Width(w).Render("")
	}

	past := !end.After(g.now)
	if len(covering) == 0 {
		style := m.styles.EmptyCellStyle
		if past {
			style = m.styles.PastCellStyle
		}
		return style.Width(w).Render("")
	}

	n := max(1, g.blocks[covering[0].ID].Placement.Count)
	var b strings.Builder
	used := 0
	for col := 0; col < n; col++ {
		s := placedIn(covering, g.blocks, col)
		end := (col + 1) * w / n
		if s != nil && col < n-1 {
			end = blockEnd(g.blocks[s.ID], w)
		}
		cw := max(0, end-used)
		used += cw

		if s == nil {
			style := m.styles.EmptyCellStyle
			if past {
				style = m.styles.PastCellStyle
			}
			b.WriteString(style.Width(cw).Render(""))
			continue
		}
		style := m.styles.SlotStyle(s.Color, s.IsPast(g.now), g.alt[s.ID])
		b.WriteString(style.Width(cw).Render(ansi.Truncate(m.blockText(s, start), cw, "…")))
	}
	return b.String()
}

// blockEnd returns the cell offset inside a day column of width w where b's
// rectangle ends.
func blockEnd(b layout.Block, w int) int {
	dayLeft := float64(b.Day+1) * grid.ColumnWidth
	frac := (b.Rect.Left + b.Rect.Width - dayLeft) / grid.ColumnWidth
	return int(math.Round(frac * float64(w)))
}

func placedIn(slots []*slot.Slot, blocks map[string]layout.Block, col int) *slot.Slot {
	for _, s := range slots {
		if blocks[s.ID].Placement.Column == col {
			return s
		}
	}
	return nil
}

// blockText is the title on a block's first row and its tally on the second.
func (m Model) blockText(s *slot.Slot, cellStart time.Time) string {
	switch {
	case !s.Start.Before(cellStart) && s.Start.Before(cellStart.Add(bucket)):
		return " " + s.Title
	case !s.Start.Before(cellStart.Add(-bucket)) && s.Start.Before(cellStart):
		return " " + m.tally(s)
	}
	return ""
}

func (m Model) tally(s *slot.Slot) string {
	t := approval.Count(s, m.sess.Known())
	text := fmt.Sprintf("%s %d/%d", voteMark(s, m.sess.Actor()), len(t.OK), len(t.OK)+len(t.NG)+len(t.Pending))
	if approval.ComputeQuorum(s, m.sess.Known(), m.sess.Actor()) {
		text += " ★"
	}
	return text
}

func voteMark(s *slot.Slot, actor string) string {
	v, ok := s.Vote(actor)
	switch {
	case !ok:
		return "○"
	case v:
		return "✓"
	default:
		return "✗"
	}
}

func (m Model) renderFooter() []string {
	status := m.slotDetail()
	switch {
	case m.sess.Status() != "":
		status = m.styles.StatusStyle.Render(m.sess.Status())
	case m.statusMsg != "" && m.statusErr:
		status = m.styles.ErrorStyle.Render(m.statusMsg)
	case m.statusMsg != "":
		status = m.styles.StatusStyle.Render(m.statusMsg)
	}

	link := ""
	if m.lastLink != "" {
		link = m.styles.LinkStyle.Render(ansi.Truncate(m.lastLink, max(10, m.width), "…"))
	}
	return []string{status, link, m.styles.HelpStyle.Render(m.helpLine())}
}

// slotDetail describes the slot under the cursor.
func (m Model) slotDetail() string {
	s := m.slotAtCursor()
	if s == nil {
		return ""
	}
	t := approval.Count(s, m.sess.Known())
	parts := []string{
		s.Title,
		s.Start.Format("Mon Jan 2 15:04") + "-" + s.End.Format("15:04"),
	}
	if len(t.OK) > 0 {
		parts = append(parts, m.styles.OKStyle.Render("OK "+strings.Join(t.OK, ", ")))
	}
	if len(t.NG) > 0 {
		parts = append(parts, m.styles.NGStyle.Render("NG "+strings.Join(t.NG, ", ")))
	}
	if s.CreatedBy != "" {
		parts = append(parts, "by "+s.CreatedBy)
	}
	return strings.Join(parts, " · ")
}

func (m Model) helpLine() string {
	switch m.mode {
	case ModeSelect:
		return "move to extend · space/enter: done · esc: cancel"
	case ModeMove:
		return "move to place · enter: drop · esc: cancel"
	case ModeForm:
		return "tab: next field · enter: save · esc: cancel"
	case ModePrompt, ModeConfirm:
		return ""
	}
	if m.sess.Editor().Role().CanEdit() {
		return "hjkl: move · enter: new/edit · space: select · m: move · x: delete · o/n: vote · s: share · a: answer · [ ]: week · t: today · q: quit"
	}
	return "hjkl: move · o/n: vote OK/NG · a: answer · [ ]: week · t: today · q: quit"
}

func (m Model) renderForm() string {
	heading := "New slot"
	if !m.draft.IsNew() {
		heading = "Edit slot"
	}
	when := m.draft.Start.Format("Mon Jan 2 15:04") + "-" + m.draft.End.Format("15:04")

	label := func(f formField, text string) string {
		if m.formFocus == f {
			return m.styles.LabelFocusStyle.Render(text)
		}
		return m.styles.LabelStyle.Render(text)
	}
	color := m.styles.Swatch(slot.Palette[m.formColor])

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.DialogTitleStyle.Render(heading)+"  "+when,
		"",
		label(fieldTitle, "Title")+m.formTitle.View(),
		label(fieldNotes, "Notes")+m.formNotes.View(),
		label(fieldColor, "Color")+color,
	)
	return m.styles.DialogStyle.Render(body)
}

func (m Model) renderPrompt() string {
	heading := "What is your name?"
	if m.promptKind == promptTitle {
		heading = "Name this schedule"
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.DialogTitleStyle.Render(heading),
		m.prompt.View(),
		m.styles.HelpStyle.Render("enter: ok · esc: cancel"),
	)
	return m.styles.DialogStyle.Render(body)
}

func (m Model) renderConfirm() string {
	title := ""
	if s := slot.Find(m.sess.Editor().Slots(), m.deleteID); s != nil {
		title = s.Title
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.DialogTitleStyle.Render(fmt.Sprintf("Delete %q?", title)),
		m.styles.HelpStyle.Render("y: delete · any other key: keep"),
	)
	return m.styles.DialogStyle.Render(body)
}
