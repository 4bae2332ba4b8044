// Package tui provides the interactive week grid for chousei.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/dateutil"
	"github.com/javiermolinar/chousei/internal/editor"
	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/session"
	"github.com/javiermolinar/chousei/internal/slot"
	"github.com/javiermolinar/chousei/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSelect      // extending a range selection
	ModeMove        // moving a slot to the cursor
	ModeForm        // slot form is open
	ModePrompt      // asking for a name or a schedule title
	ModeConfirm     // confirming a delete
)

// action is a user request that may need a name before it can run.
type action int

const (
	actionNone action = iota
	actionTitle
	actionShare
	actionAnswer
	actionVoteOK
	actionVoteNG
)

type promptKind int

const (
	promptName promptKind = iota
	promptTitle
)

type formField int

const (
	fieldTitle formField = iota
	fieldNotes
	fieldColor
	fieldCount
)

const (
	statusDuration = 3 * time.Second
	defaultWidth   = 80
	defaultHeight  = 24
	timeColWidth   = 6
	minColWidth    = 8
	headerLines    = 3
	footerLines    = 3
)

// Options configures Run.
type Options struct {
	Theme string
	Log   *zap.Logger
	// Now overrides time.Now. It must match the session's clock.
	Now func() time.Time
}

// Model is the main TUI model.
type Model struct {
	ctx    context.Context
	sess   *session.Session
	log    *zap.Logger
	styles *Styles
	now    func() time.Time

	cursor   grid.Position
	mode     Mode
	moveID   string
	deleteID string

	draft     editor.Draft
	formTitle textinput.Model
	formNotes textinput.Model
	formFocus formField
	formColor int

	prompt     textinput.Model
	promptKind promptKind
	pending    action // retried once the name prompt is answered

	lastLink   string
	statusMsg  string
	statusErr  bool
	statusTime time.Time

	width  int
	height int
	scroll int // first visible bucket row

	dragging bool // left button held since a press on the grid
}

// New creates the model for sess.
func New(ctx context.Context, sess *session.Session, opts Options) (Model, error) {
	t, err := theme.Load(opts.Theme)
	if err != nil {
		return Model{}, err
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := Model{
		ctx:       ctx,
		sess:      sess,
		log:       opts.Log,
		styles:    NewStyles(t),
		now:       opts.Now,
		formTitle: newInput("What is it?", 80),
		formNotes: newInput("Notes (optional)", 200),
		prompt:    newInput("", 80),
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.cursor = m.initialCursor()
	m.ensureCursorVisible()

	if sess.NeedsTitle() {
		if sess.Actor() == "" {
			m = m.askName(actionTitle)
		} else {
			m = m.openPrompt(promptTitle)
		}
	}
	return m, nil
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Prompt = ""
	return ti
}

// initialCursor points at the current half hour, clamped to the displayed hours.
func (m Model) initialCursor() grid.Position {
	ed := m.sess.Editor()
	now := m.now()
	pos, ok := ed.Grid().PositionOf(now, ed.WeekStart())
	if !ok {
		pos = grid.Position{}
	}
	return m.clampToRange(pos)
}

func (m Model) clampToRange(pos grid.Position) grid.Position {
	r := m.sess.Editor().Grid().Range
	switch {
	case pos.Hour < r.Start:
		pos.Hour, pos.Minute = r.Start, 0
	case pos.Hour >= r.End:
		pos.Hour, pos.Minute = r.End-1, grid.BucketMinutes
	}
	return pos
}

// rows is the number of half-hour rows in the displayed range.
func (m Model) rows() int {
	r := m.sess.Editor().Grid().Range
	return (r.End - r.Start) * 60 / grid.BucketMinutes
}

func (m Model) rowOf(pos grid.Position) int {
	r := m.sess.Editor().Grid().Range
	return (pos.Minutes() - r.Start*60) / grid.BucketMinutes
}

func (m Model) positionAt(day, row int) grid.Position {
	r := m.sess.Editor().Grid().Range
	mins := r.Start*60 + row*grid.BucketMinutes
	return grid.Position{Day: day, Hour: mins / 60, Minute: mins % 60}
}

func (m Model) colWidth() int {
	return max(minColWidth, (m.width-timeColWidth)/grid.DaysPerWeek)
}

// bucketHeight is the pixel height of one row in the grid geometry.
func (m Model) bucketHeight() float64 {
	hh := m.sess.Editor().Grid().HourHeight
	if hh <= 0 {
		hh = grid.DefaultHourHeight
	}
	return hh * grid.BucketMinutes / 60
}

// rowAtOffset returns the row drawn at top pixels below midnight.
func (m Model) rowAtOffset(top float64) int {
	r := m.sess.Editor().Grid().Range
	return int(math.Floor(top/m.bucketHeight())) - r.Start*60/grid.BucketMinutes
}

func (m Model) visibleRows() int {
	return max(1, m.height-headerLines-footerLines)
}

func (m *Model) ensureCursorVisible() {
	row := m.rowOf(m.cursor)
	visible := m.visibleRows()
	if row < m.scroll {
		m.scroll = row
	}
	if row >= m.scroll+visible {
		m.scroll = row - visible + 1
	}
	m.scroll = max(0, min(m.scroll, m.rows()-visible))
}

func (m Model) slotAtCursor() *slot.Slot {
	return m.sess.Editor().SlotAt(m.cursor)
}

func (m Model) cursorTime() time.Time {
	return m.cursor.Time(m.sess.Editor().WeekStart())
}

// Init schedules the clock tick.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickEvery()}
	if m.mode == ModePrompt {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

func (m Model) setStatus(msg string) (Model, tea.Cmd) {
	m.statusMsg = msg
	m.statusErr = false
	m.statusTime = m.now().Add(statusDuration)
	return m, clearStatusAfter(statusDuration)
}

func (m Model) setError(err error) (Model, tea.Cmd) {
	m.log.Debug("tui error", zap.Error(err))
	m, cmd := m.setStatus(describeError(err))
	m.statusErr = true
	return m, cmd
}

func describeError(err error) string {
	switch {
	case errors.Is(err, slot.ErrNotEditor):
		return "only the schedule creator can change slots"
	case errors.Is(err, slot.ErrSlotInPast):
		return "slots cannot start in the past"
	case errors.Is(err, grid.ErrOutOfRange):
		return "that time is outside the displayed hours"
	default:
		return err.Error()
	}
}

func (m Model) openPrompt(kind promptKind) Model {
	m.mode = ModePrompt
	m.promptKind = kind
	m.prompt.Reset()
	switch kind {
	case promptName:
		m.prompt.Placeholder = "Your name"
	case promptTitle:
		m.prompt.Placeholder = "Schedule title"
	}
	m.prompt.Focus()
	return m
}

func (m Model) askName(next action) Model {
	m.pending = next
	return m.openPrompt(promptName)
}

// run performs a, asking for a name first when it needs one.
func (m Model) run(a action) (Model, tea.Cmd) {
	switch a {
	case actionTitle:
		return m.openPrompt(promptTitle), textinput.Blink

	case actionShare:
		link, err := m.sess.Share(m.ctx)
		if errors.Is(err, session.ErrNameRequired) {
			return m.askName(a), textinput.Blink
		}
		if err != nil {
			return m.setError(err)
		}
		m.lastLink = link
		return m, refreshAfter(session.StatusRevertAfter)

	case actionAnswer:
		answer, home, err := m.sess.Answer(m.ctx)
		if errors.Is(err, session.ErrNameRequired) {
			return m.askName(a), textinput.Blink
		}
		if err != nil {
			return m.setError(err)
		}
		m.lastLink = answer
		m.log.Debug("answer built", zap.String("home", home))
		return m, refreshAfter(session.StatusRevertAfter)

	case actionVoteOK, actionVoteNG:
		s := m.slotAtCursor()
		if s == nil {
			return m.setStatus("no slot under the cursor")
		}
		err := m.sess.Vote(m.ctx, s.ID, a == actionVoteOK)
		if errors.Is(err, session.ErrNameRequired) {
			return m.askName(a), textinput.Blink
		}
		if err != nil {
			return m.setError(err)
		}
		vote := "NG"
		if a == actionVoteOK {
			vote = "OK"
		}
		return m.setStatus(fmt.Sprintf("%s: %s", s.Title, vote))
	}
	return m, nil
}

// openForm shows the slot form for d.
func (m Model) openForm(d editor.Draft) (Model, tea.Cmd) {
	m.mode = ModeForm
	m.draft = d
	m.formTitle.SetValue(d.Title)
	m.formTitle.CursorEnd()
	m.formNotes.SetValue(d.Notes)
	m.formColor = 0
	for i, c := range slot.Palette {
		if c == d.Color {
			m.formColor = i
		}
	}
	m.formFocus = fieldTitle
	m.formNotes.Blur()
	return m, m.formTitle.Focus()
}

func (m Model) submitForm() (Model, tea.Cmd) {
	d := m.draft
	d.Title = m.formTitle.Value()
	d.Notes = m.formNotes.Value()
	d.Color = slot.Palette[m.formColor]

	s, err := m.sess.Editor().CommitSlot(d)
	if err != nil {
		return m.setError(err)
	}
	m.mode = ModeNormal
	m.formTitle.Blur()
	m.formNotes.Blur()
	if err := m.sess.Save(m.ctx); err != nil {
		return m.setError(err)
	}
	m.log.Debug("slot saved", zap.String("slot", s.ID), zap.Bool("new", d.IsNew()))
	return m.setStatus("saved " + s.Title)
}

// goToToday shows the current week with the cursor on the current half hour.
func (m Model) goToToday() Model {
	m.sess.Editor().GoToWeek(m.now())
	m.cursor = m.initialCursor()
	m.ensureCursorVisible()
	return m
}

// weekLabel formats the displayed week, e.g. "Jun 1 - Jun 7, 2030".
func (m Model) weekLabel() string {
	start := m.sess.Editor().WeekStart()
	end := start.AddDate(0, 0, grid.DaysPerWeek-1)
	return fmt.Sprintf("%s - %s, %d", start.Format("Jan 2"), end.Format("Jan 2"), end.Year())
}

func (m Model) isToday(day int) bool {
	d := m.sess.Editor().WeekStart().AddDate(0, 0, day)
	return dateutil.SameDay(d, m.now())
}
