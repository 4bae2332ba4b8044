// Package editor manages the slot set of one schedule: selecting a time range
// on the grid, drafting, committing, moving and deleting slots.
package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/chousei/internal/dateutil"
	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/slot"
)

// Clock returns the current time.
type Clock func() time.Time

// Draft is an uncommitted slot shown in the edit form.
// ID is empty for a new slot.
type Draft struct {
	ID    string
	Title string
	Start time.Time
	End   time.Time
	Color string
	Notes string
}

// IsNew returns true if committing the draft creates a slot.
func (d Draft) IsNew() bool {
	return d.ID == ""
}

// CanSubmit returns true if the draft has a title.
func (d Draft) CanSubmit() bool {
	return strings.TrimSpace(d.Title) != ""
}

// Manager owns the slots of one schedule on behalf of one actor.
type Manager struct {
	slots     []*slot.Slot
	actor     string
	role      slot.Role
	cfg       grid.Config
	weekStart time.Time
	now       Clock

	selecting bool
	selStart  grid.Position
	selEnd    grid.Position
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.now = c }
}

// WithGrid overrides the default grid geometry.
func WithGrid(cfg grid.Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// New creates a Manager showing the week that contains the current time.
func New(slots []*slot.Slot, actor string, role slot.Role, opts ...Option) *Manager {
	m := &Manager{
		slots: slots,
		actor: actor,
		role:  role,
		cfg:   grid.DefaultConfig(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.weekStart = dateutil.WeekStart(m.now())
	return m
}

// Slots returns the current slot set. Callers must not mutate it.
func (m *Manager) Slots() []*slot.Slot { return m.slots }

// Role returns the role resolved at load time.
func (m *Manager) Role() slot.Role { return m.role }

// Actor returns the acting user's name.
func (m *Manager) Actor() string { return m.actor }

// SetActor changes the acting user's name, for instance after a name prompt.
func (m *Manager) SetActor(name string) { m.actor = strings.TrimSpace(name) }

// Grid returns the grid geometry.
func (m *Manager) Grid() grid.Config { return m.cfg }

// WeekStart returns the Sunday of the displayed week.
func (m *Manager) WeekStart() time.Time { return m.weekStart }

// ShiftWeek moves the displayed week by n weeks.
func (m *Manager) ShiftWeek(n int) {
	m.weekStart = m.weekStart.AddDate(0, 0, 7*n)
}

// GoToWeek displays the week containing t.
func (m *Manager) GoToWeek(t time.Time) {
	m.weekStart = dateutil.WeekStart(t)
}

// Selection returns the active selection endpoints.
func (m *Manager) Selection() (start, end grid.Position, ok bool) {
	return m.selStart, m.selEnd, m.selecting
}

// BeginSelection starts a range selection at pos.
// Returns false when the actor cannot edit, pos is not selectable, or pos
// lies in the past.
func (m *Manager) BeginSelection(pos grid.Position) bool {
	if !m.role.CanEdit() || !m.cfg.Valid(pos) {
		return false
	}
	if pos.Time(m.weekStart).Before(m.now()) {
		return false
	}
	m.selecting = true
	m.selStart = pos
	m.selEnd = pos
	return true
}

// UpdateSelection extends the active selection to pos.
func (m *Manager) UpdateSelection(pos grid.Position) {
	if !m.selecting || !m.cfg.Valid(pos) {
		return
	}
	m.selEnd = pos
}

// CancelSelection drops the active selection.
func (m *Manager) CancelSelection() {
	m.selecting = false
	m.selStart = grid.Position{}
	m.selEnd = grid.Position{}
}

// FinishSelection ends the active selection and returns a draft for it.
// A click without movement yields one hour starting at the clicked hour.
func (m *Manager) FinishSelection() (Draft, bool) {
	if !m.selecting {
		return Draft{}, false
	}
	a := m.selStart.Time(m.weekStart)
	b := m.selEnd.Time(m.weekStart)
	m.CancelSelection()

	start, end := a, b
	if b.Before(a) {
		start, end = b, a
	}
	if start.Equal(end) {
		start = dateutil.At(start, start.Hour()*60)
		end = start.Add(time.Hour)
	}

	return Draft{
		Start: start,
		End:   end,
		Color: slot.DefaultColor,
	}, true
}

// EditDraft returns a draft pre-filled from an existing slot.
func (m *Manager) EditDraft(id string) (Draft, error) {
	if !m.role.CanEdit() {
		return Draft{}, slot.ErrNotEditor
	}
	s := slot.Find(m.slots, id)
	if s == nil {
		return Draft{}, fmt.Errorf("%w: %s", slot.ErrSlotNotFound, id)
	}
	return Draft{
		ID:    s.ID,
		Title: s.Title,
		Start: s.Start,
		End:   s.End,
		Color: s.Color,
		Notes: s.Notes,
	}, nil
}

// CommitSlot validates the draft and creates or updates a slot.
// The slot set is unchanged when an error is returned.
func (m *Manager) CommitSlot(d Draft) (*slot.Slot, error) {
	if !m.role.CanEdit() {
		return nil, slot.ErrNotEditor
	}
	if !d.CanSubmit() {
		return nil, slot.ErrEmptyTitle
	}
	if d.Start.Before(m.now()) {
		return nil, slot.ErrSlotInPast
	}
	if d.Color == "" {
		d.Color = slot.DefaultColor
	}

	if d.IsNew() {
		s := &slot.Slot{
			ID:        uuid.NewString(),
			Title:     strings.TrimSpace(d.Title),
			Start:     slot.TruncateToMinute(d.Start),
			End:       slot.TruncateToMinute(d.End),
			Color:     d.Color,
			Notes:     d.Notes,
			CreatedBy: m.actor,
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		m.slots = append(m.slots, s)
		return s, nil
	}

	existing := slot.Find(m.slots, d.ID)
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", slot.ErrSlotNotFound, d.ID)
	}
	updated := existing.Clone()
	updated.Title = strings.TrimSpace(d.Title)
	updated.Start = slot.TruncateToMinute(d.Start)
	updated.End = slot.TruncateToMinute(d.End)
	updated.Color = d.Color
	updated.Notes = d.Notes
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	*existing = *updated
	return existing, nil
}

// MoveSlot moves a slot to start at pos, keeping its duration.
// Non-editors and positions outside the grid are ignored.
func (m *Manager) MoveSlot(id string, pos grid.Position) bool {
	if !m.role.CanEdit() || !m.cfg.Valid(pos) {
		return false
	}
	s := slot.Find(m.slots, id)
	if s == nil {
		return false
	}
	d := s.Duration()
	s.Start = pos.Time(m.weekStart)
	s.End = s.Start.Add(d)
	return true
}

// DeleteSlot removes a slot unconditionally.
func (m *Manager) DeleteSlot(id string) error {
	if !m.role.CanEdit() {
		return slot.ErrNotEditor
	}
	for i, s := range m.slots {
		if s.ID == id {
			m.slots = append(m.slots[:i], m.slots[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", slot.ErrSlotNotFound, id)
}

// WeekSlots returns the slots starting inside the displayed week, sorted by start.
func (m *Manager) WeekSlots() []*slot.Slot {
	var out []*slot.Slot
	for _, s := range m.slots {
		day := dateutil.DaysBetween(m.weekStart, s.Start)
		if day >= 0 && day < grid.DaysPerWeek {
			out = append(out, s)
		}
	}
	slot.SortByStart(out)
	return out
}

// SlotAt returns the first slot on the displayed week covering pos, or nil.
func (m *Manager) SlotAt(pos grid.Position) *slot.Slot {
	t := pos.Time(m.weekStart)
	for _, s := range m.slots {
		if !t.Before(s.Start) && t.Before(s.End) {
			return s
		}
	}
	return nil
}
