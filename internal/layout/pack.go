// Package layout packs overlapping slots into side-by-side display columns.
package layout

import (
	"time"

	"github.com/javiermolinar/chousei/internal/dateutil"
	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/slot"
)

// Placement is a slot's column inside its overlap group.
type Placement struct {
	Column int // position in the group
	Count  int // group size
}

// Left returns the horizontal offset as a fraction of the day column.
func (p Placement) Left() float64 {
	if p.Count == 0 {
		return 0
	}
	return float64(p.Column) / float64(p.Count)
}

// Width returns the width as a fraction of the day column.
func (p Placement) Width() float64 {
	if p.Count == 0 {
		return 1
	}
	return 1 / float64(p.Count)
}

// PackDay groups slots in input order. A slot joins the first group holding
// any slot it overlaps, otherwise it opens a new group. Every member of a
// group of n slots gets 1/n of the column, regardless of whether all members
// overlap each other. Columns are not reused.
func PackDay(slots []*slot.Slot) map[string]Placement {
	var groups [][]*slot.Slot

	for _, s := range slots {
		if s == nil {
			continue
		}
		added := false
		for i, group := range groups {
			if overlapsAny(s, group) {
				groups[i] = append(group, s)
				added = true
				break
			}
		}
		if !added {
			groups = append(groups, []*slot.Slot{s})
		}
	}

	positions := make(map[string]Placement, len(slots))
	for _, group := range groups {
		for i, s := range group {
			positions[s.ID] = Placement{Column: i, Count: len(group)}
		}
	}
	return positions
}

func overlapsAny(s *slot.Slot, group []*slot.Slot) bool {
	for _, other := range group {
		if s.OverlapsWith(other) {
			return true
		}
	}
	return false
}

// Pack accepts slots from any number of days. It buckets them by the local
// date of their start, keeping input order inside each bucket, and packs
// each bucket independently.
func Pack(slots []*slot.Slot) map[string]Placement {
	byDay := make(map[time.Time][]*slot.Slot)
	var order []time.Time
	for _, s := range slots {
		if s == nil {
			continue
		}
		day := dateutil.TruncateToDay(s.Start)
		if _, ok := byDay[day]; !ok {
			order = append(order, day)
		}
		byDay[day] = append(byDay[day], s)
	}

	positions := make(map[string]Placement, len(slots))
	for _, day := range order {
		for id, p := range PackDay(byDay[day]) {
			positions[id] = p
		}
	}
	return positions
}

// Block is a render-ready slot rectangle.
type Block struct {
	Slot      *slot.Slot
	Day       int
	Placement Placement
	Rect      grid.Rect // Left and Width already narrowed to the placement
}

// Blocks returns rectangles for the slots that start inside the week
// beginning at weekStart, in input order.
func Blocks(slots []*slot.Slot, weekStart time.Time, cfg grid.Config) []Block {
	positions := Pack(slots)

	var blocks []Block
	for _, s := range slots {
		if s == nil {
			continue
		}
		day := dateutil.DaysBetween(weekStart, s.Start)
		if day < 0 || day >= grid.DaysPerWeek {
			continue
		}
		p := positions[s.ID]
		start := dateutil.MinutesOfDay(s.Start)
		rect := cfg.RectForInterval(day, start, int(s.Duration().Minutes()))
		rect.Left += p.Left() * grid.ColumnWidth
		rect.Width = p.Width() * grid.ColumnWidth
		blocks = append(blocks, Block{Slot: s, Day: day, Placement: p, Rect: rect})
	}
	return blocks
}
