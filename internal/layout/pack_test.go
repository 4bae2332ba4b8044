package layout

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/slot"
)

var monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

func makeSlot(id string, day time.Time, start, end string) *slot.Slot {
	parse := func(s string) time.Time {
		var h, m int
		_, _ = fmt.Sscanf(s, "%d:%d", &h, &m)
		return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.Local)
	}
	return &slot.Slot{ID: id, Title: id, Start: parse(start), End: parse(end), Color: slot.DefaultColor}
}

func TestPackDay(t *testing.T) {
	tests := []struct {
		name  string
		slots []*slot.Slot
		want  map[string]Placement
	}{
		{
			name:  "empty",
			slots: nil,
			want:  map[string]Placement{},
		},
		{
			name:  "single slot takes full width",
			slots: []*slot.Slot{makeSlot("a", monday, "09:00", "10:00")},
			want:  map[string]Placement{"a": {Column: 0, Count: 1}},
		},
		{
			name: "two overlapping slots split the column",
			slots: []*slot.Slot{
				makeSlot("a", monday, "09:00", "10:00"),
				makeSlot("b", monday, "09:30", "10:30"),
			},
			want: map[string]Placement{"a": {0, 2}, "b": {1, 2}},
		},
		{
			name: "adjacent slots do not overlap",
			slots: []*slot.Slot{
				makeSlot("a", monday, "09:00", "10:00"),
				makeSlot("b", monday, "10:00", "11:00"),
			},
			want: map[string]Placement{"a": {0, 1}, "b": {0, 1}},
		},
		{
			name: "chain shares one group even without mutual overlap",
			slots: []*slot.Slot{
				makeSlot("a", monday, "09:00", "10:00"),
				makeSlot("b", monday, "09:30", "11:00"),
				makeSlot("c", monday, "10:30", "12:00"),
			},
			want: map[string]Placement{"a": {0, 3}, "b": {1, 3}, "c": {2, 3}},
		},
		{
			name: "independent clusters",
			slots: []*slot.Slot{
				makeSlot("a", monday, "09:00", "10:00"),
				makeSlot("b", monday, "14:00", "15:00"),
				makeSlot("c", monday, "09:15", "09:45"),
			},
			want: map[string]Placement{"a": {0, 2}, "b": {0, 1}, "c": {1, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PackDay(tt.slots)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d placements, want %d: %v", len(got), len(tt.want), got)
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("%s: got %+v, want %+v", id, got[id], want)
				}
			}
		})
	}
}

func TestPackDay_InputOrderDecidesGrouping(t *testing.T) {
	// a and c do not overlap; b bridges them. Whether b is seen first
	// changes the result, and the packer keeps that behaviour.
	a := makeSlot("a", monday, "09:00", "10:00")
	b := makeSlot("b", monday, "09:30", "10:30")
	c := makeSlot("c", monday, "10:15", "11:00")

	bridgeLast := PackDay([]*slot.Slot{a, c, b})
	if bridgeLast["a"].Count != 2 || bridgeLast["b"].Count != 2 || bridgeLast["c"].Count != 1 {
		t.Errorf("bridge last: got %v", bridgeLast)
	}

	bridgeFirst := PackDay([]*slot.Slot{b, a, c})
	for _, id := range []string{"a", "b", "c"} {
		if bridgeFirst[id].Count != 3 {
			t.Errorf("bridge first: %s count = %d, want 3", id, bridgeFirst[id].Count)
		}
	}
	if bridgeFirst["b"].Column != 0 || bridgeFirst["a"].Column != 1 || bridgeFirst["c"].Column != 2 {
		t.Errorf("bridge first columns: got %v", bridgeFirst)
	}
}

func TestPackDay_Soundness(t *testing.T) {
	slots := []*slot.Slot{
		makeSlot("a", monday, "08:00", "09:30"),
		makeSlot("b", monday, "09:00", "10:00"),
		makeSlot("c", monday, "12:00", "13:00"),
		makeSlot("d", monday, "12:30", "14:00"),
		makeSlot("e", monday, "08:30", "08:45"),
		makeSlot("f", monday, "16:00", "17:00"),
	}
	got := PackDay(slots)

	for i, x := range slots {
		for j, y := range slots {
			if i >= j || !x.OverlapsWith(y) {
				continue
			}
			if got[x.ID].Count != got[y.ID].Count {
				t.Errorf("%s and %s overlap but have counts %d and %d", x.ID, y.ID, got[x.ID].Count, got[y.ID].Count)
			}
			if got[x.ID].Column == got[y.ID].Column {
				t.Errorf("%s and %s overlap but share column %d", x.ID, y.ID, got[x.ID].Column)
			}
		}
	}
}

func TestPlacement_Fractions(t *testing.T) {
	p := Placement{Column: 1, Count: 2}
	if p.Left() != 0.5 || p.Width() != 0.5 {
		t.Errorf("Left/Width = %v/%v, want 0.5/0.5", p.Left(), p.Width())
	}
	zero := Placement{}
	if zero.Left() != 0 || zero.Width() != 1 {
		t.Errorf("zero placement Left/Width = %v/%v, want 0/1", zero.Left(), zero.Width())
	}
}

func TestPack_GroupsByDay(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	slots := []*slot.Slot{
		makeSlot("mon", monday, "09:00", "10:00"),
		makeSlot("tue", tuesday, "09:00", "10:00"),
		makeSlot("mon2", monday, "09:30", "10:30"),
	}

	got := Pack(slots)
	if got["tue"] != (Placement{Column: 0, Count: 1}) {
		t.Errorf("tue: got %+v, want full width", got["tue"])
	}
	if got["mon"] != (Placement{0, 2}) || got["mon2"] != (Placement{1, 2}) {
		t.Errorf("monday: got %+v and %+v", got["mon"], got["mon2"])
	}
}

func TestBlocks(t *testing.T) {
	cfg := grid.DefaultConfig()
	weekStart := monday.AddDate(0, 0, -1) // Sunday

	slots := []*slot.Slot{
		makeSlot("a", monday, "09:00", "10:00"),
		makeSlot("b", monday, "09:30", "10:30"),
		makeSlot("next-week", monday.AddDate(0, 0, 7), "09:00", "10:00"),
	}

	blocks := Blocks(slots, weekStart, cfg)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	a, b := blocks[0], blocks[1]
	if a.Day != 1 || b.Day != 1 {
		t.Errorf("days = %d, %d, want 1, 1", a.Day, b.Day)
	}
	if a.Rect.Top != 9*48 || a.Rect.Height != 48 {
		t.Errorf("a rect = %+v", a.Rect)
	}
	if b.Rect.Top != 9.5*48 {
		t.Errorf("b top = %v, want %v", b.Rect.Top, 9.5*48)
	}
	const eps = 1e-9
	if math.Abs(a.Rect.Left-25) > eps || math.Abs(b.Rect.Left-31.25) > eps {
		t.Errorf("lefts = %v, %v, want 25, 31.25", a.Rect.Left, b.Rect.Left)
	}
	if math.Abs(a.Rect.Width-6.25) > eps || math.Abs(b.Rect.Width-6.25) > eps {
		t.Errorf("widths = %v, %v, want 6.25", a.Rect.Width, b.Rect.Width)
	}
	if a.Placement.Left() != 0 || b.Placement.Left() != 0.5 {
		t.Errorf("placement lefts = %v, %v, want 0, 0.5", a.Placement.Left(), b.Placement.Left())
	}
}
