package slot

import (
	"fmt"
	"strings"
	"time"
)

// isoLayout matches the browser's Date.toISOString output.
const isoLayout = "2006-01-02T15:04:05.000Z"

// Stored is the JSON form of a slot used in share links and local history.
// ApprovedBy is written for links opened by older clients; Approvals is authoritative.
type Stored struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Start      string          `json:"start"`
	End        string          `json:"end"`
	Color      string          `json:"color"`
	Notes      string          `json:"notes,omitempty"`
	CreatedBy  string          `json:"createdBy,omitempty"`
	Approvals  map[string]bool `json:"approvals,omitempty"`
	ApprovedBy []string        `json:"approvedBy,omitempty"`
}

// FormatISO formats t the way the browser serializes dates.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseISO parses an ISO-8601 timestamp into local time.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t.Local(), nil
}

// ToStored converts a slot to its wire form.
func ToStored(s *Slot) Stored {
	st := Stored{
		ID:         s.ID,
		Title:      s.Title,
		Start:      FormatISO(s.Start),
		End:        FormatISO(s.End),
		Color:      s.Color,
		Notes:      s.Notes,
		CreatedBy:  s.CreatedBy,
		ApprovedBy: s.ApprovedBy(),
	}
	if len(s.Approvals) > 0 {
		st.Approvals = make(map[string]bool, len(s.Approvals))
		for k, v := range s.Approvals {
			st.Approvals[k] = v
		}
	}
	if len(st.ApprovedBy) == 0 {
		st.ApprovedBy = nil
	}
	return st
}

// ToStoredAll converts a slot list to its wire form.
func ToStoredAll(slots []*Slot) []Stored {
	out := make([]Stored, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, ToStored(s))
		}
	}
	return out
}

// FromStored converts a wire slot back to a Slot.
// Names listed in ApprovedBy without an explicit vote are folded in as OK.
func FromStored(st Stored) (*Slot, error) {
	start, err := ParseISO(st.Start)
	if err != nil {
		return nil, fmt.Errorf("slot %s start: %w", st.ID, err)
	}
	end, err := ParseISO(st.End)
	if err != nil {
		return nil, fmt.Errorf("slot %s end: %w", st.ID, err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("slot %s: %w", st.ID, ErrEndBeforeStart)
	}

	s := &Slot{
		ID:        st.ID,
		Title:     st.Title,
		Start:     start,
		End:       end,
		Color:     st.Color,
		Notes:     st.Notes,
		CreatedBy: st.CreatedBy,
	}
	for name, v := range st.Approvals {
		s.SetVote(name, v)
	}
	for _, name := range st.ApprovedBy {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := s.Approvals[name]; !ok {
			s.SetVote(name, true)
		}
	}
	return s, nil
}

// FromStoredAll converts a wire slot list, failing on the first bad entry.
func FromStoredAll(stored []Stored) ([]*Slot, error) {
	out := make([]*Slot, 0, len(stored))
	for _, st := range stored {
		s, err := FromStored(st)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
