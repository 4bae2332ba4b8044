// Package slot defines the core domain types for chousei.
package slot

import (
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validation errors.
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidColor    = errors.New("color must be one of the palette colors")
	ErrEndBeforeStart  = errors.New("end time must be after start time")
	ErrMissingID       = errors.New("slot id cannot be empty")
	ErrInvalidInterval = errors.New("slot interval is invalid")
)

// Domain errors.
var (
	ErrSlotInPast   = errors.New("cannot create a slot in the past")
	ErrSlotNotFound = errors.New("slot not found")
	ErrNotEditor    = errors.New("only the schedule creator can change slots")
)

// DefaultColor is the color given to new slots.
const DefaultColor = "#4285f4"

// Palette is the fixed set of slot colors.
var Palette = []string{
	"#4285f4",
	"#ea4335",
	"#fbbc04",
	"#34a853",
	"#46bdc6",
}

// IsPaletteColor returns true if c is one of the palette colors.
func IsPaletteColor(c string) bool {
	return slices.Contains(Palette, c)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("palette", func(fl validator.FieldLevel) bool {
		return IsPaletteColor(fl.Field().String())
	})
	return v
}

// Slot is one candidate meeting time.
type Slot struct {
	ID        string    `validate:"required"`
	Title     string    `validate:"required"`
	Start     time.Time `validate:"required"`
	End       time.Time `validate:"required,gtfield=Start"`
	Color     string    `validate:"palette"`
	Notes     string
	CreatedBy string

	// Approvals maps respondent name to vote (true = OK, false = NG).
	// A missing key means the respondent has not voted.
	Approvals map[string]bool
}

// Validate checks the slot fields and maps validator failures to domain errors.
func (s *Slot) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch verrs[0].Field() {
	case "ID":
		return ErrMissingID
	case "Title":
		return ErrEmptyTitle
	case "Color":
		return ErrInvalidColor
	case "End":
		return ErrEndBeforeStart
	default:
		return ErrInvalidInterval
	}
}

// Duration returns the slot length.
func (s *Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// OverlapsWith returns true if both slots share any instant.
// Two intervals overlap if: start1 < end2 AND end1 > start2
func (s *Slot) OverlapsWith(other *Slot) bool {
	if other == nil {
		return false
	}
	return s.Start.Before(other.End) && s.End.After(other.Start)
}

// IsPast returns true if the slot starts before now.
func (s *Slot) IsPast(now time.Time) bool {
	return s.Start.Before(now)
}

// Vote returns the vote recorded for name and whether one exists.
func (s *Slot) Vote(name string) (vote, ok bool) {
	vote, ok = s.Approvals[name]
	return vote, ok
}

// SetVote records a vote for name.
func (s *Slot) SetVote(name string, vote bool) {
	if s.Approvals == nil {
		s.Approvals = make(map[string]bool)
	}
	s.Approvals[name] = vote
}

// ApprovalCount returns the number of OK votes.
func (s *Slot) ApprovalCount() int {
	n := 0
	for _, v := range s.Approvals {
		if v {
			n++
		}
	}
	return n
}

// ApprovedBy returns the names with an OK vote, sorted.
// It is derived from Approvals and never stored separately.
func (s *Slot) ApprovedBy() []string {
	names := make([]string, 0, len(s.Approvals))
	for name, v := range s.Approvals {
		if v {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the slot.
func (s *Slot) Clone() *Slot {
	c := *s
	if s.Approvals != nil {
		c.Approvals = make(map[string]bool, len(s.Approvals))
		for k, v := range s.Approvals {
			c.Approvals[k] = v
		}
	}
	return &c
}

// CloneAll deep-copies a slot list.
func CloneAll(slots []*Slot) []*Slot {
	out := make([]*Slot, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, s.Clone())
		}
	}
	return out
}

// Find returns the slot with the given id, or nil.
func Find(slots []*Slot, id string) *Slot {
	for _, s := range slots {
		if s != nil && s.ID == id {
			return s
		}
	}
	return nil
}

// SortByStart sorts slots by start time, keeping equal starts in input order.
func SortByStart(slots []*Slot) {
	slices.SortStableFunc(slots, func(a, b *Slot) int {
		return a.Start.Compare(b.Start)
	})
}

// TruncateToMinute drops seconds and below.
func TruncateToMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
