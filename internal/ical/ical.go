// Package ical converts slots to and from iCalendar documents.
package ical

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/javiermolinar/chousei/internal/slot"
)

const productID = "-//chousei//schedule export//EN"

// colorProperty carries the slot color through a round trip.
const colorProperty = ics.ComponentProperty("X-CHOUSEI-COLOR")

// ErrNoEvents is returned when an imported calendar has no usable events.
var ErrNoEvents = errors.New("calendar has no events")

// Export writes slots as a VCALENDAR with one VEVENT per slot.
func Export(w io.Writer, title string, slots []*slot.Slot, now time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if title != "" {
		cal.SetXWRCalName(title)
	}

	for _, s := range slots {
		ev := cal.AddEvent(s.ID)
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(s.Start.UTC())
		ev.SetEndAt(s.End.UTC())
		ev.SetSummary(s.Title)
		if desc := description(s); desc != "" {
			ev.SetDescription(desc)
		}
		ev.SetProperty(colorProperty, s.Color)
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

func description(s *slot.Slot) string {
	var parts []string
	if s.Notes != "" {
		parts = append(parts, s.Notes)
	}
	if s.CreatedBy != "" {
		parts = append(parts, "Proposed by: "+s.CreatedBy)
	}
	if names := s.ApprovedBy(); len(names) > 0 {
		parts = append(parts, "OK: "+strings.Join(names, ", "))
	}
	return strings.Join(parts, "\n")
}

// Import reads the VEVENTs of a calendar as new slots created by actor.
// Events without a start, or ending before they start, are skipped.
// Colors outside the palette fall back to the default color.
func Import(r io.Reader, actor string) ([]*slot.Slot, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	var out []*slot.Slot
	for _, ev := range cal.Events() {
		start, err := ev.GetStartAt()
		if err != nil {
			continue
		}
		end, err := ev.GetEndAt()
		if err != nil {
			end = start.Add(time.Hour)
		}
		if !end.After(start) {
			continue
		}

		s := &slot.Slot{
			ID:        uuid.NewString(),
			Title:     "Untitled",
			Start:     start.Local(),
			End:       end.Local(),
			Color:     slot.DefaultColor,
			CreatedBy: actor,
		}
		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil && strings.TrimSpace(p.Value) != "" {
			s.Title = strings.TrimSpace(p.Value)
		}
		if p := ev.GetProperty(colorProperty); p != nil && slot.IsPaletteColor(p.Value) {
			s.Color = p.Value
		}
		out = append(out, s)
	}

	if len(out) == 0 {
		return nil, ErrNoEvents
	}
	return out, nil
}
