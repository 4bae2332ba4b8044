package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/javiermolinar/chousei/internal/approval"
	"github.com/javiermolinar/chousei/internal/dateutil"
	"github.com/javiermolinar/chousei/internal/slot"
)

// shortIDLen is how much of a slot id the listings show.
const shortIDLen = 8

// PrintOpts configures slot printing behavior.
type PrintOpts struct {
	Actor        string   // whose vote column to show
	Known        []string // respondents for tallies
	Verbose      bool     // Show notes and voter names
	MaxDescWidth int      // Maximum title width (0 = auto)
}

// CalcMaxDescWidth calculates the maximum title width based on options.
func (o PrintOpts) CalcMaxDescWidth(defaultWidth int) int {
	if o.MaxDescWidth > 0 {
		return o.MaxDescWidth
	}
	if !o.Verbose {
		return defaultWidth
	}
	// "    ✓  HH:MM-HH:MM  [xxxxxxxx]  " plus "  1h30m  OK 3/4 ★"
	overhead := 32 + 20
	if available := termWidth() - overhead; available > defaultWidth {
		return available
	}
	return defaultWidth
}

// PrintSlots prints slots grouped by day.
func PrintSlots(w io.Writer, slots []*slot.Slot, opts PrintOpts) {
	sorted := slot.CloneAll(slots)
	slot.SortByStart(sorted)
	maxDescWidth := opts.CalcMaxDescWidth(30)

	var current time.Time
	for i, s := range sorted {
		if i == 0 || !dateutil.SameDay(current, s.Start) {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "  %s\n", formatHeader(s.Start.Format("Mon Jan 2")))
			current = s.Start
		}
		PrintSlotRow(w, s, opts, maxDescWidth)
	}
}

// PrintSlotRow prints a single slot row with consistent formatting.
func PrintSlotRow(w io.Writer, s *slot.Slot, opts PrintOpts, maxDescWidth int) {
	title := s.Title
	if len(title) > maxDescWidth {
		title = title[:maxDescWidth-3] + "..."
	}

	tally := approval.Count(s, opts.Known)
	votes := fmt.Sprintf("OK %d/%d", len(tally.OK), len(tally.OK)+len(tally.NG)+len(tally.Pending))
	if approval.ComputeQuorum(s, opts.Known, opts.Actor) {
		votes = formatOK(votes + " ★")
	}

	fmt.Fprintf(w, "    %s  %s-%s  %s  %-*s  %s  %s\n",
		voteSymbol(s, opts.Actor),
		s.Start.Format("15:04"), s.End.Format("15:04"),
		formatMuted("["+shortID(s.ID)+"]"),
		maxDescWidth, title,
		formatMuted(FormatDuration(int(s.Duration().Minutes()))),
		votes,
	)

	if !opts.Verbose {
		return
	}
	if s.Notes != "" {
		fmt.Fprintf(w, "       %s\n", formatMuted(s.Notes))
	}
	if s.CreatedBy != "" {
		fmt.Fprintf(w, "       %s\n", formatMuted("proposed by "+s.CreatedBy))
	}
	if len(tally.OK) > 0 {
		fmt.Fprintf(w, "       %s %s\n", formatOK("OK"), strings.Join(tally.OK, ", "))
	}
	if len(tally.NG) > 0 {
		fmt.Fprintf(w, "       %s %s\n", formatNG("NG"), strings.Join(tally.NG, ", "))
	}
	if len(tally.Pending) > 0 {
		fmt.Fprintf(w, "       %s\n", formatMuted("waiting on "+strings.Join(tally.Pending, ", ")))
	}
}

// voteSymbol returns the actor's vote indicator for a slot.
func voteSymbol(s *slot.Slot, actor string) string {
	v, ok := s.Vote(actor)
	switch {
	case !ok:
		return "○"
	case v:
		return formatOK("✓")
	default:
		return formatNG("✗")
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// findSlot returns the slot whose id equals ref or uniquely starts with it.
func findSlot(slots []*slot.Slot, ref string) (*slot.Slot, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, slot.ErrSlotNotFound
	}
	if s := slot.Find(slots, ref); s != nil {
		return s, nil
	}
	var match *slot.Slot
	for _, s := range slots {
		if strings.HasPrefix(s.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("slot id %q is ambiguous", ref)
			}
			match = s
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", slot.ErrSlotNotFound, ref)
	}
	return match, nil
}

// parseInterval reads --date, --start and --end flags into an interval.
// date accepts what dateutil.ParseRelativeDate does; end defaults to one
// hour after start.
func parseInterval(date, start, end string, now time.Time) (time.Time, time.Time, error) {
	day, err := dateutil.ParseRelativeDate(date, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startMin, err := dateutil.ParseClock(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := dateutil.At(day, startMin)
	if end == "" {
		return from, from.Add(time.Hour), nil
	}
	endMin, err := dateutil.ParseClock(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, dateutil.At(day, endMin), nil
}

// parseColor accepts a palette hex value or a palette name.
func parseColor(c string) (string, error) {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return slot.DefaultColor, nil
	}
	if hex, ok := colorNames[c]; ok {
		return hex, nil
	}
	if slot.IsPaletteColor(c) {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", slot.ErrInvalidColor, c)
}

var colorNames = map[string]string{
	"blue":   "#4285f4",
	"red":    "#ea4335",
	"yellow": "#fbbc04",
	"green":  "#34a853",
	"teal":   "#46bdc6",
}
