// Package grid maps between pointer coordinates on the weekly time grid and
// discrete (day, hour, half-hour) positions.
package grid

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/javiermolinar/chousei/internal/dateutil"
)

const (
	// DaysPerWeek is the number of day columns.
	DaysPerWeek = 7
	// Columns is the label column plus one column per day.
	Columns = DaysPerWeek + 1
	// HoursPerDay is the number of hour rows.
	HoursPerDay = 24
	// BucketMinutes is the selection granularity inside an hour.
	BucketMinutes = 30
	// DefaultHourHeight is the pixel height of one hour row.
	DefaultHourHeight = 48
)

var (
	// ErrInvalidTimeRange is returned when a display window is malformed.
	ErrInvalidTimeRange = errors.New("time range must satisfy 0 <= start < end <= 24")
	ErrOutOfRange       = errors.New("position is outside the displayed hours")
)

// TimeRange is the [Start, End) window of hours shown and selectable.
type TimeRange struct {
	Start int `json:"start" toml:"start_hour"`
	End   int `json:"end" toml:"end_hour"`
}

// DefaultTimeRange is the window used when nothing is configured.
var DefaultTimeRange = TimeRange{Start: 8, End: 21}

// Contains returns true if hour is inside the window.
func (r TimeRange) Contains(hour int) bool {
	return hour >= r.Start && hour < r.End
}

// Validate checks the window bounds.
func (r TimeRange) Validate() error {
	if r.Start < 0 || r.End > HoursPerDay || r.Start >= r.End {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidTimeRange, r.Start, r.End)
	}
	return nil
}

// Config holds grid geometry.
type Config struct {
	HourHeight float64   // pixel height of one hour row
	Range      TimeRange // selectable hours
}

// DefaultConfig returns the reference geometry: 48px hours, 08:00-21:00.
func DefaultConfig() Config {
	return Config{HourHeight: DefaultHourHeight, Range: DefaultTimeRange}
}

func (c Config) hourHeight() float64 {
	if c.HourHeight <= 0 {
		return DefaultHourHeight
	}
	return c.HourHeight
}

// Point is a pointer position relative to the grid's top-left corner.
type Point struct {
	X, Y float64
}

// Size is the visible grid size in pixels.
type Size struct {
	Width, Height float64
}

// Position is a discrete grid cell.
type Position struct {
	Day    int // 0=Sunday, 6=Saturday
	Hour   int // 0..23
	Minute int // 0 or 30
}

// Minutes returns minutes since midnight.
func (p Position) Minutes() int {
	return p.Hour*60 + p.Minute
}

// Time returns the wall-clock time of the position in the week starting at weekStart.
func (p Position) Time(weekStart time.Time) time.Time {
	day := dateutil.TruncateToDay(weekStart).AddDate(0, 0, p.Day)
	return dateutil.At(day, p.Minutes())
}

// Valid returns true if p is a selectable cell under c.
func (c Config) Valid(p Position) bool {
	if p.Day < 0 || p.Day >= DaysPerWeek {
		return false
	}
	if p.Hour < 0 || p.Hour >= HoursPerDay {
		return false
	}
	if p.Minute != 0 && p.Minute != BucketMinutes {
		return false
	}
	return c.Range.Contains(p.Hour)
}

// PositionFromPoint converts a pointer position into a grid cell.
// scroll is the vertical scroll offset of the grid content.
// Returns false for the label column, points outside the grid, and hours
// outside the configured range.
func (c Config) PositionFromPoint(p Point, size Size, scroll float64) (Position, bool) {
	if size.Width <= 0 {
		return Position{}, false
	}
	if size.Height > 0 && (p.Y < 0 || p.Y >= size.Height) {
		return Position{}, false
	}

	labelWidth := size.Width / Columns
	x := p.X - labelWidth
	y := p.Y + scroll
	hh := c.hourHeight()

	day := int(math.Floor(x / (size.Width - labelWidth) * DaysPerWeek))
	hour := int(math.Floor(y / hh))
	if x < 0 || day < 0 || day >= DaysPerWeek || hour < 0 || hour >= HoursPerDay {
		return Position{}, false
	}
	minute := int(math.Floor(math.Mod(y, hh)/(hh/2))) * BucketMinutes

	pos := Position{Day: day, Hour: hour, Minute: minute}
	if !c.Range.Contains(hour) {
		return Position{}, false
	}
	return pos, true
}

// PositionOf returns the cell containing t in the week starting at weekStart.
// Minutes are floored to the bucket. Returns false if t is outside the week.
func (c Config) PositionOf(t, weekStart time.Time) (Position, bool) {
	day := dateutil.DaysBetween(weekStart, t)
	if day < 0 || day >= DaysPerWeek {
		return Position{}, false
	}
	return Position{
		Day:    day,
		Hour:   t.Hour(),
		Minute: (t.Minute() / BucketMinutes) * BucketMinutes,
	}, true
}

// Rect is a render rectangle: Top and Height in pixels, Left and Width in
// percent of the full grid width.
type Rect struct {
	Top    float64
	Height float64
	Left   float64
	Width  float64
}

// ColumnWidth is the width of one column in percent.
const ColumnWidth = 100.0 / Columns

// RectForInterval returns the rectangle for an interval on day.
func (c Config) RectForInterval(day, startMinutes, durationMinutes int) Rect {
	hh := c.hourHeight()
	return Rect{
		Top:    float64(startMinutes) / 60 * hh,
		Height: float64(durationMinutes) / 60 * hh,
		Left:   float64(day+1) * ColumnWidth,
		Width:  ColumnWidth,
	}
}

// NowLine returns the day column and pixel offset of the current-time
// indicator, or false when now is outside the displayed week.
func (c Config) NowLine(now, weekStart time.Time) (day int, top float64, ok bool) {
	day = dateutil.DaysBetween(weekStart, now)
	if day < 0 || day >= DaysPerWeek {
		return 0, 0, false
	}
	return day, float64(dateutil.MinutesOfDay(now)) / 60 * c.hourHeight(), true
}
