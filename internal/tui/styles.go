package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/chousei/internal/tui/theme"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle          lipgloss.Style
	MetaStyle           lipgloss.Style
	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style

	TimeColumnStyle lipgloss.Style
	NowLabelStyle   lipgloss.Style

	EmptyCellStyle   lipgloss.Style
	PastCellStyle    lipgloss.Style
	CursorStyle      lipgloss.Style
	SelectionStyle   lipgloss.Style
	MovePreviewStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	LinkStyle   lipgloss.Style
	HelpStyle   lipgloss.Style
	OKStyle     lipgloss.Style
	NGStyle     lipgloss.Style

	DialogStyle      lipgloss.Style
	DialogTitleStyle lipgloss.Style
	LabelStyle       lipgloss.Style
	LabelFocusStyle  lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	s := &Styles{palette: p}

	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent).
		Background(p.Bg)
	s.MetaStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted).
		Background(p.Bg)

	s.DayHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Fg).
		Background(p.Bg)
	s.DayHeaderTodayStyle = s.DayHeaderStyle.
		Foreground(p.Current)

	s.TimeColumnStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted).
		Background(p.Bg)
	s.NowLabelStyle = s.TimeColumnStyle.
		Bold(true).
		Foreground(p.Current)

	s.EmptyCellStyle = lipgloss.NewStyle().
		Foreground(p.Fg).
		Background(p.BgHighlight)
	s.PastCellStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted).
		Background(p.Bg)
	s.CursorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.TextOnAccent).
		Background(p.Accent)
	s.SelectionStyle = lipgloss.NewStyle().
		Foreground(p.Fg).
		Background(p.BgSelection)
	s.MovePreviewStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.TextOnWarning).
		Background(p.Warning)

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(p.Warning).
		Background(p.Bg)
	s.ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.NG).
		Background(p.Bg)
	s.LinkStyle = lipgloss.NewStyle().
		Underline(true).
		Foreground(p.Accent).
		Background(p.Bg)
	s.HelpStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted).
		Background(p.Bg)
	s.OKStyle = lipgloss.NewStyle().Bold(true).Foreground(p.OK)
	s.NGStyle = lipgloss.NewStyle().Foreground(p.NG)

	s.DialogStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		BorderBackground(p.Bg).
		Foreground(p.Fg).
		Background(p.Bg).
		Padding(0, 1)
	s.DialogTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent).
		Background(p.Bg)
	s.LabelStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted).
		Background(p.Bg).
		Width(7)
	s.LabelFocusStyle = s.LabelStyle.
		Bold(true).
		Foreground(p.Accent)

	return s
}

// SlotStyle returns the block style for a slot color. Adjacent blocks pass
// alt so they stay distinct.
func (s *Styles) SlotStyle(hex string, past, alt bool) lipgloss.Style {
	c := s.palette.Slot(hex, past)
	bg := c.Bg
	if alt {
		bg = c.BgAlt
	}
	return lipgloss.NewStyle().Foreground(c.Fg).Background(bg)
}

// Swatch renders a short color sample.
func (s *Styles) Swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■■")
}

// Background returns the base background color.
func (s *Styles) Background() lipgloss.Color {
	return s.palette.Bg
}
