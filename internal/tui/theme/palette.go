// Package theme provides color themes for the TUI.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	OK          lipgloss.Color
	NG          lipgloss.Color
	Current     lipgloss.Color
	Warning     lipgloss.Color

	TextOnAccent  lipgloss.Color
	TextOnWarning lipgloss.Color
	TextOnCurrent lipgloss.Color

	light  bool
	bg, fg string
}

// SlotColors is how one slot block is drawn.
type SlotColors struct {
	Bg    lipgloss.Color
	BgAlt lipgloss.Color // adjacent blocks on a day alternate
	Fg    lipgloss.Color
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		OK:          lipgloss.Color(t.OK),
		NG:          lipgloss.Color(t.NG),
		Current:     lipgloss.Color(t.Current),
		Warning:     lipgloss.Color(t.Warning),

		TextOnAccent:  lipgloss.Color(readableOn(t.Accent, t.Bg, t.Fg)),
		TextOnWarning: lipgloss.Color(readableOn(t.Warning, t.Bg, t.Fg)),
		TextOnCurrent: lipgloss.Color(readableOn(t.Current, t.Bg, t.Fg)),

		light: t.IsLight(),
		bg:    t.Bg,
		fg:    t.Fg,
	}
}

// Slot returns block colors for a slot drawn in hex. Past slots are muted.
func (p *Palette) Slot(hex string, past bool) SlotColors {
	bg := p.blockBg(hex, past)
	return SlotColors{
		Bg:    lipgloss.Color(bg),
		BgAlt: lipgloss.Color(p.altShade(bg)),
		Fg:    lipgloss.Color(readableOn(bg, p.bg, p.fg)),
	}
}

// blockBg tints hex towards the theme background on light themes and
// darkens it on dark ones.
func (p *Palette) blockBg(hex string, past bool) string {
	switch {
	case p.light && past:
		return blend(hex, p.bg, 0.88)
	case p.light:
		return blend(hex, p.bg, 0.75)
	case past:
		return shade(hex, 0.30, 30)
	default:
		return shade(hex, 0.50, 40)
	}
}

func (p *Palette) altShade(hex string) string {
	if p.light {
		return blend(hex, "#000000", 0.10)
	}
	return blend(hex, "#ffffff", 0.30)
}

// shade scales each channel of hex by factor, keeping every channel at or
// above floor (0-255) so dark blocks stay visible.
func shade(hex string, factor float64, floor int) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	lo := float64(floor) / 255
	scale := func(v float64) float64 { return max(lo, v*factor) }
	return colorful.Color{R: scale(c.R), G: scale(c.G), B: scale(c.B)}.Clamped().Hex()
}

// blend mixes a towards b by ratio in RGB space.
func blend(a, b string, ratio float64) string {
	ca, errA := colorful.Hex(a)
	cb, errB := colorful.Hex(b)
	if errA != nil || errB != nil {
		return a
	}
	return ca.BlendRgb(cb, min(1, max(0, ratio))).Clamped().Hex()
}

// readableOn picks whichever of lightText and darkText contrasts more with bg.
func readableOn(bg, lightText, darkText string) string {
	if contrast(bg, lightText) >= contrast(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrast(a, b string) float64 {
	l1, l2 := luminance(a), luminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// luminance is the WCAG relative luminance of hex, or 0 if hex is not a color.
func luminance(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
