package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

var darkBase = &Theme{
	Bg:          "#101010",
	BgHighlight: "#202020",
	BgSelection: "#303030",
	Fg:          "#ffffff",
	FgMuted:     "#aaaaaa",
	Accent:      "#ff0000",
	OK:          "#00ff00",
	NG:          "#ff0000",
	Current:     "#777777",
	Warning:     "#888888",
}

func TestShade(t *testing.T) {
	tests := []struct {
		hex    string
		factor float64
		floor  int
		want   string
	}{
		{"#ffffff", 0.5, 0, "#808080"},
		{"#000000", 0.5, 40, "#282828"},
		{"#ff0000", 0.5, 40, "#802828"},
		{"nope", 0.5, 40, "nope"},
	}
	for _, tt := range tests {
		if got := shade(tt.hex, tt.factor, tt.floor); got != tt.want {
			t.Errorf("shade(%q, %v, %d) = %q, want %q", tt.hex, tt.factor, tt.floor, got, tt.want)
		}
	}
}

func TestBlend(t *testing.T) {
	if got := blend("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("blend at 0 = %q", got)
	}
	if got := blend("#000000", "#ffffff", 2); got != "#ffffff" {
		t.Errorf("blend above 1 = %q, want clamped to white", got)
	}
	if got := blend("bad", "#ffffff", 0.5); got != "bad" {
		t.Errorf("blend of an invalid color = %q", got)
	}
}

func TestPalette_SlotShades(t *testing.T) {
	palette := NewPalette(darkBase)

	const green = "#34a853"
	got := palette.Slot(green, false)
	if got.Bg != lipgloss.Color(shade(green, 0.50, 40)) {
		t.Fatalf("Bg = %q, want %q", got.Bg, shade(green, 0.50, 40))
	}
	if got.BgAlt == got.Bg {
		t.Fatal("alternate shade should differ from the block color")
	}
	if luminance(string(got.BgAlt)) <= luminance(string(got.Bg)) {
		t.Fatal("on dark themes the alternate shade is lighter")
	}

	past := palette.Slot(green, true)
	if past.Bg == got.Bg {
		t.Fatal("past slots should be drawn differently")
	}
	if luminance(string(past.Bg)) >= luminance(string(got.Bg)) {
		t.Fatal("past slots should be darker on a dark theme")
	}
}

func TestPalette_SlotTextContrast(t *testing.T) {
	palette := NewPalette(darkBase)
	got := palette.Slot("#4285f4", false)
	if got.Fg != lipgloss.Color(darkBase.Fg) {
		t.Fatalf("Fg on a dark block = %q, want %q", got.Fg, darkBase.Fg)
	}
}

func TestPalette_LightThemeLightensBlocks(t *testing.T) {
	base := &Theme{
		Bg:      "#f5f5f5",
		Fg:      "#222222",
		Accent:  "#2f6feb",
		OK:      "#2f8f2f",
		NG:      "#c2410c",
		Current: "#c97b00",
		Warning: "#c2410c",
	}
	base.applyDefaults()

	palette := NewPalette(base)
	const red = "#ea4335"
	bg := palette.Slot(red, false).Bg
	if luminance(string(bg)) <= luminance(red) {
		t.Fatalf("block luminance = %f, want greater than the slot color", luminance(string(bg)))
	}
}

func TestNewPalette_NilUsesDefault(t *testing.T) {
	palette := NewPalette(nil)
	def, err := Load(DefaultName)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if palette.Bg != lipgloss.Color(def.Bg) {
		t.Fatalf("Bg = %q, want %q", palette.Bg, def.Bg)
	}
}

func TestReadableOnPrefersContrast(t *testing.T) {
	if got := readableOn("#f0f0f0", "#ffffff", "#111111"); got != "#111111" {
		t.Fatalf("readableOn light bg = %q, want dark text", got)
	}
	if got := readableOn("#101010", "#ffffff", "#111111"); got != "#ffffff" {
		t.Fatalf("readableOn dark bg = %q, want light text", got)
	}
}
