package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlay centers a rendered box on top of the grid.
type overlay struct {
	bg lipgloss.Color
}

// Render draws box over base, clipped to width x height. Rows outside the
// box keep the base content.
func (o overlay) Render(base string, width, height int, box string) string {
	if box == "" || width <= 0 || height <= 0 {
		return base
	}

	boxLines := strings.Split(strings.TrimRight(box, "\n"), "\n")
	boxW := 0
	for _, line := range boxLines {
		boxW = max(boxW, lipgloss.Width(line))
	}
	boxW = min(boxW, width)
	boxH := min(len(boxLines), height)

	top := max(0, (height-boxH)/2)
	left := max(0, (width-boxW)/2)

	lines := o.normalize(base, width, height)
	for i := 0; i < boxH; i++ {
		row := top + i
		line := boxLines[i]
		if w := lipgloss.Width(line); w > boxW {
			line = ansi.Cut(line, 0, boxW)
		} else if w < boxW {
			line += o.fill(boxW - w)
		}
		lines[row] = ansi.Cut(lines[row], 0, left) + line + ansi.Cut(lines[row], left+boxW, width)
	}
	return strings.Join(lines, "\n")
}

func (o overlay) fill(n int) string {
	if n <= 0 {
		return ""
	}
	bgSeq := ansi.Style{}.BackgroundColor(ansi.HexColor(string(o.bg))).String()
	return bgSeq + strings.Repeat(" ", n) + ansi.ResetStyle
}

// normalize pads or cuts base to exactly height lines of width cells.
func (o overlay) normalize(base string, width, height int) []string {
	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	for i, line := range lines {
		w := lipgloss.Width(line)
		switch {
		case w > width:
			lines[i] = ansi.Cut(line, 0, width)
		case w < width:
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return lines
}
