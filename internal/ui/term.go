package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const defaultTermWidth = 80

// Output styles. fatih/color drops the escapes itself when stdout is not a
// terminal or NO_COLOR is set.
var (
	formatOK     = color.New(color.FgGreen, color.Bold).SprintFunc()
	formatNG     = color.New(color.FgRed).SprintFunc()
	formatHeader = color.New(color.Bold).SprintFunc()
	formatLink   = color.New(color.FgCyan, color.Underline).SprintFunc()
	formatMuted  = color.New(color.FgWhite, color.Faint).SprintFunc()
)

// termWidth returns the width of stdout, or defaultTermWidth when it is not
// a terminal.
func termWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultTermWidth
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	return defaultTermWidth
}

// DisableColor turns off colored output for the rest of the process.
func DisableColor() {
	color.NoColor = true
}
