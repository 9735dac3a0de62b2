package term

import (
	"os"

	"golang.org/x/term"
)

const defaultWidth = 80

// GetWidth returns the width of the terminal attached to stdout, or 80 when
// stdout is not a terminal.
func GetWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
