package logger

import (
	"io"
	"os"

	"golang.org/x/term"
)

// colorCapable reports whether w is a terminal that should receive ANSI colors.
// NO_COLOR (https://no-color.org) disables colors regardless.
func colorCapable(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
