// Package ascii provides terminal ANSI color codes semantic names for
// colors so they can be grouped in themes.
package ascii

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	Reset  = "\033[0m"
	Red    = "\033[1;31m"
	Yellow = "\033[1;33m"
	Green  = "\033[1;32m"
	Cyan   = "\033[1;36m"
	Gray   = "\033[90m" // Bright black, actually
	Bold   = "\033[1m"

	// 256-color palette
	Orange  = "\033[38;5;208m"
	Gray245 = "\033[1;38;5;245m"
	Pink    = "\033[1;38;5;127m"
)

// Theme maps the elements printed by the parse tree and error
// printers to colors.  Empty fields are printed without color.
type Theme struct {
	// error messages and the carets pointing at the input
	Error string
	Caret string

	Muted   string // spans, positions
	Accent  string // node labels
	Success string

	Literal string // matched text
	Operand string // semantic values
}

// DefaultTheme provides a sensible default color mapping.
var DefaultTheme = Theme{
	Error:   Red,
	Caret:   Yellow,
	Muted:   Gray245,
	Accent:  Cyan,
	Success: Green,
	Literal: Green,
	Operand: Pink,
}

// PlainTheme doesn't color anything.
var PlainTheme = Theme{}

// ThemeFor returns DefaultTheme when `f` is a terminal and the
// NO_COLOR environment variable isn't set, PlainTheme otherwise.
func ThemeFor(f *os.File) Theme {
	if os.Getenv("NO_COLOR") != "" {
		return PlainTheme
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return DefaultTheme
	}
	return PlainTheme
}

// Color formats `args` with `format` and wraps the result with
// `color`.  An empty color leaves the text untouched.
func Color(color, format string, args ...any) string {
	if color == "" {
		return fmt.Sprintf(format, args...)
	}
	return fmt.Sprintf(color+format+Reset, args...)
}
