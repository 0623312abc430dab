// Package colors provides centralized color output with TTY-aware defaults.
//
// Colors are automatically disabled when stdout is not a terminal. Use Init
// to override that from the --color flag.
package colors

import "github.com/fatih/color"

// Init overrides the auto-detected color setting when forceColor is non-nil.
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

func Bold() *color.Color  { return color.New(color.Bold) }
func Faint() *color.Color { return color.New(color.Faint) }

func Red() *color.Color    { return color.New(color.FgRed) }
func Green() *color.Color  { return color.New(color.FgGreen) }
func Yellow() *color.Color { return color.New(color.FgYellow) }

func HiBlue() *color.Color    { return color.New(color.FgHiBlue) }
func HiMagenta() *color.Color { return color.New(color.FgHiMagenta) }
func HiCyan() *color.Color    { return color.New(color.FgHiCyan) }

func BoldHiCyan() *color.Color { return color.New(color.Bold, color.FgHiCyan) }

func FaintHiBlue() *color.Color { return color.New(color.Faint, color.FgHiBlue) }
func ItalicFaint() *color.Color { return color.New(color.Italic, color.Faint) }
