// Package ui styles terminal output of the CLI.
package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Enabled turns styling on. It is off when NO_COLOR is set or stdout is not a terminal.
var Enabled = os.Getenv("NO_COLOR") == "" && IsTerminal(os.Stdout)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

func style(code, s string) string {
	if !Enabled {
		return s
	}
	return code + s + ColorReset
}

// Painter styles text bound for one writer
type Painter struct {
	on bool
}

// For returns a Painter that only emits escapes when Enabled and w is a terminal
func For(w io.Writer) Painter {
	f, ok := w.(*os.File)
	return Painter{on: Enabled && ok && IsTerminal(f)}
}

func (p Painter) paint(code, s string) string {
	if !p.on {
		return s
	}
	return code + s + ColorReset
}

func (p Painter) Heading(s string) string { return p.paint(ColorBold+ColorWhite, s) }
func (p Painter) Title(s string) string   { return p.paint(ColorBold+ColorCyan, s) }
func (p Painter) Command(s string) string { return p.paint(ColorCyan, s) }
func (p Painter) Flag(s string) string    { return p.paint(ColorGreen, s) }
func (p Painter) Dim(s string) string     { return p.paint(ColorDim, s) }

func Bold(s string) string {
	return style(ColorBold, s)
}

func Success(s string) string {
	return style(ColorGreen, "✓ "+s)
}

func Info(s string) string {
	return style(ColorDim+ColorYellow, s)
}

func Error(s string) string {
	return style(ColorRed, "✗ "+s)
}
