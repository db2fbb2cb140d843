// Package ui provides terminal output helpers for lexmerge.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Color function types for styled output.
var (
	// Success is used for clean merges (green).
	Success = color.New(color.FgGreen).SprintFunc()
	// Error is used for conflicts and failures (red).
	Error = color.New(color.FgRed).SprintFunc()
	// Warning is used for warnings and review flags (yellow).
	Warning = color.New(color.FgYellow).SprintFunc()
	// Info is used for paths and informational values (cyan).
	Info = color.New(color.FgCyan).SprintFunc()
	// Bold is used for emphasis.
	Bold = color.New(color.Bold).SprintFunc()
	// Dim is used for secondary information.
	Dim = color.New(color.Faint).SprintFunc()
	// Header is used for table headers (bold cyan).
	Header = color.New(color.FgCyan, color.Bold).SprintFunc()
	// Removed marks text only ours has (red strike).
	Removed = color.New(color.FgRed, color.CrossedOut).SprintFunc()
	// Added marks text only theirs has (green underline).
	Added = color.New(color.FgGreen, color.Underline).SprintFunc()
)

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolSkipped = "-"
)

// StatusSuccess returns a green checkmark with optional message.
func StatusSuccess(msg string) string {
	return status(Success(SymbolSuccess), msg)
}

// StatusError returns a red X with optional message.
func StatusError(msg string) string {
	return status(Error(SymbolError), msg)
}

// StatusWarning returns a yellow warning sign with optional message.
func StatusWarning(msg string) string {
	return status(Warning(SymbolWarning), msg)
}

// StatusSkipped returns a dimmed skip symbol with optional message.
func StatusSkipped(msg string) string {
	return status(Dim(SymbolSkipped), msg)
}

func status(symbol, msg string) string {
	if msg == "" {
		return symbol
	}
	return symbol + " " + msg
}

// ColorMode selects when output is colored.
type ColorMode string

const (
	// ColorAuto colors output written to a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways forces color.
	ColorAlways ColorMode = "always"
	// ColorNever disables color.
	ColorNever ColorMode = "never"
)

// IsValid returns true if the mode is recognized.
func (m ColorMode) IsValid() bool {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// ConfigureColors applies mode for output written to f. In auto mode color is
// used only when f is a terminal and NO_COLOR is unset.
func ConfigureColors(mode ColorMode, f *os.File) error {
	switch mode {
	case ColorAlways:
		EnableColors()
	case ColorNever:
		DisableColors()
	case ColorAuto, "":
		if os.Getenv("NO_COLOR") != "" || f == nil || !IsTerminal(f) {
			DisableColors()
		} else {
			EnableColors()
		}
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", mode)
	}
	return nil
}

// IsTerminal reports whether f is a terminal, including Cygwin/MSYS ptys.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DisableColors disables all color output.
func DisableColors() {
	color.NoColor = true
	lipgloss.SetColorProfile(termenv.Ascii)
}

// EnableColors enables color output.
func EnableColors() {
	color.NoColor = false
	lipgloss.SetColorProfile(termenv.ANSI256)
}

// IsColorEnabled returns whether colors are currently enabled.
func IsColorEnabled() bool {
	return !color.NoColor
}
