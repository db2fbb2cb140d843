package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Panel is one titled box of SideBySide output.
type Panel struct {
	Title string
	Body  string
}

var (
	panelBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	panelTitle = lipgloss.NewStyle().Bold(true)
	panelEmpty = lipgloss.NewStyle().Faint(true).Italic(true)
)

// SideBySide renders panels in bordered boxes next to each other, splitting
// width cells evenly between them. Long lines wrap inside their box.
func SideBySide(width int, panels ...Panel) string {
	if len(panels) == 0 {
		return ""
	}
	// border takes one cell on each side
	inner := max(width/len(panels)-2, 8)

	boxes := make([]string, len(panels))
	for i, p := range panels {
		body := p.Body
		if body == "" {
			body = panelEmpty.Render("(empty)")
		}
		boxes[i] = panelBox.Width(inner).Render(panelTitle.Render(p.Title) + "\n" + body)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// TerminalWidth returns the width of the terminal behind f, or fallback when
// f is not a terminal.
func TerminalWidth(f *os.File, fallback int) int {
	if f == nil || !IsTerminal(f) {
		return fallback
	}
	cols, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // G115 - fd fits in int
	if err != nil || cols <= 0 {
		return fallback
	}
	return cols
}
