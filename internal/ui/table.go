package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title turns a dashed identifier such as "delete-edit-conflict" into
// "Delete Edit Conflict".
func Title(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "-", " "))
}

// Table writes aligned columns. Widths are measured in terminal cells, so
// wide characters in lexicon data stay aligned.
type Table struct {
	headers []string
	rows    [][]cell
}

type cell struct {
	text   string
	styled string
}

// NewTable starts a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// Row appends a row of plain cells.
func (t *Table) Row(cells ...string) {
	row := make([]cell, len(cells))
	for i, c := range cells {
		row[i] = cell{text: c, styled: c}
	}
	t.rows = append(t.rows, row)
}

// StyledRow appends a row, applying style[i] (when non-nil) to cell i after
// measuring it.
func (t *Table) StyledRow(style []func(...any) string, cells ...string) {
	row := make([]cell, len(cells))
	for i, c := range cells {
		row[i] = cell{text: c, styled: c}
		if i < len(style) && style[i] != nil {
			row[i].styled = style[i](c)
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Write renders the table with two spaces between columns.
func (t *Table) Write(w io.Writer) error {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(c.text))
		}
	}

	var sb strings.Builder
	for i, h := range t.headers {
		writeCell(&sb, h, Header(h), widths[i], i == len(t.headers)-1)
	}
	sb.WriteByte('\n')
	for _, row := range t.rows {
		for i, c := range row {
			writeCell(&sb, c.text, c.styled, widths[i], i == len(row)-1)
		}
		sb.WriteByte('\n')
	}
	_, err := fmt.Fprint(w, sb.String())
	return err
}

func writeCell(sb *strings.Builder, text, styled string, width int, last bool) {
	sb.WriteString(styled)
	if last {
		return
	}
	sb.WriteString(strings.Repeat(" ", width-runewidth.StringWidth(text)+2))
}

// Truncate shortens s to at most width cells, marking the cut with "…".
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
