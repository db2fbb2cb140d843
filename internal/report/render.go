package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klauern/lexmerge/internal/ui"
)

// Format selects how a report is written.
type Format string

const (
	// FormatText is a colored human-readable listing.
	FormatText Format = "text"
	// FormatJSON is an indented JSON document.
	FormatJSON Format = "json"
	// FormatYAML is a YAML document.
	FormatYAML Format = "yaml"
)

// IsValid returns true if the format is recognized.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// AllFormats returns the supported formats.
func AllFormats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML}
}

func (f Format) String() string {
	return string(f)
}

// Summary is the serialized form of one document's report.
type Summary struct {
	Document  string   `json:"document" yaml:"document"`
	Conflicts int      `json:"conflicts" yaml:"conflicts"`
	Warnings  int      `json:"warnings" yaml:"warnings"`
	Records   []Record `json:"records" yaml:"records"`
}

// Summarize counts records for document.
func Summarize(document string, records []Record) Summary {
	s := Summary{Document: document, Records: records}
	for _, r := range records {
		if r.IsConflict() {
			s.Conflicts++
		} else {
			s.Warnings++
		}
	}
	if s.Records == nil {
		s.Records = []Record{}
	}
	return s
}

// Write renders summaries in format f.
func Write(w io.Writer, f Format, summaries ...Summary) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(summaries) == 1 {
			return enc.Encode(summaries[0])
		}
		return enc.Encode(summaries)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		var err error
		if len(summaries) == 1 {
			err = enc.Encode(summaries[0])
		} else {
			err = enc.Encode(summaries)
		}
		if err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		for _, s := range summaries {
			if err := writeText(w, s); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

func writeText(w io.Writer, s Summary) error {
	var sb strings.Builder
	headline := fmt.Sprintf("%s: %s, %s", s.Document,
		plural(s.Conflicts, "conflict"), plural(s.Warnings, "warning"))
	switch {
	case s.Conflicts > 0:
		sb.WriteString(ui.StatusError(headline))
	case s.Warnings > 0:
		sb.WriteString(ui.StatusWarning(headline))
	default:
		sb.WriteString(ui.StatusSuccess(headline))
	}
	sb.WriteByte('\n')

	for _, r := range s.Records {
		kind := ui.Warning(r.Kind.String())
		if r.IsConflict() {
			kind = ui.Error(r.Kind.String())
		}
		fmt.Fprintf(&sb, "  %s %s -> %s", kind, ui.Info(r.Path.String()), r.Resolution)
		if r.Review {
			sb.WriteString(" " + ui.Warning("(review)"))
		}
		sb.WriteByte('\n')
		fmt.Fprintf(&sb, "      %s\n", r.Description)
		if d := r.Diff(); d != "" && !strings.Contains(d, "\n") {
			fmt.Fprintf(&sb, "      %s\n", ui.Dim(ui.Truncate(d, 120)))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// WriteDetails shows the three sides of every conflict in records next to
// each other, wrapped to width cells. Warnings are skipped.
func WriteDetails(w io.Writer, width int, records []Record) error {
	var sb strings.Builder
	for _, r := range records {
		if !r.IsConflict() {
			continue
		}
		fmt.Fprintf(&sb, "\n%s %s\n", ui.Error(r.Kind.String()), ui.Info(r.Path.String()))
		sb.WriteString(ui.SideBySide(width,
			ui.Panel{Title: "ANCESTOR", Body: r.Ancestor.String()},
			ui.Panel{Title: "OURS", Body: r.Ours.String()},
			ui.Panel{Title: "THEIRS", Body: r.Theirs.String()},
		))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
