package report

import (
	"encoding/json"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/klauern/lexmerge/internal/tree"
)

// Value is a snapshot of one side of a conflict: an attribute value, element
// text, or a serialized subtree. Present is false when the side had nothing.
type Value struct {
	Present bool
	Text    string
}

// Absent is the value of a side that had nothing.
func Absent() Value {
	return Value{}
}

// Text is a present value.
func Text(s string) Value {
	return Value{Present: true, Text: s}
}

// Optional converts a (value, ok) lookup result.
func Optional(s string, ok bool) Value {
	if !ok {
		return Value{}
	}
	return Text(s)
}

// Subtree snapshots n as canonical XML, or Absent for nil.
func Subtree(n *tree.Node) Value {
	if n == nil {
		return Value{}
	}
	return Text(n.String())
}

func (v Value) String() string {
	if !v.Present {
		return "(absent)"
	}
	return v.Text
}

// MarshalJSON renders an absent value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Present {
		return []byte("null"), nil
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON reads null as absent.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Text(s)
	return nil
}

// MarshalYAML renders an absent value as null.
func (v Value) MarshalYAML() (any, error) {
	if !v.Present {
		return nil, nil
	}
	return v.Text, nil
}

// Resolution names what ended up in the merged document.
type Resolution string

const (
	// ResolutionOurs kept the local side.
	ResolutionOurs Resolution = "ours"
	// ResolutionTheirs took the incoming side.
	ResolutionTheirs Resolution = "theirs"
	// ResolutionKeptEdit kept the edited side of a delete/edit conflict.
	ResolutionKeptEdit Resolution = "kept-edit"
	// ResolutionFirstMatch used the first candidate in document order.
	ResolutionFirstMatch Resolution = "first-match"
	// ResolutionDefault used the fallback strategy.
	ResolutionDefault Resolution = "default"
)

func (r Resolution) String() string {
	return string(r)
}

// Record is one conflict or warning.
type Record struct {
	Kind        Kind       `json:"kind" yaml:"kind"`
	Path        tree.Path  `json:"path" yaml:"path"`
	Description string     `json:"description" yaml:"description"`
	Ancestor    Value      `json:"ancestor" yaml:"ancestor"`
	Ours        Value      `json:"ours" yaml:"ours"`
	Theirs      Value      `json:"theirs" yaml:"theirs"`
	Resolution  Resolution `json:"resolution" yaml:"resolution"`
	// Review is set when the resolution was a placeholder choice that a person
	// should confirm.
	Review bool `json:"review,omitempty" yaml:"review,omitempty"`
}

// Class returns the record's class.
func (r Record) Class() Class {
	return r.Kind.Class()
}

// IsConflict reports whether the record is a conflict.
func (r Record) IsConflict() bool {
	return r.Kind.Class() == ClassConflict
}

func (r Record) String() string {
	return r.Kind.String() + " at " + r.Path.String() + ": " + r.Description
}

// Diff renders the change from ours to theirs inline, marking deletions as
// [-text-] and insertions as {+text+}. It is empty when either side is absent
// or both are equal.
func (r Record) Diff() string {
	if !r.Ours.Present || !r.Theirs.Present || r.Ours.Text == r.Theirs.Text {
		return ""
	}
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(r.Ours.Text, r.Theirs.Text, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		case diffpatch.DiffEqual:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}

// Filter returns the records of the given class, in order.
func Filter(records []Record, c Class) []Record {
	var out []Record
	for _, r := range records {
		if r.Class() == c {
			out = append(out, r)
		}
	}
	return out
}

// CountByKind tallies records per kind.
func CountByKind(records []Record) map[Kind]int {
	counts := make(map[Kind]int)
	for _, r := range records {
		counts[r.Kind]++
	}
	return counts
}
