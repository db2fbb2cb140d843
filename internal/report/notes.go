package report

import (
	"strconv"

	"github.com/klauern/lexmerge/internal/tree"
)

// NotesTag is the root element of a notes document.
const NotesTag = "merge-notes"

// Notes renders records as a notes document that can be written next to the
// merged file:
//
//	<merge-notes version="1" conflicts="1" warnings="0">
//	  <conflict kind="text-conflict" path="/lift/entry[1]/..." resolution="ours" review="true">
//	    <description>...</description>
//	    <ancestor>...</ancestor>
//	    <ours>...</ours>
//	    <theirs>...</theirs>
//	  </conflict>
//	</merge-notes>
//
// Absent sides are left out.
func Notes(records []Record) *tree.Node {
	conflicts := 0
	children := make([]*tree.Node, 0, len(records))
	for _, r := range records {
		if r.IsConflict() {
			conflicts++
		}
		children = append(children, note(r))
	}
	attrs := tree.Attrs(
		"version", "1",
		"conflicts", strconv.Itoa(conflicts),
		"warnings", strconv.Itoa(len(records)-conflicts),
	)
	return tree.New(NotesTag, attrs, children...)
}

func note(r Record) *tree.Node {
	attrs := tree.Attrs(
		"kind", r.Kind.String(),
		"path", r.Path.String(),
		"resolution", r.Resolution.String(),
	)
	if r.Review {
		attrs = append(attrs, tree.Attr{Name: "review", Value: "true"})
	}
	kids := []*tree.Node{tree.NewText("description", nil, r.Description)}
	for _, side := range []struct {
		tag string
		v   Value
	}{
		{"ancestor", r.Ancestor},
		{"ours", r.Ours},
		{"theirs", r.Theirs},
	} {
		if side.v.Present {
			kids = append(kids, tree.NewText(side.tag, nil, side.v.Text))
		}
	}
	return tree.New(string(r.Class()), attrs, kids...)
}
