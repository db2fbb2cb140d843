package tree

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"
)

// String returns the canonical compact XML form of the subtree. It is the
// form used when a whole subtree is compared or reported as a single value.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	_ = n.WriteXML(&sb, "")
	return sb.String()
}

// WriteXML writes the subtree as XML. A non-empty indent pretty prints
// element-only content; elements holding mixed content are written compactly
// so their text is preserved exactly.
func (n *Node) WriteXML(w io.Writer, indent string) error {
	bw := bufio.NewWriter(w)
	n.writeXML(bw, indent, 0)
	return bw.Flush()
}

func (n *Node) writeXML(w *bufio.Writer, indent string, depth int) {
	if n.IsText() {
		_ = xml.EscapeText(w, []byte(n.text))
		return
	}
	w.WriteByte('<')
	w.WriteString(n.tag)
	for _, a := range n.attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		_ = xml.EscapeText(w, []byte(a.Value))
		w.WriteByte('"')
	}
	switch {
	case n.hasText:
		if n.text == "" {
			w.WriteString("/>")
			return
		}
		w.WriteByte('>')
		_ = xml.EscapeText(w, []byte(n.text))
	case len(n.children) == 0:
		w.WriteString("/>")
		return
	default:
		w.WriteByte('>')
		pretty := indent != "" && !n.hasMixedContent()
		for _, c := range n.children {
			if pretty {
				w.WriteByte('\n')
				w.WriteString(strings.Repeat(indent, depth+1))
				c.writeXML(w, indent, depth+1)
				continue
			}
			c.writeXML(w, "", depth+1)
		}
		if pretty {
			w.WriteByte('\n')
			w.WriteString(strings.Repeat(indent, depth))
		}
	}
	w.WriteString("</")
	w.WriteString(n.tag)
	w.WriteByte('>')
}

func (n *Node) hasMixedContent() bool {
	for _, c := range n.children {
		if c.IsText() {
			return true
		}
	}
	return false
}
