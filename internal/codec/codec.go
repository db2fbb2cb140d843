// Package codec reads XML documents into element trees and writes them back.
//
// Decoding keeps what a merge compares: element names with their namespace
// prefixes, attributes in document order, and text. Whitespace-only character
// data between element-only children is layout and is dropped. Once an element
// holds any non-blank text it is mixed content, and every run of text,
// whitespace-only runs included, becomes a tree.TextNode child. Comments,
// processing instructions and directives are dropped.
package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauern/lexmerge/internal/tree"
)

// SyntaxError reports XML that could not be read into a tree. It wraps
// tree.ErrMalformed.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return tree.ErrMalformed
}

// frame is an element being decoded.
type frame struct {
	tag      string
	attrs    []tree.Attr
	children []*tree.Node
	elements int
	mixed    bool
	pending  strings.Builder
}

// flush turns pending character data into a text child. A non-blank run
// marks the element as mixed content.
func (f *frame) flush() {
	if f.pending.Len() == 0 {
		return
	}
	s := f.pending.String()
	if strings.TrimSpace(s) != "" {
		f.mixed = true
	}
	f.children = append(f.children, tree.TextNode(s))
	f.pending.Reset()
}

func (f *frame) node() *tree.Node {
	if f.elements == 0 {
		text := f.pending.String()
		if strings.TrimSpace(text) == "" {
			return tree.New(f.tag, f.attrs)
		}
		return tree.NewText(f.tag, f.attrs, text)
	}
	f.flush()
	if f.mixed {
		return tree.New(f.tag, f.attrs, f.children...)
	}
	elements := make([]*tree.Node, 0, f.elements)
	for _, c := range f.children {
		if !c.IsText() {
			elements = append(elements, c)
		}
	}
	return tree.New(f.tag, f.attrs, elements...)
}

// Decode reads one XML document.
func Decode(r io.Reader) (*tree.Node, error) {
	d := xml.NewDecoder(r)
	var (
		stack []*frame
		root  *tree.Node
	)
	fail := func(format string, args ...any) error {
		line, col := d.InputPos()
		return &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
	}

	for {
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return nil, &SyntaxError{Line: se.Line, Msg: se.Msg}
			}
			return nil, fmt.Errorf("read xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, fail("more than one root element: <%s>", name(t.Name))
			}
			f := &frame{tag: name(t.Name)}
			for _, a := range t.Attr {
				f.attrs = append(f.attrs, tree.Attr{Name: name(a.Name), Value: a.Value})
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.flush()
				parent.elements++
			}
			stack = append(stack, f)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fail("unexpected </%s>", name(t.Name))
			}
			f := stack[len(stack)-1]
			if got := name(t.Name); got != f.tag {
				return nil, fail("element <%s> closed by </%s>", f.tag, got)
			}
			stack = stack[:len(stack)-1]
			n := f.node()
			if len(stack) == 0 {
				root = n
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fail("character data outside the root element")
				}
				continue
			}
			stack[len(stack)-1].pending.Write(t)
		}
	}

	if len(stack) > 0 {
		return nil, fail("unexpected end of input inside <%s>", stack[len(stack)-1].tag)
	}
	if root == nil {
		return nil, fail("no root element")
	}
	if err := tree.Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}

// DecodeFile reads the XML document at path.
func DecodeFile(path string) (*tree.Node, error) {
	f, err := os.Open(path) //nolint:gosec // G304 - user supplied document paths
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	n, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return n, nil
}

func name(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

type encodeOptions struct {
	indent      string
	declaration bool
}

// Option configures Encode.
type Option func(*encodeOptions)

// Indent pretty prints element-only content with the given indent.
func Indent(indent string) Option {
	return func(o *encodeOptions) {
		o.indent = indent
	}
}

// Declaration controls whether an XML declaration is written first.
// It is written by default.
func Declaration(on bool) Option {
	return func(o *encodeOptions) {
		o.declaration = on
	}
}

const declaration = `<?xml version="1.0" encoding="UTF-8"?>`

// Encode writes n as an XML document terminated by a newline.
func Encode(w io.Writer, n *tree.Node, opts ...Option) error {
	o := encodeOptions{declaration: true}
	for _, opt := range opts {
		opt(&o)
	}
	if n == nil {
		return errors.New("encode: nil tree")
	}
	if o.declaration {
		if _, err := io.WriteString(w, declaration+"\n"); err != nil {
			return err
		}
	}
	if err := n.WriteXML(w, o.indent); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// EncodeFile writes n to path, replacing it atomically.
func EncodeFile(path string, n *tree.Node, opts ...Option) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Encode(tmp, n, opts...); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	// #nosec G302 - documents are meant to be shared like the originals
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
