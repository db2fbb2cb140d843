package tree

import (
	"slices"
)

// TextTag is the tag of nodes holding a run of character data inside mixed
// content.
const TextTag = "#text"

// Attr is a single attribute of an element.
type Attr struct {
	Name  string
	Value string
}

// Attrs builds an attribute list from alternating name and value arguments.
// A trailing name without a value is given an empty value.
func Attrs(kv ...string) []Attr {
	res := make([]Attr, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		a := Attr{Name: kv[i]}
		if i+1 < len(kv) {
			a.Value = kv[i+1]
		}
		res = append(res, a)
	}
	return res
}

// Node is an immutable element of a document tree.
type Node struct {
	tag      string
	attrs    []Attr
	text     string
	hasText  bool
	children []*Node
	hash     uint64
}

// New returns an element with the given attributes and children.
// Nil children are dropped.
func New(tag string, attrs []Attr, children ...*Node) *Node {
	n := &Node{
		tag:   tag,
		attrs: slices.Clone(attrs),
	}
	if len(children) > 0 {
		n.children = make([]*Node, 0, len(children))
		for _, c := range children {
			if c != nil {
				n.children = append(n.children, c)
			}
		}
	}
	n.hash = n.computeHash()
	return n
}

// NewText returns a leaf element carrying a text value.
func NewText(tag string, attrs []Attr, text string) *Node {
	n := &Node{
		tag:     tag,
		attrs:   slices.Clone(attrs),
		text:    text,
		hasText: true,
	}
	n.hash = n.computeHash()
	return n
}

// TextNode returns a character data node for mixed content.
func TextNode(text string) *Node {
	return NewText(TextTag, nil, text)
}

// Tag returns the element name.
func (n *Node) Tag() string {
	return n.tag
}

// IsText reports whether n is a mixed content character data node.
func (n *Node) IsText() bool {
	return n.tag == TextTag
}

// Attrs returns a copy of the attributes in document order.
func (n *Node) Attrs() []Attr {
	return slices.Clone(n.attrs)
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns the text value, if any.
func (n *Node) Text() (string, bool) {
	return n.text, n.hasText
}

// Len returns the number of children.
func (n *Node) Len() int {
	return len(n.children)
}

// Child returns the i'th child.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// ChildrenNamed returns the children with the given tag, in document order.
func (n *Node) ChildrenNamed(tag string) []*Node {
	var res []*Node
	for _, c := range n.children {
		if c.tag == tag {
			res = append(res, c)
		}
	}
	return res
}

// Ordinal returns the 0-based position of child i among the children sharing
// its tag.
func (n *Node) Ordinal(i int) int {
	tag := n.children[i].tag
	ord := 0
	for _, c := range n.children[:i] {
		if c.tag == tag {
			ord++
		}
	}
	return ord
}

// WithChildren returns a copy of n with its children replaced. The text value
// is dropped when children are given.
func (n *Node) WithChildren(children ...*Node) *Node {
	if len(children) == 0 && n.hasText {
		return NewText(n.tag, n.attrs, n.text)
	}
	return New(n.tag, n.attrs, children...)
}

// Walk visits n and its descendants depth first in document order. The path
// passed to f addresses the visited node relative to n. Returning false from f
// skips the children of the visited node.
func (n *Node) Walk(f func(p Path, node *Node) bool) {
	n.walk(Root(n.tag), f)
}

func (n *Node) walk(p Path, f func(Path, *Node) bool) {
	if !f(p, n) {
		return
	}
	seen := make(map[string]int, len(n.children))
	for _, c := range n.children {
		seen[c.tag]++
		c.walk(p.Child(c.tag, seen[c.tag]), f)
	}
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	s := 1
	for _, c := range n.children {
		s += c.Size()
	}
	return s
}
