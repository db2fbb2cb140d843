package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is one element of a Path: a tag and the 1-based index of the node
// among its same-tag siblings.
type Step struct {
	Tag   string `json:"tag" yaml:"tag"`
	Index int    `json:"index" yaml:"index"`
}

func (s Step) String() string {
	return s.Tag + "[" + strconv.Itoa(s.Index) + "]"
}

// Path addresses a node from the document root.
type Path []Step

// Root returns the path of a document root with the given tag.
func Root(tag string) Path {
	return Path{{Tag: tag, Index: 1}}
}

// Child returns a new path extending p. p itself is never modified.
func (p Path) Child(tag string, index int) Path {
	res := make(Path, len(p), len(p)+1)
	copy(res, p)
	return append(res, Step{Tag: tag, Index: index})
}

// Parent returns the path of the parent node, or nil for the root.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Last returns the final step of p.
func (p Path) Last() Step {
	if len(p) == 0 {
		return Step{}
	}
	return p[len(p)-1]
}

// Equal reports whether p and q address the same node.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// String renders p XPath style. The root step never carries an index.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for i, s := range p {
		sb.WriteByte('/')
		if i == 0 {
			sb.WriteString(s.Tag)
			continue
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(d []byte) error {
	pp, err := ParsePath(string(d))
	if err != nil {
		return err
	}
	*p = pp
	return nil
}

// ParsePath parses the form produced by Path.String. Steps without an index
// default to index 1.
func ParsePath(s string) (Path, error) {
	if len(s) == 0 || s[0] != '/' {
		return nil, fmt.Errorf("path %q should start with '/'", s)
	}
	if s == "/" {
		return Path{}, nil
	}
	parts := strings.Split(s[1:], "/")
	res := make(Path, 0, len(parts))
	for _, part := range parts {
		step, err := parseStep(part)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", s, err)
		}
		res = append(res, step)
	}
	return res, nil
}

func parseStep(frag string) (Step, error) {
	if frag == "" {
		return Step{}, fmt.Errorf("empty step")
	}
	i := strings.IndexByte(frag, '[')
	if i == -1 {
		return Step{Tag: frag, Index: 1}, nil
	}
	if i == 0 {
		return Step{}, fmt.Errorf("expected tag before '['")
	}
	if frag[len(frag)-1] != ']' {
		return Step{}, fmt.Errorf("expected '[' <index> ']'")
	}
	idx, err := strconv.ParseUint(frag[i+1:len(frag)-1], 10, 32)
	if err != nil {
		return Step{}, err
	}
	if idx == 0 {
		return Step{}, fmt.Errorf("index must be at least 1")
	}
	return Step{Tag: frag[:i], Index: int(idx)}, nil
}

// Lookup returns the node addressed by p, whose first step must name the root.
func (n *Node) Lookup(p Path) (*Node, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	if p[0].Tag != n.tag {
		return nil, fmt.Errorf("root is %q, path starts with %q", n.tag, p[0].Tag)
	}
	res := n
	for _, s := range p[1:] {
		named := res.ChildrenNamed(s.Tag)
		if s.Index < 1 || s.Index > len(named) {
			return nil, fmt.Errorf("no %s under %q (have %d)", s, res.tag, len(named))
		}
		res = named[s.Index-1]
	}
	return res, nil
}
