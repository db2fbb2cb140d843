package tree

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrMalformed is wrapped by every error reporting a structurally invalid tree.
var ErrMalformed = errors.New("malformed tree")

// ValidationError describes the first structural problem found in a tree.
type ValidationError struct {
	Path   Path
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s: %s", ErrMalformed, e.Reason)
	}
	return fmt.Sprintf("%s at %s: %s", ErrMalformed, e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrMalformed
}

// Validate checks that root is a well-formed tree: every tag is a valid
// element name, attribute names are valid and unique per element, no element
// has both text and children, and character data nodes are bare.
func Validate(root *Node) error {
	if root == nil {
		return &ValidationError{Reason: "nil root"}
	}
	if root.IsText() {
		return &ValidationError{Path: Root(root.tag), Reason: "root is a text node"}
	}
	var err error
	root.Walk(func(p Path, n *Node) bool {
		if err != nil {
			return false
		}
		if reason := check(n); reason != "" {
			err = &ValidationError{Path: p, Reason: reason}
			return false
		}
		return true
	})
	return err
}

func check(n *Node) string {
	if n.IsText() {
		if len(n.attrs) != 0 || len(n.children) != 0 {
			return "text node with attributes or children"
		}
		return ""
	}
	if !IsName(n.tag) {
		return fmt.Sprintf("invalid element name %q", n.tag)
	}
	if n.hasText && len(n.children) != 0 {
		return "element has both text and children"
	}
	seen := make(map[string]bool, len(n.attrs))
	for _, a := range n.attrs {
		if !IsName(a.Name) {
			return fmt.Sprintf("invalid attribute name %q", a.Name)
		}
		if seen[a.Name] {
			return fmt.Sprintf("duplicate attribute %q", a.Name)
		}
		seen[a.Name] = true
	}
	return ""
}

// IsName reports whether s is a valid XML name.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' || r == ':' {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.' || unicode.Is(unicode.Mn, r)) {
			continue
		}
		return false
	}
	return true
}
