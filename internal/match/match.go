// Package match finds the node in one document that corresponds to a node of
// another document.
//
// A Finder is one of a closed set of identity rules:
//
//   - KindKey: same tag and equal values for one or more key attributes
//   - KindPosition: same ordinal among same-tag siblings
//   - KindSameContent: an identical subtree
//   - KindWithBackup: a primary finder, then a backup when the primary finds
//     nothing or, for Else chains, when the node has no key for the primary
//
// Finders are plain values and never mutate their inputs, so one finder can
// serve any number of concurrent merges.
package match

import (
	"fmt"
	"strings"

	"github.com/klauern/lexmerge/internal/tree"
)

// Kind identifies a finder variant.
type Kind string

const (
	// KindKey matches by key attribute values.
	KindKey Kind = "key"

	// KindPosition matches by ordinal among same-tag siblings.
	KindPosition Kind = "position"

	// KindSameContent matches an identical subtree.
	KindSameContent Kind = "same-content"

	// KindWithBackup tries Primary and falls back to Backup.
	KindWithBackup Kind = "with-backup"
)

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	switch k {
	case KindKey, KindPosition, KindSameContent, KindWithBackup:
		return true
	default:
		return false
	}
}

// Finder is a node identity rule. Build one with ByKey, ByPosition,
// BySameContent, WithBackup or OptionalKey.
type Finder struct {
	Kind Kind

	// Keys are the key attributes of a KindKey finder. All must be present on
	// the node to match and equal on the candidate.
	Keys []string

	// Primary and Backup are set for KindWithBackup.
	Primary *Finder
	Backup  *Finder

	// Exclusive limits the backup to nodes the primary has no key for. A node
	// carrying the key but without a counterpart is then unmatched.
	Exclusive bool
}

// ByKey matches same-tag siblings whose key attributes all carry the values of
// the node being matched.
func ByKey(keys ...string) Finder {
	return Finder{Kind: KindKey, Keys: keys}
}

// ByPosition matches the same-tag sibling at the same ordinal.
func ByPosition() Finder {
	return Finder{Kind: KindPosition}
}

// BySameContent matches a sibling with identical content.
func BySameContent() Finder {
	return Finder{Kind: KindSameContent}
}

// WithBackup tries primary first and uses backup when primary finds nothing.
func WithBackup(primary, backup Finder) Finder {
	return Finder{Kind: KindWithBackup, Primary: &primary, Backup: &backup}
}

// Else uses backup only for nodes primary extracts no key from. Unlike
// WithBackup, a keyed node whose key is not found stays unmatched.
func Else(primary, backup Finder) Finder {
	f := WithBackup(primary, backup)
	f.Exclusive = true
	return f
}

// OptionalKey matches by the key attribute when the node carries it and a
// counterpart exists; otherwise it defers to backup.
func OptionalKey(key string, backup Finder) Finder {
	return WithBackup(ByKey(key), backup)
}

// Subject is the node to match together with its ordinal among the same-tag
// children of its own parent.
type Subject struct {
	Node    *tree.Node
	Ordinal int
}

// Scope is the parent whose children are searched. Skip, when set, hides
// children (by index) that were already claimed by another match.
type Scope struct {
	Parent *tree.Node
	Skip   func(i int) bool
}

func (s Scope) skip(i int) bool {
	return s.Skip != nil && s.Skip(i)
}

// Result is the outcome of a find. Node is nil when nothing matched.
type Result struct {
	Node *tree.Node
	// Index is the position of Node among the scope's children, or -1.
	Index int
	// Candidates is the number of equally valid candidates found. The first in
	// document order is chosen when there is more than one.
	Candidates int
	// By is the kind of the finder that produced the match.
	By Kind
}

// Found reports whether a counterpart was found.
func (r Result) Found() bool {
	return r.Node != nil
}

// Duplicate reports whether more than one candidate qualified.
func (r Result) Duplicate() bool {
	return r.Candidates > 1
}

var none = Result{Index: -1}

// Find returns the child of scope corresponding to subject.
func (f Finder) Find(subject Subject, scope Scope) Result {
	if subject.Node == nil || scope.Parent == nil {
		return none
	}
	switch f.Kind {
	case KindKey:
		return f.findByKey(subject, scope)
	case KindPosition:
		return findByPosition(subject, scope)
	case KindSameContent:
		return findBySameContent(subject, scope)
	case KindWithBackup:
		if f.Primary != nil {
			res := f.Primary.Find(subject, scope)
			if res.Found() {
				return res
			}
			if _, keyed := f.Primary.KeyOf(subject.Node); keyed && f.Exclusive {
				return res
			}
		}
		if f.Backup != nil {
			return f.Backup.Find(subject, scope)
		}
		return none
	default:
		panic(fmt.Sprintf("match: unknown finder kind %q", f.Kind))
	}
}

func (f Finder) findByKey(subject Subject, scope Scope) Result {
	values, ok := f.keyValues(subject.Node)
	if !ok {
		return none
	}
	res := none
	node := subject.Node
	for i := 0; i < scope.Parent.Len(); i++ {
		c := scope.Parent.Child(i)
		if c.Tag() != node.Tag() || scope.skip(i) {
			continue
		}
		if !f.hasKeyValues(c, values) {
			continue
		}
		if res.Node == nil {
			res = Result{Node: c, Index: i, By: KindKey}
		}
		res.Candidates++
	}
	return res
}

func findByPosition(subject Subject, scope Scope) Result {
	tag := subject.Node.Tag()
	ord := 0
	for i := 0; i < scope.Parent.Len(); i++ {
		c := scope.Parent.Child(i)
		if c.Tag() != tag {
			continue
		}
		if ord == subject.Ordinal {
			if scope.skip(i) {
				return none
			}
			return Result{Node: c, Index: i, Candidates: 1, By: KindPosition}
		}
		ord++
	}
	return none
}

func findBySameContent(subject Subject, scope Scope) Result {
	res := none
	for i := 0; i < scope.Parent.Len(); i++ {
		c := scope.Parent.Child(i)
		if scope.skip(i) || !tree.Equal(c, subject.Node) {
			continue
		}
		if res.Node == nil {
			res = Result{Node: c, Index: i, By: KindSameContent}
		}
		res.Candidates++
	}
	return res
}

func (f Finder) keyValues(n *tree.Node) ([]string, bool) {
	if len(f.Keys) == 0 {
		return nil, false
	}
	values := make([]string, len(f.Keys))
	for i, k := range f.Keys {
		v, ok := n.Attr(k)
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

func (f Finder) hasKeyValues(n *tree.Node, values []string) bool {
	for i, k := range f.Keys {
		v, ok := n.Attr(k)
		if !ok || v != values[i] {
			return false
		}
	}
	return true
}

// KeyOf extracts the identity key a finder would use for n. Position and
// content finders have no key. For a backup chain the first finder yielding a
// key wins.
func (f Finder) KeyOf(n *tree.Node) (string, bool) {
	switch f.Kind {
	case KindKey:
		values, ok := f.keyValues(n)
		if !ok {
			return "", false
		}
		parts := make([]string, len(values))
		for i := range values {
			parts[i] = f.Keys[i] + "=" + values[i]
		}
		return strings.Join(parts, ","), true
	case KindWithBackup:
		if f.Primary != nil {
			if k, ok := f.Primary.KeyOf(n); ok {
				return k, true
			}
		}
		if f.Backup != nil {
			return f.Backup.KeyOf(n)
		}
	}
	return "", false
}

// Query describes how n would be looked up among its siblings, XPath style.
// It is empty when the finder has no natural query form.
func (f Finder) Query(n *tree.Node) string {
	switch f.Kind {
	case KindKey:
		values, ok := f.keyValues(n)
		if !ok {
			return ""
		}
		preds := make([]string, len(values))
		for i := range values {
			preds[i] = fmt.Sprintf("@%s=%s", f.Keys[i], quote(values[i]))
		}
		return n.Tag() + "[" + strings.Join(preds, " and ") + "]"
	case KindSameContent:
		return n.Tag()
	case KindWithBackup:
		if f.Primary != nil {
			if q := f.Primary.Query(n); q != "" {
				return q
			}
		}
		if f.Backup != nil {
			return f.Backup.Query(n)
		}
	}
	return ""
}

// DuplicateMessage returns a warning text for a parent holding more than one
// candidate for n, or the empty string when the finder cannot produce
// duplicates.
func (f Finder) DuplicateMessage(n *tree.Node) string {
	switch f.Kind {
	case KindKey:
		if k, ok := f.KeyOf(n); ok {
			return fmt.Sprintf("more than one <%s> with %s; using the first", n.Tag(), k)
		}
	case KindSameContent:
		return fmt.Sprintf("more than one identical <%s>; using the first", n.Tag())
	case KindWithBackup:
		if f.Primary != nil {
			if m := f.Primary.DuplicateMessage(n); m != "" {
				return m
			}
		}
		if f.Backup != nil {
			return f.Backup.DuplicateMessage(n)
		}
	}
	return ""
}

// String describes the finder chain, e.g. "key(id) > key(guid) > position"
// or, for Else chains, "key(id) else position".
func (f Finder) String() string {
	switch f.Kind {
	case KindKey:
		return "key(" + strings.Join(f.Keys, "+") + ")"
	case KindWithBackup:
		var parts []string
		if f.Primary != nil {
			parts = append(parts, f.Primary.String())
		}
		if f.Backup != nil {
			parts = append(parts, f.Backup.String())
		}
		if f.Exclusive {
			return strings.Join(parts, " else ")
		}
		return strings.Join(parts, " > ")
	default:
		return string(f.Kind)
	}
}

func quote(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}
