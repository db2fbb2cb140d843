package tree

import "fmt"

// Role identifies which revision a document plays in a three-way merge.
type Role string

const (
	// RoleAncestor is the common ancestor of both edits.
	RoleAncestor Role = "ancestor"

	// RoleOurs is the local edit.
	RoleOurs Role = "ours"

	// RoleTheirs is the incoming edit.
	RoleTheirs Role = "theirs"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	switch r {
	case RoleAncestor, RoleOurs, RoleTheirs:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// Document is a snapshot of one revision for the duration of a merge.
type Document struct {
	Role Role
	Root *Node
	// Name optionally identifies the source (a file name) in logs and errors.
	Name string
}

// NewDocument returns a document snapshot.
func NewDocument(role Role, root *Node) Document {
	return Document{Role: role, Root: root}
}

func (d Document) String() string {
	if d.Name != "" {
		return fmt.Sprintf("%s (%s)", d.Role, d.Name)
	}
	return string(d.Role)
}
