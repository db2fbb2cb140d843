package merge

import (
	"errors"
	"fmt"

	"github.com/klauern/lexmerge/internal/tree"
)

var (
	// ErrMalformed reports a snapshot that is not a well-formed tree.
	ErrMalformed = tree.ErrMalformed

	// ErrRootMismatch reports snapshots whose root elements differ.
	ErrRootMismatch = errors.New("root element mismatch")

	// ErrMissingSnapshot reports a snapshot without a root.
	ErrMissingSnapshot = errors.New("missing snapshot")

	// ErrRoleMismatch reports a snapshot passed in the wrong position.
	ErrRoleMismatch = errors.New("snapshot role mismatch")
)

// PreconditionError is returned when a snapshot fails the checks made before
// merging. No partial result accompanies it.
type PreconditionError struct {
	Role tree.Role
	// Name is the document name, when the snapshot carried one.
	Name string
	Err  error
}

func (e *PreconditionError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s snapshot %s: %v", e.Role, e.Name, e.Err)
	}
	return fmt.Sprintf("%s snapshot: %v", e.Role, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// IsPrecondition reports whether err is a precondition failure.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

func checkPreconditions(ancestor, ours, theirs tree.Document) error {
	docs := []struct {
		doc  tree.Document
		role tree.Role
	}{
		{ancestor, tree.RoleAncestor},
		{ours, tree.RoleOurs},
		{theirs, tree.RoleTheirs},
	}
	for _, d := range docs {
		fail := func(err error) error {
			return &PreconditionError{Role: d.role, Name: d.doc.Name, Err: err}
		}
		if d.doc.Role != "" && d.doc.Role != d.role {
			return fail(fmt.Errorf("%w: got %s", ErrRoleMismatch, d.doc.Role))
		}
		if d.doc.Root == nil {
			return fail(ErrMissingSnapshot)
		}
		if err := tree.Validate(d.doc.Root); err != nil {
			return fail(err)
		}
	}
	want := ancestor.Root.Tag()
	for _, d := range docs[1:] {
		if got := d.doc.Root.Tag(); got != want {
			return &PreconditionError{
				Role: d.role,
				Name: d.doc.Name,
				Err:  fmt.Errorf("%w: <%s>, ancestor has <%s>", ErrRootMismatch, got, want),
			}
		}
	}
	return nil
}
