// Package report records the conflicts and warnings found while merging.
package report

// Class separates records that need a decision from informational ones.
type Class string

const (
	// ClassConflict marks a disagreement resolved by policy. A merge with
	// conflicts should not be committed without review.
	ClassConflict Class = "conflict"

	// ClassWarning marks an ambiguity resolved deterministically without
	// losing data.
	ClassWarning Class = "warning"
)

func (c Class) String() string {
	return string(c)
}

// Kind is the closed set of record kinds.
type Kind string

const (
	// KindAttributeConflict: both sides changed an attribute differently.
	KindAttributeConflict Kind = "attribute-conflict"

	// KindTextConflict: both sides changed an element's text differently.
	KindTextConflict Kind = "text-conflict"

	// KindAtomicConflict: both sides changed an atomic element differently.
	KindAtomicConflict Kind = "atomic-conflict"

	// KindDeleteEditConflict: one side deleted an element the other edited.
	KindDeleteEditConflict Kind = "delete-edit-conflict"

	// KindIndependentAdditionConflict: both sides added an element with the
	// same identity but different content.
	KindIndependentAdditionConflict Kind = "independent-addition-conflict"

	// KindDuplicateMatchWarning: more than one sibling qualified as the
	// counterpart of an element.
	KindDuplicateMatchWarning Kind = "duplicate-match-warning"

	// KindDefaultStrategyWarning: an element had no registered strategy.
	KindDefaultStrategyWarning Kind = "default-strategy-warning"
)

// AllKinds returns every record kind, conflicts first.
func AllKinds() []Kind {
	return []Kind{
		KindAttributeConflict,
		KindTextConflict,
		KindAtomicConflict,
		KindDeleteEditConflict,
		KindIndependentAdditionConflict,
		KindDuplicateMatchWarning,
		KindDefaultStrategyWarning,
	}
}

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	switch k {
	case KindAttributeConflict, KindTextConflict, KindAtomicConflict, KindDeleteEditConflict,
		KindIndependentAdditionConflict, KindDuplicateMatchWarning, KindDefaultStrategyWarning:
		return true
	default:
		return false
	}
}

// Class returns whether records of this kind are conflicts or warnings.
func (k Kind) Class() Class {
	switch k {
	case KindDuplicateMatchWarning, KindDefaultStrategyWarning:
		return ClassWarning
	default:
		return ClassConflict
	}
}

func (k Kind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k Kind) Description() string {
	switch k {
	case KindAttributeConflict:
		return "Both sides changed an attribute differently"
	case KindTextConflict:
		return "Both sides changed the text differently"
	case KindAtomicConflict:
		return "Both sides changed an element that is replaced as a whole"
	case KindDeleteEditConflict:
		return "One side deleted what the other edited"
	case KindIndependentAdditionConflict:
		return "Both sides added the same element with different content"
	case KindDuplicateMatchWarning:
		return "More than one candidate matched; the first was used"
	case KindDefaultStrategyWarning:
		return "No strategy registered; the default was used"
	default:
		return "Unknown kind"
	}
}
