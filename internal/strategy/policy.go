// Package strategy maps element tag names to the rules used to merge them.
package strategy

// Policy decides which side wins when both sides changed the same value to
// different results.
type Policy string

const (
	// PolicyPreferOurs keeps the local value.
	PolicyPreferOurs Policy = "prefer-ours"

	// PolicyPreferTheirs takes the incoming value.
	PolicyPreferTheirs Policy = "prefer-theirs"

	// PolicyReportAndPickOne keeps the local value and flags the decision for
	// review.
	PolicyReportAndPickOne Policy = "report-and-pick-one"
)

// IsValid returns true if the policy is recognized.
func (p Policy) IsValid() bool {
	switch p {
	case PolicyPreferOurs, PolicyPreferTheirs, PolicyReportAndPickOne:
		return true
	default:
		return false
	}
}

// AllPolicies returns all supported conflict policies.
func AllPolicies() []Policy {
	return []Policy{PolicyPreferOurs, PolicyPreferTheirs, PolicyReportAndPickOne}
}

// String returns the string representation of the policy.
func (p Policy) String() string {
	return string(p)
}

// Description returns a human-readable description of the policy.
func (p Policy) Description() string {
	switch p {
	case PolicyPreferOurs:
		return "Keep our value when both sides changed it"
	case PolicyPreferTheirs:
		return "Take their value when both sides changed it"
	case PolicyReportAndPickOne:
		return "Keep our value and flag the conflict for review"
	default:
		return "Unknown policy"
	}
}

// TakesTheirs reports whether the policy resolves a conflict in favor of the
// incoming side.
func (p Policy) TakesTheirs() bool {
	return p == PolicyPreferTheirs
}

// NeedsReview reports whether conflicts resolved by the policy should be
// looked at by a person.
func (p Policy) NeedsReview() bool {
	return p == PolicyReportAndPickOne
}

// Pick returns ours or theirs as the policy dictates.
func Pick[T any](p Policy, ours, theirs T) T {
	if p.TakesTheirs() {
		return theirs
	}
	return ours
}
