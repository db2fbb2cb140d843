package merge

import "github.com/klauern/lexmerge/internal/report"

// outcome classifies a three-way comparison of one value.
type outcome int

const (
	unchanged outcome = iota
	oursChanged
	theirsChanged
	converged
	conflicted
)

func classify[T any](ancestor, ours, theirs T, equal func(a, b T) bool) outcome {
	oursSame := equal(ancestor, ours)
	theirsSame := equal(ancestor, theirs)
	switch {
	case oursSame && theirsSame:
		return unchanged
	case oursSame:
		return theirsChanged
	case theirsSame:
		return oursChanged
	case equal(ours, theirs):
		return converged
	default:
		return conflicted
	}
}

func sameValue(a, b report.Value) bool {
	return a == b
}

// resolve picks the merged value for a non-conflicting outcome.
func resolve[T any](o outcome, ours, theirs T) T {
	if o == theirsChanged {
		return theirs
	}
	return ours
}
