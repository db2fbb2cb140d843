// Package merge implements the three-way merge of element trees.
//
// Merge walks the ancestor, ours and theirs snapshots in lockstep. At every
// level it asks the strategy registry how to identify children and how to
// settle disagreements, and it records each conflict or ambiguity instead of
// failing. Only snapshots that fail the structural checks made before the walk
// produce an error.
//
// Children matched to an ancestor child keep the ancestor's order. Children
// added on either side are appended after them, ours first.
package merge

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/klauern/lexmerge/internal/logging"
	"github.com/klauern/lexmerge/internal/report"
	"github.com/klauern/lexmerge/internal/strategy"
	"github.com/klauern/lexmerge/internal/tree"
)

// Options tunes a merge.
type Options struct {
	// ReportDefaultStrategy records a warning the first time an element with
	// no registered strategy is merged.
	ReportDefaultStrategy bool

	// Logger receives debug output. Nil uses the default logger.
	Logger *slog.Logger
}

// Result is the outcome of one merge. It is owned by the caller.
type Result struct {
	// Root is the merged document root.
	Root *tree.Node

	// Records lists conflicts and warnings in discovery order: depth first,
	// following the ancestor's order.
	Records []report.Record
}

// Merge merges ours and theirs against their common ancestor using the
// strategies in reg. A nil reg merges every element with the default
// strategy. Inputs are never modified.
func Merge(reg *strategy.Registry, ancestor, ours, theirs tree.Document, opts Options) (*Result, error) {
	if err := checkPreconditions(ancestor, ours, theirs); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = strategy.NewBuilder().MustBuild()
	}

	logger := logging.Or(opts.Logger)
	if ours.Name != "" {
		logger = logger.With(logging.Document(ours.Name))
	}
	opts.Logger = logger
	timer := logging.StartTimer(logger, "merge")

	m := newMerger(reg, opts)
	root := m.mergeNode(tree.Root(ancestor.Root.Tag()), ancestor.Root, ours.Root, theirs.Root)
	res := &Result{Root: root, Records: m.rep.Records()}

	timer.Stop(
		slog.Int("conflicts", len(res.Conflicts())),
		slog.Int("warnings", len(res.Warnings())),
	)
	return res, nil
}

// Conflicts returns the conflict records.
func (r *Result) Conflicts() []report.Record {
	return report.Filter(r.Records, report.ClassConflict)
}

// Warnings returns the warning records.
func (r *Result) Warnings() []report.Record {
	return report.Filter(r.Records, report.ClassWarning)
}

// HasConflicts reports whether any conflict was recorded. A workflow should
// not commit such a result without review.
func (r *Result) HasConflicts() bool {
	for _, rec := range r.Records {
		if rec.IsConflict() {
			return true
		}
	}
	return false
}

// NeedsReview reports whether any record was resolved by a placeholder
// choice.
func (r *Result) NeedsReview() bool {
	for _, rec := range r.Records {
		if rec.Review {
			return true
		}
	}
	return false
}

// Notes returns the records as a notes document.
func (r *Result) Notes() *tree.Node {
	return report.Notes(r.Records)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	var sb strings.Builder
	conflicts := r.Conflicts()
	warnings := r.Warnings()

	fmt.Fprintf(&sb, "Merged <%s> (%d nodes)\n", r.Root.Tag(), r.Root.Size())
	fmt.Fprintf(&sb, "  Conflicts: %d\n", len(conflicts))
	fmt.Fprintf(&sb, "  Warnings:  %d\n", len(warnings))

	if len(conflicts) > 0 {
		counts := report.CountByKind(conflicts)
		sb.WriteString("\nConflicts by kind:\n")
		for _, k := range report.AllKinds() {
			if n := counts[k]; n > 0 {
				fmt.Fprintf(&sb, "  - %s: %d\n", k, n)
			}
		}
	}
	if r.NeedsReview() {
		sb.WriteString("\nSome conflicts were resolved provisionally and need review.\n")
	}
	return sb.String()
}
