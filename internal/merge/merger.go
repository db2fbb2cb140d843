package merge

import (
	"fmt"
	"log/slog"

	"github.com/klauern/lexmerge/internal/logging"
	"github.com/klauern/lexmerge/internal/match"
	"github.com/klauern/lexmerge/internal/report"
	"github.com/klauern/lexmerge/internal/strategy"
	"github.com/klauern/lexmerge/internal/tree"
)

// merger walks one ancestor/ours/theirs triple. It is used for a single
// merge and then discarded.
type merger struct {
	reg    *strategy.Registry
	rep    *report.Reporter
	logger *slog.Logger

	reportDefault bool
	defaulted     map[string]bool
}

func newMerger(reg *strategy.Registry, opts Options) *merger {
	logger := logging.Or(opts.Logger)
	return &merger{
		reg:           reg,
		rep:           report.NewReporter(logger),
		logger:        logger,
		reportDefault: opts.ReportDefaultStrategy,
		defaulted:     make(map[string]bool),
	}
}

// strategyFor resolves tag, recording a warning the first time an
// unregistered tag is met when asked to.
func (m *merger) strategyFor(p tree.Path, tag string) strategy.ElementStrategy {
	s, ok := m.reg.Resolve(tag)
	if ok || !m.reportDefault || m.defaulted[tag] {
		return s
	}
	m.defaulted[tag] = true
	m.rep.Record(report.Record{
		Kind:        report.KindDefaultStrategyWarning,
		Path:        p,
		Description: fmt.Sprintf("no strategy registered for <%s>; using %s with %s", tag, s.Finder, s.Policy),
		Resolution:  report.ResolutionDefault,
	})
	return s
}

// mergeNode merges three present versions of the same element.
func (m *merger) mergeNode(p tree.Path, ancestor, ours, theirs *tree.Node) *tree.Node {
	switch {
	case tree.Equal(ours, ancestor):
		return theirs
	case tree.Equal(theirs, ancestor), tree.Equal(ours, theirs):
		return ours
	}

	s := m.strategyFor(p, ancestor.Tag())
	if s.Atomic {
		return m.mergeAtomic(p, s, ancestor, ours, theirs)
	}

	attrs := m.mergeAttrs(p, s, ancestor, ours, theirs)
	text := m.mergeText(p, s, ancestor, ours, theirs)
	children := m.mergeChildren(p, ancestor, ours, theirs)

	if text.Present && len(children) > 0 {
		text, children = m.resolveContent(p, s, ours, theirs, text, children)
	}
	if text.Present {
		return tree.NewText(ancestor.Tag(), attrs, text.Text)
	}
	return tree.New(ancestor.Tag(), attrs, children...)
}

func (m *merger) mergeAtomic(p tree.Path, s strategy.ElementStrategy, ancestor, ours, theirs *tree.Node) *tree.Node {
	res := pickResolution(s.Policy)
	m.rep.Record(report.Record{
		Kind:        report.KindAtomicConflict,
		Path:        p,
		Description: fmt.Sprintf("<%s> changed differently on both sides", ancestor.Tag()),
		Ancestor:    report.Subtree(ancestor),
		Ours:        report.Subtree(ours),
		Theirs:      report.Subtree(theirs),
		Resolution:  res,
		Review:      s.Policy.NeedsReview(),
	})
	return strategy.Pick(s.Policy, ours, theirs)
}

// mergeAttrs merges attributes in ancestor order, then attributes new in
// ours, then attributes new in theirs.
func (m *merger) mergeAttrs(p tree.Path, s strategy.ElementStrategy, ancestor, ours, theirs *tree.Node) []tree.Attr {
	var names []string
	seen := make(map[string]bool)
	for _, n := range []*tree.Node{ancestor, ours, theirs} {
		for _, a := range n.Attrs() {
			if !seen[a.Name] {
				seen[a.Name] = true
				names = append(names, a.Name)
			}
		}
	}

	var out []tree.Attr
	for _, name := range names {
		av := report.Optional(ancestor.Attr(name))
		ov := report.Optional(ours.Attr(name))
		tv := report.Optional(theirs.Attr(name))

		var v report.Value
		switch o := classify(av, ov, tv, sameValue); o {
		case conflicted:
			v = strategy.Pick(s.Policy, ov, tv)
			m.rep.Record(report.Record{
				Kind:        report.KindAttributeConflict,
				Path:        p,
				Description: describeValueConflict(fmt.Sprintf("attribute %q of <%s>", name, ancestor.Tag()), av, ov, tv),
				Ancestor:    av,
				Ours:        ov,
				Theirs:      tv,
				Resolution:  pickResolution(s.Policy),
				Review:      s.Policy.NeedsReview(),
			})
		default:
			v = resolve(o, ov, tv)
		}
		if v.Present {
			out = append(out, tree.Attr{Name: name, Value: v.Text})
		}
	}
	return out
}

func (m *merger) mergeText(p tree.Path, s strategy.ElementStrategy, ancestor, ours, theirs *tree.Node) report.Value {
	av := report.Optional(ancestor.Text())
	ov := report.Optional(ours.Text())
	tv := report.Optional(theirs.Text())

	o := classify(av, ov, tv, sameValue)
	if o != conflicted {
		return resolve(o, ov, tv)
	}
	what := fmt.Sprintf("text of <%s>", ancestor.Tag())
	if ancestor.IsText() {
		what = "character data"
	}
	m.rep.Record(report.Record{
		Kind:        report.KindTextConflict,
		Path:        p,
		Description: describeValueConflict(what, av, ov, tv),
		Ancestor:    av,
		Ours:        ov,
		Theirs:      tv,
		Resolution:  pickResolution(s.Policy),
		Review:      s.Policy.NeedsReview(),
	})
	return strategy.Pick(s.Policy, ov, tv)
}

// resolveContent handles an element that ended up with both text and child
// elements because one side replaced its children with text and the other
// changed the children, or the reverse. The shape of the side chosen by the
// policy wins.
func (m *merger) resolveContent(p tree.Path, s strategy.ElementStrategy, ours, theirs *tree.Node, text report.Value, children []*tree.Node) (report.Value, []*tree.Node) {
	m.rep.Record(report.Record{
		Kind:        report.KindTextConflict,
		Path:        p,
		Description: fmt.Sprintf("<%s> has text on one side and child elements on the other", ours.Tag()),
		Ours:        report.Subtree(ours),
		Theirs:      report.Subtree(theirs),
		Resolution:  pickResolution(s.Policy),
		Review:      s.Policy.NeedsReview(),
	})
	chosen := strategy.Pick(s.Policy, ours, theirs)
	if _, ok := chosen.Text(); ok {
		return text, nil
	}
	return report.Absent(), children
}

// side is one revision's children with a claim per child.
type side struct {
	role    tree.Role
	parent  *tree.Node
	claimed []bool
}

func newSide(role tree.Role, parent *tree.Node) *side {
	return &side{role: role, parent: parent, claimed: make([]bool, parent.Len())}
}

// find locates subject among the unclaimed children of s, recording a
// duplicate warning when several qualify, and claims the match.
func (m *merger) find(p tree.Path, f match.Finder, subject match.Subject, s *side, skip func(int) bool) int {
	scope := match.Scope{
		Parent: s.parent,
		Skip: func(i int) bool {
			return s.claimed[i] || (skip != nil && skip(i))
		},
	}
	res := f.Find(subject, scope)
	if !res.Found() {
		return -1
	}
	if res.Duplicate() {
		msg := f.DuplicateMessage(subject.Node)
		if msg == "" {
			msg = fmt.Sprintf("more than one candidate for <%s>; using the first", subject.Node.Tag())
		}
		m.rep.Record(report.Record{
			Kind:        report.KindDuplicateMatchWarning,
			Path:        p,
			Description: fmt.Sprintf("%s (%s, %d candidates)", msg, s.role, res.Candidates),
			Resolution:  report.ResolutionFirstMatch,
		})
	}
	s.claimed[res.Index] = true
	return res.Index
}

type addition struct {
	index int // in ours
	pos   int // in the merged children
}

// mergeChildren walks the ancestor's children in order, then appends the
// children only ours added, then those only theirs added.
func (m *merger) mergeChildren(p tree.Path, ancestor, ours, theirs *tree.Node) []*tree.Node {
	ourSide := newSide(tree.RoleOurs, ours)
	theirSide := newSide(tree.RoleTheirs, theirs)
	var out []*tree.Node

	for i := 0; i < ancestor.Len(); i++ {
		ac := ancestor.Child(i)
		ord := ancestor.Ordinal(i)
		cp := p.Child(ac.Tag(), ord+1)
		s := m.strategyFor(cp, ac.Tag())
		subject := match.Subject{Node: ac, Ordinal: ord}

		oi := m.find(cp, s.Finder, subject, ourSide, nil)
		ti := m.find(cp, s.Finder, subject, theirSide, nil)
		switch {
		case oi < 0 && ti < 0:
			m.logger.Debug("deleted on both sides", logging.Node(cp))
		case oi < 0:
			if kept := m.deleteEdit(cp, s, ac, theirs.Child(ti), tree.RoleOurs); kept != nil {
				out = append(out, kept)
			}
		case ti < 0:
			if kept := m.deleteEdit(cp, s, ac, ours.Child(oi), tree.RoleTheirs); kept != nil {
				out = append(out, kept)
			}
		default:
			out = append(out, m.mergeNode(cp, ac, ours.Child(oi), theirs.Child(ti)))
		}
	}

	var added []addition
	isAddition := make(map[int]bool)
	for j := 0; j < ours.Len(); j++ {
		if ourSide.claimed[j] {
			continue
		}
		added = append(added, addition{index: j, pos: len(out)})
		isAddition[j] = true
		out = append(out, ours.Child(j))
	}

	// Pair theirs additions against ours additions only.
	pairs := newSide(tree.RoleOurs, ours)
	notAdded := func(j int) bool { return !isAddition[j] }
	for k := 0; k < theirs.Len(); k++ {
		if theirSide.claimed[k] {
			continue
		}
		tc := theirs.Child(k)
		ord := theirs.Ordinal(k)
		cp := p.Child(tc.Tag(), ord+1)
		s := m.strategyFor(cp, tc.Tag())

		j := -1
		if len(added) > 0 {
			j = m.find(cp, s.Finder, match.Subject{Node: tc, Ordinal: ord}, pairs, notAdded)
		}
		if j < 0 {
			out = append(out, tc)
			continue
		}
		oc := ours.Child(j)
		if tree.Equal(oc, tc) {
			continue
		}
		op := p.Child(oc.Tag(), ours.Ordinal(j)+1)
		m.rep.Record(report.Record{
			Kind:        report.KindIndependentAdditionConflict,
			Path:        op,
			Description: fmt.Sprintf("both sides added %s with different content", label(s.Finder, tc)),
			Ancestor:    report.Absent(),
			Ours:        report.Subtree(oc),
			Theirs:      report.Subtree(tc),
			Resolution:  pickResolution(s.Policy),
			Review:      s.Policy.NeedsReview(),
		})
		if s.Policy.TakesTheirs() {
			for _, a := range added {
				if a.index == j {
					out[a.pos] = tc
					break
				}
			}
		}
	}
	return out
}

// deleteEdit handles an ancestor child that one side deleted. It returns the
// surviving version, or nil when the other side left it unchanged.
func (m *merger) deleteEdit(p tree.Path, s strategy.ElementStrategy, ancestor, survivor *tree.Node, deletedBy tree.Role) *tree.Node {
	if tree.Equal(ancestor, survivor) {
		return nil
	}
	rec := report.Record{
		Kind:        report.KindDeleteEditConflict,
		Path:        p,
		Description: fmt.Sprintf("%s was deleted by %s and edited by %s", label(s.Finder, ancestor), deletedBy, other(deletedBy)),
		Ancestor:    report.Subtree(ancestor),
		Resolution:  report.ResolutionKeptEdit,
	}
	if deletedBy == tree.RoleOurs {
		rec.Ours, rec.Theirs = report.Absent(), report.Subtree(survivor)
	} else {
		rec.Ours, rec.Theirs = report.Subtree(survivor), report.Absent()
	}
	m.rep.Record(rec)
	return survivor
}

func other(r tree.Role) tree.Role {
	if r == tree.RoleOurs {
		return tree.RoleTheirs
	}
	return tree.RoleOurs
}

// label names n for messages, by its finder query when it has one.
func label(f match.Finder, n *tree.Node) string {
	if q := f.Query(n); q != "" && q != n.Tag() {
		return q
	}
	return "<" + n.Tag() + ">"
}

func pickResolution(p strategy.Policy) report.Resolution {
	if p.TakesTheirs() {
		return report.ResolutionTheirs
	}
	return report.ResolutionOurs
}

func describeValueConflict(what string, ancestor, ours, theirs report.Value) string {
	switch {
	case !ours.Present:
		return fmt.Sprintf("%s removed by ours, changed by theirs", what)
	case !theirs.Present:
		return fmt.Sprintf("%s changed by ours, removed by theirs", what)
	case !ancestor.Present:
		return fmt.Sprintf("%s added differently on both sides", what)
	default:
		return fmt.Sprintf("%s changed differently on both sides", what)
	}
}
