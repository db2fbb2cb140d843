package strategy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/klauern/lexmerge/internal/match"
	"github.com/klauern/lexmerge/internal/tree"
)

// ElementStrategy holds the merge rules for one element tag.
type ElementStrategy struct {
	// Finder locates an element's counterpart among the children of the
	// corresponding parent in another revision.
	Finder match.Finder

	// Policy resolves attribute, text and atomic conflicts.
	Policy Policy

	// Atomic elements are compared and replaced as a whole subtree; their
	// children are never merged individually.
	Atomic bool
}

// Default returns the strategy used for tags without a registration:
// positional matching, report-and-pick-one, children merged.
func Default() ElementStrategy {
	return ElementStrategy{
		Finder: match.ByPosition(),
		Policy: PolicyReportAndPickOne,
	}
}

// Validate checks that the strategy is usable.
func (s ElementStrategy) Validate() error {
	if !s.Policy.IsValid() {
		return fmt.Errorf("invalid policy %q", s.Policy)
	}
	return validateFinder(s.Finder)
}

func validateFinder(f match.Finder) error {
	switch f.Kind {
	case match.KindKey:
		if len(f.Keys) == 0 {
			return errors.New("key finder without key attributes")
		}
		for _, k := range f.Keys {
			if !tree.IsName(k) {
				return fmt.Errorf("invalid key attribute %q", k)
			}
		}
	case match.KindPosition, match.KindSameContent:
	case match.KindWithBackup:
		if f.Primary == nil || f.Backup == nil {
			return errors.New("backup finder needs a primary and a backup")
		}
		if err := validateFinder(*f.Primary); err != nil {
			return err
		}
		return validateFinder(*f.Backup)
	default:
		return fmt.Errorf("unknown finder kind %q", f.Kind)
	}
	return nil
}

// Registry resolves element tags to strategies. A Registry is immutable once
// built and safe for concurrent use.
type Registry struct {
	byTag map[string]ElementStrategy
	def   ElementStrategy
}

// Resolve returns the strategy registered for tag, or the default strategy
// with ok == false.
func (r *Registry) Resolve(tag string) (ElementStrategy, bool) {
	if s, ok := r.byTag[tag]; ok {
		return s, true
	}
	return r.def, false
}

// Default returns the fallback strategy.
func (r *Registry) Default() ElementStrategy {
	return r.def
}

// Tags returns the registered tag names in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Len returns the number of registered tags.
func (r *Registry) Len() int {
	return len(r.byTag)
}

// Builder assembles a Registry. The zero value is not usable; call NewBuilder.
type Builder struct {
	byTag map[string]ElementStrategy
	def   ElementStrategy
	errs  []error
}

// NewBuilder returns a builder with no registrations and the Default fallback.
func NewBuilder() *Builder {
	return &Builder{
		byTag: make(map[string]ElementStrategy),
		def:   Default(),
	}
}

// From returns a builder seeded with the registrations of r.
func From(r *Registry) *Builder {
	b := NewBuilder()
	for tag, s := range r.byTag {
		b.byTag[tag] = s
	}
	b.def = r.def
	return b
}

// Set registers s for tag, replacing an earlier registration.
func (b *Builder) Set(tag string, s ElementStrategy) *Builder {
	if tag != tree.TextTag && !tree.IsName(tag) {
		b.errs = append(b.errs, fmt.Errorf("tag %q: invalid element name", tag))
		return b
	}
	if err := s.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("tag %q: %w", tag, err))
		return b
	}
	b.byTag[tag] = s
	return b
}

// Keyed registers a mergeable element matched by the given finder.
func (b *Builder) Keyed(tag string, f match.Finder, p Policy) *Builder {
	return b.Set(tag, ElementStrategy{Finder: f, Policy: p})
}

// Atomic registers an element replaced as a whole subtree.
func (b *Builder) Atomic(tag string, f match.Finder, p Policy) *Builder {
	return b.Set(tag, ElementStrategy{Finder: f, Policy: p, Atomic: true})
}

// SetDefault replaces the fallback strategy.
func (b *Builder) SetDefault(s ElementStrategy) *Builder {
	if err := s.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("default strategy: %w", err))
		return b
	}
	b.def = s
	return b
}

// Build returns the registry, or every registration error joined.
func (b *Builder) Build() (*Registry, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	byTag := make(map[string]ElementStrategy, len(b.byTag))
	for tag, s := range b.byTag {
		byTag[tag] = s
	}
	return &Registry{byTag: byTag, def: b.def}, nil
}

// MustBuild is like Build but panics on error. Use it for registries built
// from constants.
func (b *Builder) MustBuild() *Registry {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}
