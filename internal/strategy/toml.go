package strategy

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/klauern/lexmerge/internal/match"
)

// fileConfig is the on-disk registry description:
//
//	base = "lexicon"
//
//	[default]
//	finder = "position"
//	policy = "report-and-pick-one"
//
//	[elements.entry]
//	finder = "key(id) > key(guid) > position"
//	policy = "prefer-ours"
//
//	[elements.media]
//	atomic = true
//
// Fields left out of an element table keep the value of the base
// registration, or of the default strategy for tags the base does not know.
type fileConfig struct {
	Base     string                   `toml:"base"`
	Default  elementConfig            `toml:"default"`
	Elements map[string]elementConfig `toml:"elements"`
}

type elementConfig struct {
	Finder string `toml:"finder"`
	Policy string `toml:"policy"`
	Atomic bool   `toml:"atomic"`
}

// LoadTOML reads a registry description.
func LoadTOML(r io.Reader) (*Registry, error) {
	var raw fileConfig
	meta, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("decode strategies: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("decode strategies: unknown keys %s", strings.Join(keys, ", "))
	}

	base := "lexicon"
	if meta.IsDefined("base") {
		base = strings.TrimSpace(raw.Base)
	}
	reg, ok := Preset(base)
	if !ok {
		return nil, fmt.Errorf("unknown base registry %q (known: %s)", base, strings.Join(PresetNames(), ", "))
	}
	b := From(reg)

	if meta.IsDefined("default") {
		s, err := applyElement(reg.Default(), raw.Default, meta, "default")
		if err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		b.SetDefault(s)
	}

	tags := make([]string, 0, len(raw.Elements))
	for tag := range raw.Elements {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	for _, tag := range tags {
		start, known := reg.Resolve(tag)
		if !known {
			start = b.def
		}
		s, err := applyElement(start, raw.Elements[tag], meta, "elements", tag)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", tag, err)
		}
		b.Set(tag, s)
	}

	return b.Build()
}

// LoadTOMLFile reads a registry description from path.
func LoadTOMLFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open strategies: %w", err)
	}
	defer func() { _ = f.Close() }()

	reg, err := LoadTOML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

func applyElement(s ElementStrategy, raw elementConfig, meta toml.MetaData, key ...string) (ElementStrategy, error) {
	defined := func(field string) bool {
		return meta.IsDefined(append(slices.Clone(key), field)...)
	}
	if defined("finder") {
		f, err := match.Parse(raw.Finder)
		if err != nil {
			return s, err
		}
		s.Finder = f
	}
	if defined("policy") {
		p := Policy(strings.TrimSpace(raw.Policy))
		if !p.IsValid() {
			return s, fmt.Errorf("invalid policy %q", raw.Policy)
		}
		s.Policy = p
	}
	if defined("atomic") {
		s.Atomic = raw.Atomic
	}
	return s, nil
}
