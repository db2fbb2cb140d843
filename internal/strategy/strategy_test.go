package strategy

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/klauern/lexmerge/internal/match"
)

func TestPolicy_IsValid(t *testing.T) {
	tests := []struct {
		policy Policy
		want   bool
	}{
		{PolicyPreferOurs, true},
		{PolicyPreferTheirs, true},
		{PolicyReportAndPickOne, true},
		{Policy("prefer-newest"), false},
		{Policy(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			if got := tt.policy.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicy_Pick(t *testing.T) {
	tests := map[Policy]string{
		PolicyPreferOurs:       "ours",
		PolicyPreferTheirs:     "theirs",
		PolicyReportAndPickOne: "ours",
	}
	for p, want := range tests {
		if got := Pick(p, "ours", "theirs"); got != want {
			t.Errorf("Pick(%s) = %q, want %q", p, got, want)
		}
	}
	if !PolicyReportAndPickOne.NeedsReview() || PolicyPreferTheirs.NeedsReview() {
		t.Error("only report-and-pick-one needs review")
	}
}

func TestAllPolicies(t *testing.T) {
	for _, p := range AllPolicies() {
		if !p.IsValid() {
			t.Errorf("AllPolicies() contains invalid %q", p)
		}
		if p.Description() == "Unknown policy" {
			t.Errorf("%q has no description", p)
		}
	}
}

func TestRegistry_Resolve(t *testing.T) {
	reg, err := NewBuilder().
		Keyed("entry", match.ByKey("id"), PolicyPreferOurs).
		Atomic("media", match.ByPosition(), PolicyPreferTheirs).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	s, ok := reg.Resolve("entry")
	if !ok || s.Finder.Kind != match.KindKey || s.Policy != PolicyPreferOurs || s.Atomic {
		t.Errorf("Resolve(entry) = %+v, %v", s, ok)
	}
	s, ok = reg.Resolve("media")
	if !ok || !s.Atomic {
		t.Errorf("Resolve(media) = %+v, %v", s, ok)
	}
	s, ok = reg.Resolve("unknown")
	if ok {
		t.Error("unknown tag should report ok == false")
	}
	if diff := cmp.Diff(Default(), s); diff != "" {
		t.Errorf("fallback mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"entry", "media"}, reg.Tags()); diff != "" {
		t.Errorf("Tags() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_Errors(t *testing.T) {
	_, err := NewBuilder().
		Set("1bad", Default()).
		Set("entry", ElementStrategy{Finder: match.ByKey(), Policy: PolicyPreferOurs}).
		Set("sense", ElementStrategy{Finder: match.ByPosition(), Policy: "newest"}).
		SetDefault(ElementStrategy{Finder: match.Finder{Kind: "fuzzy"}, Policy: PolicyPreferOurs}).
		Build()
	if err == nil {
		t.Fatal("Build() should fail")
	}
	for _, want := range []string{`"1bad"`, `"entry"`, `"sense"`, "default strategy"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestRegistry_Immutable(t *testing.T) {
	b := NewBuilder().Keyed("entry", match.ByKey("id"), PolicyPreferOurs)
	reg := b.MustBuild()
	b.Keyed("sense", match.ByKey("id"), PolicyPreferOurs)

	if _, ok := reg.Resolve("sense"); ok {
		t.Error("registry changed after Build")
	}

	extended := From(reg).Keyed("sense", match.ByKey("id"), PolicyPreferOurs).MustBuild()
	if _, ok := reg.Resolve("sense"); ok {
		t.Error("From should not share state with its source")
	}
	if extended.Len() != 2 {
		t.Errorf("extended Len() = %d, want 2", extended.Len())
	}
}

func TestRegistry_ConcurrentResolve(t *testing.T) {
	reg := Lexicon()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, tag := range reg.Tags() {
				if _, ok := reg.Resolve(tag); !ok {
					t.Errorf("Resolve(%s) not found", tag)
				}
			}
		}()
	}
	wg.Wait()
}

func TestLexicon(t *testing.T) {
	reg := Lexicon()

	tests := map[string]struct {
		finder string
		atomic bool
	}{
		"entry":         {finder: "key(id) else key(guid) else position"},
		"sense":         {finder: "key(id) else key(guid) else position"},
		"gloss":         {finder: "key(lang) else position"},
		"trait":         {finder: "key(name+value) else position"},
		"relation":      {finder: "key(type+ref) else position"},
		"pronunciation": {finder: "position", atomic: true},
		"#text":         {finder: "position"},
	}
	for tag, tt := range tests {
		t.Run(tag, func(t *testing.T) {
			s, ok := reg.Resolve(tag)
			if !ok {
				t.Fatalf("%s not registered", tag)
			}
			if s.Finder.String() != tt.finder {
				t.Errorf("finder = %s, want %s", s.Finder, tt.finder)
			}
			if s.Atomic != tt.atomic {
				t.Errorf("Atomic = %v, want %v", s.Atomic, tt.atomic)
			}
		})
	}
}

func TestLoadTOML(t *testing.T) {
	const doc = `
[default]
policy = "prefer-theirs"

[elements.entry]
policy = "prefer-ours"

[elements.custom]
finder = "key(code) > same-content"

[elements.media]
atomic = false
`
	reg, err := LoadTOML(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	entry, _ := reg.Resolve("entry")
	if entry.Policy != PolicyPreferOurs || entry.Finder.String() != "key(id) else key(guid) else position" {
		t.Errorf("entry = %s %s, want base finder with prefer-ours", entry.Finder, entry.Policy)
	}
	custom, ok := reg.Resolve("custom")
	if !ok || custom.Finder.String() != "key(code) > same-content" {
		t.Errorf("custom = %s, %v", custom.Finder, ok)
	}
	if custom.Policy != PolicyPreferTheirs {
		t.Errorf("custom policy = %s, want the file default", custom.Policy)
	}
	if media, _ := reg.Resolve("media"); media.Atomic {
		t.Error("media should have been made mergeable")
	}
	if reg.Default().Policy != PolicyPreferTheirs {
		t.Errorf("default policy = %s", reg.Default().Policy)
	}
}

func TestLoadTOML_Errors(t *testing.T) {
	tests := map[string]string{
		"syntax":      "[elements.entry\n",
		"bad finder":  "[elements.entry]\nfinder = \"fuzzy\"\n",
		"bad policy":  "[elements.entry]\npolicy = \"newest\"\n",
		"bad base":    "base = \"nope\"\n",
		"unknown key": "[elements.entry]\nmatcher = \"position\"\n",
		"bad tag":     "[elements.\"1x\"]\npolicy = \"prefer-ours\"\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadTOML(strings.NewReader(doc)); err == nil {
				t.Errorf("LoadTOML() should fail for:\n%s", doc)
			}
		})
	}
}

func TestLoadTOML_EmptyBase(t *testing.T) {
	reg, err := LoadTOML(strings.NewReader("base = \"empty\"\n[elements.row]\nfinder = \"key(n)\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"row"}, reg.Tags()); diff != "" {
		t.Errorf("Tags() mismatch (-want +got):\n%s", diff)
	}
}
