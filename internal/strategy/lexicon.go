package strategy

import (
	"github.com/klauern/lexmerge/internal/match"
	"github.com/klauern/lexmerge/internal/tree"
)

// IdentityFinder matches by id, by guid when there is no id, and by position
// among same-tag siblings when there is neither.
func IdentityFinder() match.Finder {
	return keyElse("id", keyElse("guid", match.ByPosition()))
}

func keyElse(key string, backup match.Finder) match.Finder {
	return match.Else(match.ByKey(key), backup)
}

// Lexicon returns the preset for LIFT-style dictionary documents.
func Lexicon() *Registry {
	lang := keyElse("lang", match.ByPosition())
	review := PolicyReportAndPickOne

	return NewBuilder().
		Keyed("lift", match.ByPosition(), review).
		Keyed("header", match.ByPosition(), review).
		Keyed("ranges", match.ByPosition(), review).
		Keyed("range", IdentityFinder(), review).
		Keyed("range-element", IdentityFinder(), review).
		Keyed("fields", match.ByPosition(), review).
		Keyed("entry", IdentityFinder(), review).
		Keyed("sense", IdentityFinder(), review).
		Keyed("subsense", IdentityFinder(), review).
		Keyed("example", keyElse("id", keyElse("source", match.ByPosition())), review).
		Keyed("lexical-unit", match.ByPosition(), review).
		Keyed("citation", match.ByPosition(), review).
		Keyed("definition", match.ByPosition(), review).
		Keyed("translation", keyElse("type", match.ByPosition()), review).
		Keyed("grammatical-info", match.ByPosition(), review).
		Keyed("variant", keyElse("ref", match.ByPosition()), review).
		Keyed("form", lang, review).
		Keyed("gloss", lang, review).
		Keyed("label", lang, review).
		Keyed("description", lang, review).
		Keyed("trait", match.Else(match.ByKey("name", "value"), match.ByPosition()), review).
		Keyed("annotation", match.Else(match.ByKey("name", "value"), match.ByPosition()), review).
		Keyed("field", keyElse("type", match.ByPosition()), review).
		Keyed("note", keyElse("type", match.ByPosition()), review).
		Keyed("relation", match.Else(match.ByKey("type", "ref"), match.ByPosition()), review).
		Keyed("etymology", match.Else(match.ByKey("type", "source"), match.ByPosition()), review).
		Atomic("pronunciation", match.ByPosition(), review).
		Atomic("media", keyElse("href", match.ByPosition()), review).
		Atomic("illustration", keyElse("href", match.ByPosition()), review).
		Keyed(tree.TextTag, match.ByPosition(), review).
		MustBuild()
}

// presets maps the names accepted by Preset to their constructors.
var presets = map[string]func() *Registry{
	"lexicon": Lexicon,
	"empty":   func() *Registry { return NewBuilder().MustBuild() },
}

// Preset returns the named built-in registry.
func Preset(name string) (*Registry, bool) {
	f, ok := presets[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// PresetNames returns the built-in registry names.
func PresetNames() []string {
	return []string{"empty", "lexicon"}
}
