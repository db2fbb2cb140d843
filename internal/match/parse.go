package match

import (
	"fmt"
	"strings"

	"github.com/klauern/lexmerge/internal/tree"
)

// Parse reads the form produced by Finder.String:
//
//	position
//	same-content
//	key(id)
//	key(name+value)
//	key(id) > key(guid) > position
//	key(lang) else position
//
// Chains nest to the right: a > b else c is WithBackup(a, Else(b, c)).
func Parse(s string) (Finder, error) {
	var (
		finders   []Finder
		exclusive []bool
	)
	rest := s
	for {
		part, sep, next, more := cutSeparator(rest)
		f, err := parseOne(strings.TrimSpace(part))
		if err != nil {
			return Finder{}, fmt.Errorf("finder %q: %w", s, err)
		}
		finders = append(finders, f)
		if !more {
			break
		}
		exclusive = append(exclusive, sep == "else")
		rest = next
	}

	res := finders[len(finders)-1]
	for i := len(finders) - 2; i >= 0; i-- {
		if exclusive[i] {
			res = Else(finders[i], res)
		} else {
			res = WithBackup(finders[i], res)
		}
	}
	return res, nil
}

// cutSeparator splits s at the first ">" or "else" outside parentheses.
func cutSeparator(s string) (before, sep, after string, found bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth > 0:
		case c == '>':
			return s[:i], ">", s[i+1:], true
		case isElseAt(s, i):
			return s[:i], "else", s[i+len("else"):], true
		}
	}
	return s, "", "", false
}

func isElseAt(s string, i int) bool {
	if !strings.HasPrefix(s[i:], "else") {
		return false
	}
	if i > 0 && s[i-1] != ' ' && s[i-1] != ')' {
		return false
	}
	end := i + len("else")
	return end == len(s) || s[end] == ' ' || s[end] == '\t'
}

func parseOne(s string) (Finder, error) {
	switch s {
	case "":
		return Finder{}, fmt.Errorf("empty finder")
	case string(KindPosition):
		return ByPosition(), nil
	case string(KindSameContent):
		return BySameContent(), nil
	}
	rest, ok := strings.CutPrefix(s, "key(")
	if !ok || !strings.HasSuffix(rest, ")") {
		return Finder{}, fmt.Errorf("unknown finder %q", s)
	}
	rest = strings.TrimSuffix(rest, ")")
	var keys []string
	for k := range strings.SplitSeq(rest, "+") {
		k = strings.TrimSpace(k)
		if !tree.IsName(k) {
			return Finder{}, fmt.Errorf("invalid key attribute %q", k)
		}
		keys = append(keys, k)
	}
	return ByKey(keys...), nil
}
