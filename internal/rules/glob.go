package rules

import (
	"regexp"
	"strings"
)

// compileGlob turns one path-glob pattern into an anchored regular
// expression. `**` matches zero or more path components, `*` matches any
// run of non-`/` characters, and `?` matches exactly one non-`/` character.
// A pattern with no `/` is matched against the basename only; a pattern
// containing `/` is matched against the full path.
func compileGlob(pattern string) (*regexp.Regexp, bool, error) {
	basenameOnly := !strings.Contains(pattern, "/")

	var sb strings.Builder
	sb.WriteString("^")
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				i++
				// "**/" matches zero or more whole leading path components,
				// so "**/x" also matches "x" at the root.
				if i+1 < len(runes) && runes[i+1] == '/' {
					sb.WriteString("(?:.*/)?")
					i++
				} else {
					sb.WriteString(".*")
				}
			} else {
				sb.WriteString("[^/]*")
			}
		case '?':
			sb.WriteString("[^/]")
		case '.', '+', '(', ')', '|', '^', '$', '{', '}', '[', ']', '\\':
			sb.WriteString(regexp.QuoteMeta(string(c)))
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, false, err
	}
	return re, basenameOnly, nil
}

// globSet is a compiled list of glob patterns.
type globSet struct {
	patterns []compiledGlob
}

type compiledGlob struct {
	re           *regexp.Regexp
	basenameOnly bool
}

func compileGlobSet(patterns []string) (globSet, error) {
	gs := globSet{}
	for _, p := range patterns {
		re, basenameOnly, err := compileGlob(p)
		if err != nil {
			return globSet{}, err
		}
		gs.patterns = append(gs.patterns, compiledGlob{re: re, basenameOnly: basenameOnly})
	}
	return gs, nil
}

// matchAny reports whether path (or its basename, depending on each
// pattern's form) matches at least one pattern in the set. An empty set
// matches everything.
func (gs globSet) matchAny(path string) bool {
	if len(gs.patterns) == 0 {
		return true
	}
	base := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		base = path[idx+1:]
	}
	for _, p := range gs.patterns {
		target := path
		if p.basenameOnly {
			target = base
		}
		if p.re.MatchString(target) {
			return true
		}
	}
	return false
}

func (gs globSet) empty() bool {
	return len(gs.patterns) == 0
}
