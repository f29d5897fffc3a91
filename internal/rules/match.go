package rules

import (
	"regexp"

	"github.com/prradar/pipeline/internal/domain"
)

// CompiledRule pairs a domain.Rule with its compiled glob and regex
// matchers, built once per rule load rather than per evaluated file.
type CompiledRule struct {
	domain.Rule

	include globSet
	exclude globSet
	grepAll []*regexp.Regexp
	grepAny []*regexp.Regexp
}

// Compile builds a CompiledRule, pre-compiling every glob and regex the
// rule's AppliesTo/GrepConfig reference.
func Compile(r domain.Rule) (CompiledRule, error) {
	c := CompiledRule{Rule: r}

	if r.AppliesTo != nil {
		include, err := compileGlobSet(r.AppliesTo.FilePatterns)
		if err != nil {
			return CompiledRule{}, err
		}
		exclude, err := compileGlobSet(r.AppliesTo.ExcludePatterns)
		if err != nil {
			return CompiledRule{}, err
		}
		c.include = include
		c.exclude = exclude
	}

	if r.GrepConfig != nil {
		all, err := compileRegexList(r.GrepConfig.All)
		if err != nil {
			return CompiledRule{}, err
		}
		any_, err := compileRegexList(r.GrepConfig.Any)
		if err != nil {
			return CompiledRule{}, err
		}
		c.grepAll = all
		c.grepAny = any_
	}

	return c, nil
}

// CompileAll compiles every rule, stopping at the first compilation error.
func CompileAll(rs []domain.Rule) ([]CompiledRule, error) {
	out := make([]CompiledRule, 0, len(rs))
	for _, r := range rs {
		c, err := Compile(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func compileRegexList(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?m)" + p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

// AppliesToFile reports whether path is selected by the rule's glob
// filters. Exclusion takes precedence over inclusion; empty/absent
// pattern lists match everything.
func (c CompiledRule) AppliesToFile(path string) bool {
	if !c.exclude.empty() && c.exclude.matchAny(path) {
		return false
	}
	return c.include.matchAny(path)
}

// MatchesDiffContent reports whether text satisfies the rule's grep
// constraint: every "all" pattern must match and, if any "any" patterns
// are configured, at least one of them must match too.
func (c CompiledRule) MatchesDiffContent(text string) bool {
	for _, re := range c.grepAll {
		if !re.MatchString(text) {
			return false
		}
	}
	if len(c.grepAny) == 0 {
		return true
	}
	for _, re := range c.grepAny {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Applies is the combined applicability predicate from §4.5:
// applies_to_file(path) ∧ matches_diff_content(diffText).
func (c CompiledRule) Applies(path, diffText string) bool {
	return c.AppliesToFile(path) && c.MatchesDiffContent(diffText)
}
