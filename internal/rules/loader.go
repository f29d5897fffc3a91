// Package rules implements C5: discovering the rule corpus on disk and
// filtering it against a changed file's path and diff content. Rule files
// are either markdown with `---`-delimited YAML frontmatter (grounded on
// alanmeadows-otto's store.ReadDocument, using adrg/frontmatter for
// delimiter splitting only) or a `.json` serialization of domain.Rule.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prradar/pipeline/internal/domain"
)

// skipMarker mirrors bkyoung's skip-detector idiom (a leading sentinel
// string triggers exclusion) but operates on rule bodies instead of PR
// descriptions.
const skipMarker = "> **SKIPPED:**"

// Load walks dir and returns every non-skipped rule it finds, sorted by
// name for deterministic phase output.
func Load(dir string) ([]domain.Rule, error) {
	var out []domain.Rule

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".markdown" && ext != ".json" {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		name := strings.TrimSuffix(rel, ext)
		name = filepath.ToSlash(name)

		var rule domain.Rule
		var loadErr error
		if ext == ".json" {
			rule, loadErr = loadJSONRule(path, name)
		} else {
			rule, loadErr = loadMarkdownRule(path, name)
		}
		if loadErr != nil {
			return fmt.Errorf("loading rule %s: %w", rel, loadErr)
		}
		if rule.Skipped {
			return nil
		}
		out = append(out, rule)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func loadJSONRule(path, name string) (domain.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Rule{}, err
	}
	var rule domain.Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return domain.Rule{}, err
	}
	rule.Name = name
	if strings.HasPrefix(strings.TrimSpace(rule.Content), skipMarker) {
		rule.Skipped = true
	}
	return rule, nil
}

func loadMarkdownRule(path, name string) (domain.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Rule{}, err
	}

	fm, body, err := splitFrontmatter(string(data))
	if err != nil {
		return domain.Rule{}, err
	}

	rule := domain.Rule{
		Name:    name,
		Content: strings.TrimSpace(body),
	}
	if strings.HasPrefix(rule.Content, skipMarker) {
		rule.Skipped = true
		return rule, nil
	}

	applyFrontmatter(&rule, fm)
	return rule, nil
}

func applyFrontmatter(rule *domain.Rule, fm map[string]any) {
	if fm == nil {
		return
	}
	if v, ok := fm["category"].(string); ok {
		rule.Category = v
	}
	if v, ok := fm["description"].(string); ok {
		rule.Description = v
	}
	if v, ok := fm["focus_type"].(string); ok {
		rule.FocusType = domain.FocusType(v)
	}
	if v, ok := fm["model"].(string); ok {
		rule.Model = v
	}
	if v, ok := fm["documentation_link"].(string); ok {
		rule.DocumentationLink = v
	}
	if v, ok := fm["rule_url"].(string); ok {
		rule.RuleURL = v
	}
	if v, ok := fm["skill"].(string); ok {
		rule.Skill = v
	}
	if v, ok := fm["applies_to"].(map[string]any); ok {
		at := &domain.AppliesTo{
			FilePatterns:    toStringSlice(v["file_patterns"]),
			ExcludePatterns: toStringSlice(v["exclude_patterns"]),
		}
		rule.AppliesTo = at
	}
	if v, ok := fm["grep"].(map[string]any); ok {
		rule.GrepConfig = &domain.Grep{
			All: toStringSlice(v["all"]),
			Any: toStringSlice(v["any"]),
		}
	}
}

func toStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
