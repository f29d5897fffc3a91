package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/rules"
)

const goodRule = `---
category: security
description: Flags unchecked errors
focus_type: method
applies_to:
  file_patterns:
    - "*.go"
  exclude_patterns:
    - "*_test.go"
grep:
  any:
    - "err :="
---

Always check returned errors.
`

const skippedRule = `> **SKIPPED:** temporarily disabled pending rewrite.
`

const badRule = `---
category: &anchor security
---

body
`

func writeRule(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_ParsesFrontmatterAndSkipsMarked(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "errors.md", goodRule)
	writeRule(t, dir, "disabled.md", skippedRule)

	loaded, err := rules.Load(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	r := loaded[0]
	assert.Equal(t, "errors", r.Name)
	assert.Equal(t, "security", r.Category)
	assert.Equal(t, domain.FocusMethod, r.FocusType)
	require.NotNil(t, r.AppliesTo)
	assert.Equal(t, []string{"*.go"}, r.AppliesTo.FilePatterns)
	assert.Equal(t, []string{"*_test.go"}, r.AppliesTo.ExcludePatterns)
	require.NotNil(t, r.GrepConfig)
	assert.Equal(t, []string{"err :="}, r.GrepConfig.Any)
	assert.Contains(t, r.Content, "Always check returned errors.")
}

func TestLoad_RejectsOutOfSubsetConstruct(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "bad.md", badRule)

	_, err := rules.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line")
}

func TestCompiledRule_AppliesToFile(t *testing.T) {
	r := domain.Rule{
		Name: "go-errors",
		AppliesTo: &domain.AppliesTo{
			FilePatterns:    []string{"**/*.go"},
			ExcludePatterns: []string{"*_test.go"},
		},
	}
	c, err := rules.Compile(r)
	require.NoError(t, err)

	assert.True(t, c.AppliesToFile("internal/rules/loader.go"))
	assert.False(t, c.AppliesToFile("internal/rules/loader_test.go"))
	assert.False(t, c.AppliesToFile("internal/rules/notgo.txt"))
}

func TestCompiledRule_MatchesDiffContent(t *testing.T) {
	r := domain.Rule{
		GrepConfig: &domain.Grep{
			All: []string{"^func "},
			Any: []string{"error", "panic"},
		},
	}
	c, err := rules.Compile(r)
	require.NoError(t, err)

	assert.True(t, c.MatchesDiffContent("func f() {\n\treturn error\n}"))
	assert.False(t, c.MatchesDiffContent("func f() {\n\treturn nil\n}"))
	assert.False(t, c.MatchesDiffContent("var x = error"))
}
