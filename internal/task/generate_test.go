package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/rules"
	"github.com/prradar/pipeline/internal/task"
)

func compile(t *testing.T, r domain.Rule) rules.CompiledRule {
	t.Helper()
	c, err := rules.Compile(r)
	require.NoError(t, err)
	return c
}

func TestGenerate_MatchesFocusTypeAndPath(t *testing.T) {
	fileRule := compile(t, domain.Rule{
		Name:      "no-todo",
		FocusType: domain.FocusFile,
		AppliesTo: &domain.AppliesTo{FilePatterns: []string{"*.go"}},
	})
	methodRule := compile(t, domain.Rule{
		Name:      "method-length",
		FocusType: domain.FocusMethod,
	})

	areas := []domain.FocusArea{
		{FocusID: "aaaa1111", FilePath: "main.go", FocusType: domain.FocusFile, HunkContent: "1: foo()\n"},
		{FocusID: "bbbb2222", FilePath: "main.go", FocusType: domain.FocusMethod, HunkContent: "1: foo()\n"},
	}

	tasks := task.Generate([]rules.CompiledRule{fileRule, methodRule}, areas)
	require.Len(t, tasks, 2)
	assert.Equal(t, "no-todo_aaaa1111", tasks[0].TaskID)
	assert.Equal(t, "method-length_bbbb2222", tasks[1].TaskID)
}

func TestGenerate_ExcludesNonMatchingPath(t *testing.T) {
	r := compile(t, domain.Rule{
		Name:      "go-only",
		FocusType: domain.FocusFile,
		AppliesTo: &domain.AppliesTo{FilePatterns: []string{"*.py"}},
	})
	areas := []domain.FocusArea{
		{FocusID: "id1", FilePath: "main.go", FocusType: domain.FocusFile},
	}

	tasks := task.Generate([]rules.CompiledRule{r}, areas)
	assert.Empty(t, tasks)
}
