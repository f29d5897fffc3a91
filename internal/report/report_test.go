package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/report"
)

func ptr(i int) *int { return &i }

func costPtr(f float64) *float64 { return &f }

func TestBuild_FiltersByScoreAndStatus(t *testing.T) {
	results := []domain.RuleEvaluationResult{
		domain.Success("t1", "no-todo", "a.go", domain.RuleEvaluation{ViolatesRule: true, Score: 9, Comment: "bad", FilePath: "a.go", LineNumber: ptr(10)}, "m1", 5, costPtr(0.01)),
		domain.Success("t2", "no-todo", "b.go", domain.RuleEvaluation{ViolatesRule: true, Score: 3, Comment: "minor", FilePath: "b.go", LineNumber: ptr(1)}, "m1", 5, nil),
		domain.Success("t3", "style", "a.go", domain.RuleEvaluation{ViolatesRule: false, Score: 0, FilePath: "a.go"}, "m1", 5, nil),
		domain.Failure("t4", "style", "c.go", "timeout", "m1"),
	}

	rep := report.Build(results, nil, report.Options{MinScore: 5})

	require.Len(t, rep.Violations, 1)
	assert.Equal(t, "t1", rep.Violations[0].TaskID)
	assert.Equal(t, 4, rep.Summary.TotalTasks)
	assert.Equal(t, 3, rep.Summary.TotalSuccesses)
	assert.Equal(t, 1, rep.Summary.TotalFailures)
	assert.Equal(t, 1, rep.Summary.ViolationsFound)
	assert.Equal(t, 1, rep.Summary.BySeverity["Severe"])
	assert.InDelta(t, 0.01, rep.Summary.TotalCostUSD, 0.0001)
}

func TestBuild_SortsByScoreThenFileThenLineThenRule(t *testing.T) {
	results := []domain.RuleEvaluationResult{
		domain.Success("t1", "rule-b", "b.go", domain.RuleEvaluation{ViolatesRule: true, Score: 8, FilePath: "b.go", LineNumber: ptr(5)}, "m", 0, nil),
		domain.Success("t2", "rule-a", "a.go", domain.RuleEvaluation{ViolatesRule: true, Score: 8, FilePath: "a.go", LineNumber: ptr(5)}, "m", 0, nil),
		domain.Success("t3", "rule-a", "a.go", domain.RuleEvaluation{ViolatesRule: true, Score: 9, FilePath: "a.go", LineNumber: ptr(1)}, "m", 0, nil),
	}

	rep := report.Build(results, nil, report.Options{MinScore: 5})
	require.Len(t, rep.Violations, 3)
	assert.Equal(t, "t3", rep.Violations[0].TaskID)
	assert.Equal(t, "t2", rep.Violations[1].TaskID)
	assert.Equal(t, "t1", rep.Violations[2].TaskID)
}

func TestRenderMarkdown_IncludesViolationsAndSeverity(t *testing.T) {
	rep := report.Build([]domain.RuleEvaluationResult{
		domain.Success("t1", "no-todo", "a.go", domain.RuleEvaluation{ViolatesRule: true, Score: 9, Comment: "fix it", FilePath: "a.go", LineNumber: ptr(3)}, "m1", 0, nil),
	}, nil, report.Options{})

	md := report.RenderMarkdown(rep)
	assert.Contains(t, md, "no-todo")
	assert.Contains(t, md, "Severe")
	assert.Contains(t, md, "fix it")
}

func TestFormatComment_IncludesSkillAndDocs(t *testing.T) {
	v := domain.Violation{
		RuleName: "no-todo",
		RuleURL:  "https://example.com/rules/no-todo",
		Comment:  "Remove the TODO before merging.",
		Skill:    "go-review",
		DocLink:  "https://example.com/docs",
		CostUSD:  0.0123,
		ModelUsed: "m1",
	}
	out := report.FormatComment(v)
	assert.Contains(t, out, "[no-todo](https://example.com/rules/no-todo)")
	assert.Contains(t, out, "Remove the TODO before merging.")
	assert.Contains(t, out, "Related Claude Skill: `/go-review`")
	assert.Contains(t, out, "Related Documentation: [Docs](https://example.com/docs)")
	assert.Contains(t, out, "cost $0.0123")
}

func TestFormatComment_OmitsRuleURLWhenAbsent(t *testing.T) {
	v := domain.Violation{RuleName: "no-todo", Comment: "x"}
	out := report.FormatComment(v)
	assert.Contains(t, out, "**no-todo**")
}
