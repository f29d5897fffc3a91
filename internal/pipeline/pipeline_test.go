package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/adapter/oracle/static"
	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/effective"
	"github.com/prradar/pipeline/internal/evaluate"
	"github.com/prradar/pipeline/internal/pipeline"
	"github.com/prradar/pipeline/internal/report"
	"github.com/prradar/pipeline/internal/sequencer"
)

const sampleDiff = `diff --git a/main.go b/main.go
index 111..222 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main

+// comment
 func main() {}
`

type fixtureOracle struct {
	diffText   string
	targetHash string
	baseHash   string
}

func (f fixtureOracle) CumulativeDiff(baseRef, targetRef string) (string, string, error) {
	return f.diffText, f.targetHash, nil
}

func (f fixtureOracle) ResolveCommit(ref string) (string, error) {
	if ref == "base" {
		return f.baseHash, nil
	}
	return f.targetHash, nil
}

func (f fixtureOracle) FileContents(commitHash, path string) (string, error) {
	return "", nil
}

type noopRediff struct{}

func (noopRediff) Rediff(ctx context.Context, oldText, newText, oldLabel, newLabel string) (string, error) {
	return "", nil
}

func writeRuleFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestPipeline_FullAnalyzeRun(t *testing.T) {
	outputRoot := t.TempDir()
	rulesDir := t.TempDir()

	writeRuleFile(t, rulesDir, "comments.md", `---
focus_type: file
category: style
description: Flag added comments
applies_to:
  file_patterns: ["*.go"]
---
Added comments should explain why, not what.
`)

	l := sequencer.NewLayout(outputRoot, "example-repo", 42)
	oracle := fixtureOracle{diffText: sampleDiff, targetHash: "target123", baseHash: "base456"}

	_, err := sequencer.Run(context.Background(), l, domain.PhasePullRequest,
		pipeline.RunDiffPhase(l, oracle, noopRediff{}, pipeline.DiffOptions{BaseRef: "base", TargetRef: "target"}),
		sequencer.Options{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, sequencer.Status(l, domain.PhasePullRequest))

	_, err = sequencer.Run(context.Background(), l, domain.PhaseFocusAreas,
		pipeline.RunFocusAreasPhase(l, nil), sequencer.Options{})
	require.NoError(t, err)

	_, err = sequencer.Run(context.Background(), l, domain.PhaseRules,
		pipeline.RunRulesLoadPhase(l, rulesDir), sequencer.Options{})
	require.NoError(t, err)

	_, err = sequencer.Run(context.Background(), l, domain.PhaseTasks,
		pipeline.RunTasksPhase(l), sequencer.Options{})
	require.NoError(t, err)

	oneHalf := 8
	staticOracle := static.New("static-model", func(req evaluate.Request) (domain.RuleEvaluation, error) {
		return domain.RuleEvaluation{ViolatesRule: true, Score: oneHalf, Comment: "explain the why", FilePath: req.FilePath}, nil
	})
	_, err = sequencer.Run(context.Background(), l, domain.PhaseEvaluations,
		pipeline.RunEvaluatePhase(l, staticOracle, 2, nil), sequencer.Options{})
	require.NoError(t, err)

	_, err = sequencer.Run(context.Background(), l, domain.PhaseReport,
		pipeline.RunReportPhase(l, report.Options{}), sequencer.Options{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, sequencer.Status(l, domain.PhaseReport))

	rpt, err := pipeline.LoadReport(l)
	require.NoError(t, err)
	require.NotEmpty(t, rpt.Violations)
	assert.Equal(t, 8, rpt.Violations[0].Score)

	comments, err := pipeline.BuildComments(l)
	require.NoError(t, err)
	require.Len(t, comments, len(rpt.Violations))

	statuses := pipeline.Status(l)
	require.Len(t, statuses, 6)
	assert.Equal(t, domain.PhaseReport, statuses[len(statuses)-1].Phase)
	assert.Equal(t, domain.StatusComplete, statuses[len(statuses)-1].Status)
}

func TestPipeline_TasksPhase_RejectsWhenRulesMissing(t *testing.T) {
	l := sequencer.NewLayout(t.TempDir(), "repo", 1)
	require.NoError(t, os.MkdirAll(l.Dir(domain.PhaseRules), 0o755))

	_, err := pipeline.RunTasksPhase(l)(context.Background())
	assert.Error(t, err)
}

var _ effective.RediffOracle = noopRediff{}
