package evaluate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/evaluate"
	"github.com/prradar/pipeline/internal/fsutil"
)

func tasks(n int) []domain.EvaluationTask {
	out := make([]domain.EvaluationTask, n)
	for i := 0; i < n; i++ {
		out[i] = domain.EvaluationTask{
			TaskID: fmt.Sprintf("rule_%d", i),
			Rule:   domain.TaskRule{Name: "rule", Model: "test-model"},
			FocusArea: domain.FocusArea{
				FocusID:  fmt.Sprintf("focus%d", i),
				FilePath: "main.go",
			},
		}
	}
	return out
}

type fakeOracle struct {
	violatesAt map[int]bool
	calls      []string
}

func (f *fakeOracle) Evaluate(_ context.Context, req evaluate.Request) (domain.RuleEvaluation, string, *float64, error) {
	f.calls = append(f.calls, req.FilePath)
	return domain.RuleEvaluation{ViolatesRule: false, Score: 1, Comment: "ok", FilePath: req.FilePath}, "test-model", nil, nil
}

func TestRun_WritesResultsAndCallsProgress(t *testing.T) {
	dir := t.TempDir()
	oracle := &fakeOracle{}
	var progressCalls int

	results, err := evaluate.Run(context.Background(), tasks(3), oracle, evaluate.Options{
		Workers:   2,
		OutputDir: dir,
		OnProgress: func(index, total int, result domain.RuleEvaluationResult) {
			progressCalls++
			assert.Equal(t, 3, total)
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 3, progressCalls)
	for _, r := range results {
		assert.True(t, r.IsSuccess())
		assert.True(t, fsutil.Exists(dir+"/"+r.TaskID+".json"))
	}
}

func TestRun_ResumesCompletedTasks(t *testing.T) {
	dir := t.TempDir()
	existing := domain.Success("rule_0", "rule", "main.go", domain.RuleEvaluation{Score: 9}, "prior-model", 0, nil)
	require.NoError(t, fsutil.WriteJSON(dir+"/rule_0.json", existing))

	oracle := &fakeOracle{}
	results, err := evaluate.Run(context.Background(), tasks(2), oracle, evaluate.Options{OutputDir: dir})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "prior-model", results[0].ModelUsed)
	assert.Equal(t, []string{"main.go"}, oracle.calls)
}

type failingOracle struct{}

func (failingOracle) Evaluate(_ context.Context, req evaluate.Request) (domain.RuleEvaluation, string, *float64, error) {
	return domain.RuleEvaluation{}, "test-model", nil, errors.New("model unavailable")
}

func TestRun_FailureIsolation(t *testing.T) {
	results, err := evaluate.Run(context.Background(), tasks(2), failingOracle{}, evaluate.Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, domain.ResultFailure, r.Status)
		assert.Equal(t, "model unavailable", r.ErrorMessage)
	}
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := evaluate.Run(ctx, tasks(2), &fakeOracle{}, evaluate.Options{})
	require.ErrorIs(t, err, evaluate.ErrCancelled)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, domain.ResultFailure, r.Status)
		assert.Equal(t, "cancelled", r.ErrorMessage)
	}
}
