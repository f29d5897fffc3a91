// Package evaluate implements C7: dispatching one model-oracle request per
// EvaluationTask through a bounded worker pool, with resume-on-restart and
// per-task failure isolation. The pool is grounded on maruel-md's
// parallelDescribe: an errgroup.Group with SetLimit writing into a
// pre-sized, index-addressed results slice.
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/fsutil"
)

// ErrCancelled is the sentinel error_message recorded on the phase result
// when the run is cancelled mid-flight.
var ErrCancelled = errors.New("cancelled")

// Request is what the evaluator hands to the model oracle for one task.
type Request struct {
	Prompt       string
	Model        string
	FilePath     string
	StartLine    int
	EndLine      int
	OutputSchema map[string]any
}

// Oracle evaluates one task against the external model. costUSD is nil when
// the oracle's response carried no cost figure; §9 treats cost reporting as
// best-effort and the summary sums only present values.
type Oracle interface {
	Evaluate(ctx context.Context, req Request) (eval domain.RuleEvaluation, model string, costUSD *float64, err error)
}

// ProgressFunc is the per-task completion hook: (index, total, result).
type ProgressFunc func(index, total int, result domain.RuleEvaluationResult)

// Options configures a Run.
type Options struct {
	// Workers bounds in-flight tasks. Zero defaults to 1 (strict ordering,
	// cost visibility — the spec's default).
	Workers int
	// OutputDir is where <task_id>.json result files are read (for resume)
	// and written.
	OutputDir string
	OnProgress ProgressFunc
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return 1
	}
	return o.Workers
}

// Run evaluates every task not already resolved by a prior run, writing
// each result atomically to <OutputDir>/<task_id>.json. It returns every
// result (resumed and freshly computed) in enqueue order.
func Run(ctx context.Context, tasks []domain.EvaluationTask, oracle Oracle, opts Options) ([]domain.RuleEvaluationResult, error) {
	results := make([]domain.RuleEvaluationResult, len(tasks))
	pending := make([]int, 0, len(tasks))

	for i, t := range tasks {
		if existing, ok := loadExisting(opts.OutputDir, t.TaskID); ok {
			results[i] = existing
			continue
		}
		pending = append(pending, i)
	}

	total := len(tasks)
	if opts.OnProgress != nil {
		for i := range tasks {
			if results[i].TaskID != "" {
				opts.OnProgress(i, total, results[i])
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for _, idx := range pending {
		idx := idx
		t := tasks[idx]
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[idx] = domain.Failure(t.TaskID, t.Rule.Name, t.FocusArea.FilePath, ErrCancelled.Error(), t.Rule.Model)
				return nil
			default:
			}

			result := evaluateOne(gctx, t, oracle)
			results[idx] = result

			if opts.OutputDir != "" {
				if err := fsutil.WriteJSON(resultPath(opts.OutputDir, t.TaskID), result); err != nil {
					return fmt.Errorf("writing result for %s: %w", t.TaskID, err)
				}
			}
			if opts.OnProgress != nil {
				opts.OnProgress(idx, total, result)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	if ctx.Err() != nil {
		return results, ErrCancelled
	}

	return results, nil
}

func evaluateOne(ctx context.Context, t domain.EvaluationTask, oracle Oracle) domain.RuleEvaluationResult {
	startLine := t.FocusArea.StartLine
	endLine := t.FocusArea.EndLine

	req := Request{
		Prompt:    buildPrompt(t),
		Model:     t.Rule.Model,
		FilePath:  t.FocusArea.FilePath,
		StartLine: startLine,
		EndLine:   endLine,
		OutputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"violates_rule": map[string]any{"type": "boolean"},
				"score":         map[string]any{"type": "integer"},
				"comment":       map[string]any{"type": "string"},
				"file_path":     map[string]any{"type": "string"},
				"line_number":   map[string]any{"type": "integer"},
			},
			"required": []string{"violates_rule", "score", "comment", "file_path"},
		},
	}

	start := time.Now()
	eval, model, costUSD, err := oracle.Evaluate(ctx, req)
	durationMs := time.Since(start).Milliseconds()
	if err != nil {
		return domain.Failure(t.TaskID, t.Rule.Name, t.FocusArea.FilePath, err.Error(), model)
	}
	return domain.Success(t.TaskID, t.Rule.Name, t.FocusArea.FilePath, eval, model, durationMs, costUSD)
}

func buildPrompt(t domain.EvaluationTask) string {
	return fmt.Sprintf("Rule: %s\n\n%s\n\nFile: %s\n\n%s", t.Rule.Name, t.Rule.Content, t.FocusArea.FilePath, t.FocusArea.HunkContent)
}

func loadExisting(outputDir, taskID string) (domain.RuleEvaluationResult, bool) {
	if outputDir == "" {
		return domain.RuleEvaluationResult{}, false
	}
	path := resultPath(outputDir, taskID)
	if !fsutil.Exists(path) {
		return domain.RuleEvaluationResult{}, false
	}
	var result domain.RuleEvaluationResult
	if err := fsutil.ReadJSON(path, &result); err != nil {
		// Corrupt result file: treat as absent so it gets overwritten.
		return domain.RuleEvaluationResult{}, false
	}
	if result.TaskID == "" {
		return domain.RuleEvaluationResult{}, false
	}
	return result, true
}

func resultPath(outputDir, taskID string) string {
	return filepath.Join(outputDir, fsutil.SanitizeFilename(taskID)+".json")
}
