package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/evaluate"
	"github.com/prradar/pipeline/internal/fsutil"
	"github.com/prradar/pipeline/internal/sequencer"
)

// evaluationSummary is phase-5's own summary.json: a plain tally, distinct
// from phase-6's richer aggregated domain.ReviewReport.
type evaluationSummary struct {
	TotalTasks     int     `json:"total_tasks"`
	TotalSuccesses int     `json:"total_successes"`
	TotalFailures  int     `json:"total_failures"`
	TotalCostUSD   float64 `json:"total_cost_usd"`
}

// allTasks reads every phase-4 <task_id>.json artifact back into one slice.
func allTasks(l sequencer.Layout) ([]domain.EvaluationTask, error) {
	dir := l.Dir(domain.PhaseTasks)
	names, err := listJSONArtifacts(dir)
	if err != nil {
		return nil, err
	}
	out := make([]domain.EvaluationTask, 0, len(names))
	for _, name := range names {
		var t domain.EvaluationTask
		if err := requireArtifact(filepath.Join(dir, name+".json"), &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// RunEvaluatePhase builds the phase-5 PhaseFunc: dispatch every phase-4 task
// to oracle under a bounded worker pool (C7), resuming any results already
// on disk from a prior interrupted run.
func RunEvaluatePhase(l sequencer.Layout, oracle evaluate.Oracle, workers int, onProgress evaluate.ProgressFunc) sequencer.PhaseFunc {
	return func(ctx context.Context) (domain.PhaseStats, error) {
		tasks, err := allTasks(l)
		if err != nil {
			return domain.PhaseStats{}, fmt.Errorf("read tasks: %w", err)
		}

		dir := l.Dir(domain.PhaseEvaluations)
		results, runErr := evaluate.Run(ctx, tasks, oracle, evaluate.Options{
			Workers:    workers,
			OutputDir:  dir,
			OnProgress: onProgress,
		})

		summary := evaluationSummary{TotalTasks: len(tasks)}
		for _, r := range results {
			if r.IsSuccess() {
				summary.TotalSuccesses++
				if r.CostUSD != nil {
					summary.TotalCostUSD += *r.CostUSD
				}
			} else {
				summary.TotalFailures++
			}
		}
		if err := fsutil.WriteJSON(filepath.Join(dir, "summary.json"), summary); err != nil {
			return domain.PhaseStats{}, err
		}

		stats := domain.PhaseStats{ArtifactsProduced: len(results), CostUSD: summary.TotalCostUSD}
		if runErr != nil {
			if errors.Is(runErr, evaluate.ErrCancelled) {
				return stats, context.Canceled
			}
			return stats, runErr
		}
		return stats, nil
	}
}
