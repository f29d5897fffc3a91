package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/fsutil"
	"github.com/prradar/pipeline/internal/report"
	"github.com/prradar/pipeline/internal/sequencer"
)

// allResults reads every phase-5 <task_id>.json result artifact back into
// one slice.
func allResults(l sequencer.Layout) ([]domain.RuleEvaluationResult, error) {
	dir := l.Dir(domain.PhaseEvaluations)
	names, err := listJSONArtifacts(dir)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RuleEvaluationResult, 0, len(names))
	for _, name := range names {
		var r domain.RuleEvaluationResult
		if err := requireArtifact(filepath.Join(dir, name+".json"), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// taskMetaIndex builds the task_id -> report.TaskMeta lookup report.Build
// needs, from phase-4's own task artifacts (the rule's documentation
// pointers and the focus area's description travel with the task, not the
// evaluation result).
func taskMetaIndex(l sequencer.Layout) (map[string]report.TaskMeta, error) {
	tasks, err := allTasks(l)
	if err != nil {
		return nil, err
	}
	meta := make(map[string]report.TaskMeta, len(tasks))
	for _, t := range tasks {
		meta[t.TaskID] = report.TaskMeta{
			RuleURL:    t.Rule.RuleURL,
			Skill:      t.Rule.Skill,
			DocLink:    t.Rule.DocumentationLink,
			MethodDesc: t.FocusArea.Description,
		}
	}
	return meta, nil
}

// RunReportPhase builds the phase-6 PhaseFunc: filter, sort, and aggregate
// every phase-5 result into the final ReviewReport (C8), writing both the
// JSON and Markdown renderings.
func RunReportPhase(l sequencer.Layout, opts report.Options) sequencer.PhaseFunc {
	return func(ctx context.Context) (domain.PhaseStats, error) {
		results, err := allResults(l)
		if err != nil {
			return domain.PhaseStats{}, fmt.Errorf("read evaluation results: %w", err)
		}
		meta, err := taskMetaIndex(l)
		if err != nil {
			return domain.PhaseStats{}, fmt.Errorf("read tasks: %w", err)
		}

		rpt := report.Build(results, meta, opts)

		dir := l.Dir(domain.PhaseReport)
		if err := fsutil.WriteJSON(filepath.Join(dir, "summary.json"), rpt); err != nil {
			return domain.PhaseStats{}, err
		}
		if err := report.WriteMarkdown(filepath.Join(dir, "summary.md"), rpt); err != nil {
			return domain.PhaseStats{}, err
		}

		return domain.PhaseStats{
			ArtifactsProduced: len(rpt.Violations),
			CostUSD:           rpt.Summary.TotalCostUSD,
		}, nil
	}
}

// LoadReport reads phase-6's summary.json back, for the comment command.
func LoadReport(l sequencer.Layout) (domain.ReviewReport, error) {
	var rpt domain.ReviewReport
	err := requireArtifact(filepath.Join(l.Dir(domain.PhaseReport), "summary.json"), &rpt)
	return rpt, err
}

// BuildComments renders phase-6's violations as §6 posting payloads: an
// inline {commit_id, path, side="RIGHT", line, body} when the violation's
// line lands on a surviving hunk of phase-1's effective diff, a bare {body}
// otherwise. Pure transform; not itself a gated phase — "comment" is a
// read-only view over the report and the diff, grounded on §4.8's comment
// composer plus the valid-line/downgrade check §6 requires.
func BuildComments(l sequencer.Layout) ([]domain.CommentPayload, error) {
	rpt, err := LoadReport(l)
	if err != nil {
		return nil, err
	}
	var diff domain.GitDiff
	if err := requireArtifact(filepath.Join(l.Dir(domain.PhasePullRequest), "effective-diff-parsed.json"), &diff); err != nil {
		return nil, err
	}
	return report.BuildPayloads(rpt.Violations, diff, diff.CommitHash), nil
}
