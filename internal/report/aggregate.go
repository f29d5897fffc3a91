// Package report implements C8: loading every RuleEvaluationResult,
// filtering to reportable violations, aggregating totals, and rendering
// both a JSON report and a Markdown summary plus PR-comment bodies.
package report

import (
	"sort"

	"github.com/prradar/pipeline/internal/domain"
)

// TaskMeta supplies the task-level context (rule links, focus-area
// description) the evaluator discarded once the task was dispatched, so
// violations can carry a rule URL / skill / doc link / method label.
type TaskMeta struct {
	RuleURL     string
	Skill       string
	DocLink     string
	MethodDesc  string
}

// Options configures the aggregation pass.
type Options struct {
	// MinScore is the inclusive lower bound a violation's score must clear.
	// Zero defaults to 5 per §4.8.
	MinScore int
	// FocusAreaCostUSD is the phase-2 focus-area generation cost, folded
	// into the report's total cost alongside the evaluator's per-task cost.
	FocusAreaCostUSD float64
}

func (o Options) minScore() int {
	if o.MinScore == 0 {
		return 5
	}
	return o.MinScore
}

// Build filters and aggregates results into a ReviewReport. meta is keyed
// by task_id and may be nil or incomplete; missing entries simply leave
// their optional violation fields blank.
func Build(results []domain.RuleEvaluationResult, meta map[string]TaskMeta, opts Options) domain.ReviewReport {
	summary := domain.AnalysisSummary{
		BySeverity: map[string]int{},
		ByFile:     map[string]int{},
		ByRule:     map[string]int{},
		ByMethod:   map[string]int{},
	}
	summary.TotalTasks = len(results)
	summary.TotalCostUSD += opts.FocusAreaCostUSD

	var violations []domain.Violation

	for _, r := range results {
		switch r.Status {
		case domain.ResultSuccess:
			summary.TotalSuccesses++
		case domain.ResultFailure:
			summary.TotalFailures++
		}
		if !r.IsSuccess() {
			continue
		}
		if r.CostUSD != nil {
			summary.TotalCostUSD += *r.CostUSD
		}

		eval := r.Evaluation
		if !eval.ViolatesRule || eval.Score < opts.minScore() {
			continue
		}

		m := meta[r.TaskID]
		lineNumber := 0
		if eval.LineNumber != nil {
			lineNumber = *eval.LineNumber
		}
		cost := 0.0
		if r.CostUSD != nil {
			cost = *r.CostUSD
		}

		v := domain.Violation{
			TaskID:     r.TaskID,
			RuleName:   r.RuleName,
			RuleURL:    m.RuleURL,
			Skill:      m.Skill,
			DocLink:    m.DocLink,
			FilePath:   eval.FilePath,
			LineNumber: lineNumber,
			Score:      eval.Score,
			Comment:    eval.Comment,
			ModelUsed:  r.ModelUsed,
			CostUSD:    cost,
			MethodDesc: m.MethodDesc,
		}
		violations = append(violations, v)

		summary.ViolationsFound++
		summary.BySeverity[domain.SeverityBucket(eval.Score)]++
		summary.ByFile[v.FilePath]++
		summary.ByRule[v.RuleName]++
		if v.MethodDesc != "" {
			summary.ByMethod[v.FilePath+"|"+v.MethodDesc]++
		}
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.LineNumber != b.LineNumber {
			return a.LineNumber < b.LineNumber
		}
		return a.RuleName < b.RuleName
	})

	if len(summary.ByMethod) == 0 {
		summary.ByMethod = nil
	}

	return domain.ReviewReport{Summary: summary, Violations: violations}
}
