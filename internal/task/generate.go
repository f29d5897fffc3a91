// Package task implements C6: the cartesian product of rules and focus
// areas reduced to the EvaluationTasks actually worth running.
package task

import (
	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/rules"
)

// Generate produces one EvaluationTask per (rule, focus_area) pair that
// clears every gate in §4.6: matching focus_type, path applicability, and
// diff-content relevance.
func Generate(compiled []rules.CompiledRule, areas []domain.FocusArea) []domain.EvaluationTask {
	var out []domain.EvaluationTask
	for _, area := range areas {
		for _, rule := range compiled {
			if rule.FocusType != area.FocusType {
				continue
			}
			if !rule.Applies(area.FilePath, area.HunkContent) {
				continue
			}
			out = append(out, domain.EvaluationTask{
				TaskID:    rule.Name + "_" + area.FocusID,
				Rule:      rule.ToTaskRule(),
				FocusArea: area,
			})
		}
	}
	return out
}
