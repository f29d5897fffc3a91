package domain

// EvaluationTask pairs one rule with one focus area to be evaluated by the
// model oracle. TaskID is stable and content-addressed: rule.name + "_" +
// focus_area.focus_id.
type EvaluationTask struct {
	TaskID    string    `json:"task_id"`
	Rule      TaskRule  `json:"rule"`
	FocusArea FocusArea `json:"focus_area"`
}
