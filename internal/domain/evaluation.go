package domain

// RuleEvaluation is the model's structured verdict for one task.
type RuleEvaluation struct {
	ViolatesRule bool   `json:"violates_rule"`
	Score        int    `json:"score"`
	Comment      string `json:"comment"`
	FilePath     string `json:"file_path"`
	LineNumber   *int   `json:"line_number,omitempty"`
}

// ResultStatus tags which variant of RuleEvaluationResult is populated.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultFailure ResultStatus = "failure"
)

// RuleEvaluationResult is a tagged union: exactly one of the Success-only or
// Failure-only fields is meaningful, selected by Status.
type RuleEvaluationResult struct {
	Status     ResultStatus    `json:"status"`
	TaskID     string          `json:"task_id"`
	RuleName   string          `json:"rule_name"`
	FilePath   string          `json:"file_path"`
	ModelUsed  string          `json:"model_used"`

	// Success fields.
	Evaluation *RuleEvaluation `json:"evaluation,omitempty"`
	DurationMs int64           `json:"duration_ms,omitempty"`
	CostUSD    *float64        `json:"cost_usd,omitempty"`

	// Failure fields.
	ErrorMessage string `json:"error_message,omitempty"`
}

// Success builds a Success-variant result.
func Success(taskID, ruleName, filePath string, eval RuleEvaluation, model string, durationMs int64, costUSD *float64) RuleEvaluationResult {
	return RuleEvaluationResult{
		Status:     ResultSuccess,
		TaskID:     taskID,
		RuleName:   ruleName,
		FilePath:   filePath,
		ModelUsed:  model,
		Evaluation: &eval,
		DurationMs: durationMs,
		CostUSD:    costUSD,
	}
}

// Failure builds a Failure-variant result.
func Failure(taskID, ruleName, filePath, errMsg, model string) RuleEvaluationResult {
	return RuleEvaluationResult{
		Status:       ResultFailure,
		TaskID:       taskID,
		RuleName:     ruleName,
		FilePath:     filePath,
		ModelUsed:    model,
		ErrorMessage: errMsg,
	}
}

// IsSuccess reports whether the result is the Success variant.
func (r RuleEvaluationResult) IsSuccess() bool {
	return r.Status == ResultSuccess && r.Evaluation != nil
}

// Violation is one reportable finding, expanded with the focus area
// description it was evaluated against for (file_path, method) grouping.
type Violation struct {
	TaskID       string  `json:"task_id"`
	RuleName     string  `json:"rule_name"`
	RuleURL      string  `json:"rule_url,omitempty"`
	Skill        string  `json:"skill,omitempty"`
	DocLink      string  `json:"documentation_link,omitempty"`
	FilePath     string  `json:"file_path"`
	LineNumber   int     `json:"line_number"`
	Score        int     `json:"score"`
	Comment      string  `json:"comment"`
	ModelUsed    string  `json:"model_used"`
	CostUSD      float64 `json:"cost_usd,omitempty"`
	MethodDesc   string  `json:"method_description,omitempty"`
}

// SeverityBucket returns the human label for a 1-10 violation score.
func SeverityBucket(score int) string {
	switch {
	case score >= 8:
		return "Severe"
	case score >= 5:
		return "Moderate"
	default:
		return "Minor"
	}
}

// AnalysisSummary holds the totals and groupings reported by C8.
type AnalysisSummary struct {
	TotalTasks       int            `json:"total_tasks"`
	TotalSuccesses   int            `json:"total_successes"`
	TotalFailures    int            `json:"total_failures"`
	ViolationsFound  int            `json:"violations_found"`
	TotalCostUSD     float64        `json:"total_cost_usd"`
	BySeverity       map[string]int `json:"by_severity"`
	ByFile           map[string]int `json:"by_file"`
	ByRule           map[string]int `json:"by_rule"`
	ByMethod         map[string]int `json:"by_method,omitempty"`
}

// ReviewReport is the full phase-6 output: summary plus ordered violations.
type ReviewReport struct {
	Summary    AnalysisSummary `json:"summary"`
	Violations []Violation     `json:"violations"`
}
