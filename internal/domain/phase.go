package domain

import "time"

// PhaseName identifies one of the six pipeline phases by its directory name.
type PhaseName string

const (
	PhasePullRequest PhaseName = "phase-1-pull-request"
	PhaseFocusAreas  PhaseName = "phase-2-focus-areas"
	PhaseRules       PhaseName = "phase-3-rules"
	PhaseTasks       PhaseName = "phase-4-tasks"
	PhaseEvaluations PhaseName = "phase-5-evaluations"
	PhaseReport      PhaseName = "phase-6-report"
)

// PhaseStatusValue is the status recorded in a phase_result.json marker.
type PhaseStatusValue string

const (
	StatusSuccess PhaseStatusValue = "success"
	StatusFailed  PhaseStatusValue = "failed"
)

// PhaseStats carries best-effort bookkeeping about a phase run.
type PhaseStats struct {
	ArtifactsProduced int            `json:"artifacts_produced,omitempty"`
	DurationMs        int64          `json:"duration_ms,omitempty"`
	CostUSD           float64        `json:"cost_usd,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// PhaseResult is the marker file a phase writes as its final act.
type PhaseResult struct {
	Phase        PhaseName        `json:"phase"`
	Status       PhaseStatusValue `json:"status"`
	CompletedAt  time.Time        `json:"completed_at"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Stats        PhaseStats       `json:"stats,omitempty"`
}

// Succeeded reports whether the marker records a successful phase run.
func (p PhaseResult) Succeeded() bool {
	return p.Status == StatusSuccess
}

// ComputedStatus is the externally observable state of a phase directory,
// as reported by the `status` CLI command.
type ComputedStatus string

const (
	StatusComplete    ComputedStatus = "complete"
	StatusPartial     ComputedStatus = "partial"
	StatusFailedState ComputedStatus = "failed"
	StatusNotStarted  ComputedStatus = "not started"
)
