package pipeline

import (
	"os"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/sequencer"
)

// phaseOrder mirrors sequencer's own linear chain; kept local since the
// sequencer package does not export it.
var phaseOrder = []domain.PhaseName{
	domain.PhasePullRequest,
	domain.PhaseFocusAreas,
	domain.PhaseRules,
	domain.PhaseTasks,
	domain.PhaseEvaluations,
	domain.PhaseReport,
}

// PhaseStatusInfo is one phase's reported state for the `status` command.
type PhaseStatusInfo struct {
	Phase         domain.PhaseName      `json:"phase"`
	Status        domain.ComputedStatus `json:"status"`
	ArtifactCount int                   `json:"artifact_count"`
}

// Status reports, for every phase in order, its computed status and a
// best-effort artifact count — informative even mid-run, per §12's
// "richer than a bare marker dump" guidance.
func Status(l sequencer.Layout) []PhaseStatusInfo {
	out := make([]PhaseStatusInfo, 0, len(phaseOrder))
	for _, phase := range phaseOrder {
		out = append(out, PhaseStatusInfo{
			Phase:         phase,
			Status:        sequencer.Status(l, phase),
			ArtifactCount: countArtifacts(l.Dir(phase)),
		})
	}
	return out
}

func countArtifacts(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}
