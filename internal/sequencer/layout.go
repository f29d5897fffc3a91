// Package sequencer implements C9: the phase sequencer that owns the
// output directory layout, gates each phase on its predecessor's success,
// and provides crash-recovery and resume semantics across runs. The gate
// and crash-recovery idiom is grounded on alanmeadows-otto's spec.Execute
// (recoverCrashedTasks, phase-by-phase loop with skip-if-completed).
package sequencer

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/prradar/pipeline/internal/domain"
)

// phaseOrder is the linear dependency chain §4.9 describes.
var phaseOrder = []domain.PhaseName{
	domain.PhasePullRequest,
	domain.PhaseFocusAreas,
	domain.PhaseRules,
	domain.PhaseTasks,
	domain.PhaseEvaluations,
	domain.PhaseReport,
}

// Layout resolves every phase directory under one PR's output root.
type Layout struct {
	Root string // <output_root>/<repo_slug>/<pr_number>
}

// NewLayout builds the layout for one repository/PR pair.
func NewLayout(outputRoot, repoSlug string, prNumber int) Layout {
	return Layout{Root: filepath.Join(outputRoot, repoSlug, strconv.Itoa(prNumber))}
}

// Dir returns the on-disk directory for phase.
func (l Layout) Dir(phase domain.PhaseName) string {
	return filepath.Join(l.Root, string(phase))
}

// ResultPath returns the phase_result.json path for phase.
func (l Layout) ResultPath(phase domain.PhaseName) string {
	return filepath.Join(l.Dir(phase), "phase_result.json")
}

// LockPath is the resource name fsutil.WithLock guards this PR's whole
// output tree with (WithLock appends the ".lock" suffix itself).
func (l Layout) LockPath() string {
	return filepath.Join(l.Root, ".sequencer")
}

// Predecessor returns the phase that must have succeeded before phase can
// run, and false if phase is the first in the chain.
func Predecessor(phase domain.PhaseName) (domain.PhaseName, bool) {
	for i, p := range phaseOrder {
		if p == phase {
			if i == 0 {
				return "", false
			}
			return phaseOrder[i-1], true
		}
	}
	return "", false
}

// ErrDependencyUnmet is returned when a phase's predecessor has not
// completed successfully.
type ErrDependencyUnmet struct {
	Phase       domain.PhaseName
	Predecessor domain.PhaseName
}

func (e *ErrDependencyUnmet) Error() string {
	return fmt.Sprintf("phase %s requires %s to have completed successfully first", e.Phase, e.Predecessor)
}

// ErrInvariantViolation signals a data-model invariant broken at runtime
// (duplicate focus_id, unparsable diff, etc.) — these always fail the
// phase rather than being silently tolerated.
type ErrInvariantViolation struct {
	Phase domain.PhaseName
	Msg   string
}

func (e *ErrInvariantViolation) Error() string {
	return fmt.Sprintf("phase %s: invariant violated: %s", e.Phase, e.Msg)
}

// ErrCancelled is returned when a phase run is aborted by context
// cancellation rather than failing on its own.
var ErrCancelled = fmt.Errorf("cancelled")
