package sequencer

import (
	"os"
	"path/filepath"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/fsutil"
)

// Status computes the externally observable state of one phase directory:
// the phase_result.json marker when present, falling back to the legacy
// heuristics §4.9 lists for backward compatibility with output trees that
// predate the marker file.
func Status(l Layout, phase domain.PhaseName) domain.ComputedStatus {
	path := l.ResultPath(phase)
	if fsutil.Exists(path) {
		var result domain.PhaseResult
		if err := fsutil.ReadJSON(path, &result); err == nil {
			if result.Status == domain.StatusSuccess {
				return domain.StatusComplete
			}
			if result.Status == domain.StatusFailed {
				return domain.StatusFailedState
			}
		}
	}
	return legacyStatus(l, phase)
}

// legacyStatus infers completion from artifact presence alone, for output
// trees produced before phase_result.json existed.
func legacyStatus(l Layout, phase domain.PhaseName) domain.ComputedStatus {
	dir := l.Dir(phase)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.StatusNotStarted
	}

	switch phase {
	case domain.PhasePullRequest:
		required := []string{"diff-raw.diff", "diff-parsed.json"}
		if hasAll(dir, required) {
			return domain.StatusComplete
		}
		if len(entries) > 0 {
			return domain.StatusPartial
		}
		return domain.StatusNotStarted

	case domain.PhaseFocusAreas, domain.PhaseTasks:
		count := countJSON(entries)
		if count > 0 {
			return domain.StatusPartial
		}
		return domain.StatusNotStarted

	case domain.PhaseEvaluations:
		tasksDir := l.Dir(domain.PhaseTasks)
		taskFiles, err := os.ReadDir(tasksDir)
		if err != nil {
			return domain.StatusNotStarted
		}
		taskCount := countJSON(taskFiles)
		resultCount := countJSON(entries)
		if taskCount == 0 {
			return domain.StatusNotStarted
		}
		if resultCount >= taskCount {
			return domain.StatusComplete
		}
		if resultCount > 0 {
			return domain.StatusPartial
		}
		return domain.StatusNotStarted

	case domain.PhaseReport:
		required := []string{"summary.json", "summary.md"}
		if hasAll(dir, required) {
			return domain.StatusComplete
		}
		if len(entries) > 0 {
			return domain.StatusPartial
		}
		return domain.StatusNotStarted

	default:
		if len(entries) > 0 {
			return domain.StatusPartial
		}
		return domain.StatusNotStarted
	}
}

func hasAll(dir string, names []string) bool {
	for _, n := range names {
		if !fsutil.Exists(filepath.Join(dir, n)) {
			return false
		}
	}
	return true
}

func countJSON(entries []os.DirEntry) int {
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" && e.Name() != "phase_result.json" && e.Name() != "summary.json" {
			n++
		}
	}
	return n
}
