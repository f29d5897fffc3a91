package effective

import "github.com/prradar/pipeline/internal/domain"

// reconstruct iterates the original hunks in order, drops every hunk that
// overlaps a consumed candidate's source span, and replaces the first hunk
// overlapping a consumed candidate's target span with that candidate's
// trimmed residual hunks (subsequent hunks for the same candidate contribute
// nothing further). Hunks untouched by any consumed candidate survive
// verbatim.
func reconstruct(diff domain.GitDiff, candidates []domain.MoveCandidate, consumedByCandidate map[int]consumed) (domain.GitDiff, domain.MoveReport) {
	appended := make(map[int]bool, len(consumedByCandidate))
	var out []domain.Hunk

	for _, h := range diff.Hunks {
		removedIdx, isRemoved := matchesSource(h, candidates, consumedByCandidate)
		if isRemoved {
			_ = removedIdx
			continue
		}
		addedIdx, isAdded := matchesTarget(h, candidates, consumedByCandidate)
		if isAdded {
			if !appended[addedIdx] {
				out = append(out, consumedByCandidate[addedIdx].hunks...)
				appended[addedIdx] = true
			}
			continue
		}
		out = append(out, h)
	}

	report := domain.MoveReport{}
	for i := range candidates {
		c, ok := consumedByCandidate[i]
		if !ok {
			continue
		}
		report.Moves = append(report.Moves, c.detail)
		report.MovesDetected++
		report.TotalLinesMoved += c.detail.MatchedLines
		report.TotalLinesEffectivelyChanged += c.detail.EffectiveDiffLines
	}

	return domain.GitDiff{CommitHash: diff.CommitHash, Hunks: out}, report
}

// matchesSource reports whether h overlaps a consumed candidate's source
// range on the old side and shares the candidate's source file.
func matchesSource(h domain.Hunk, candidates []domain.MoveCandidate, consumedByCandidate map[int]consumed) (int, bool) {
	if h.OldLength == 0 && len(h.DiffLines) == 0 {
		// Rename-only / binary marker hunks carry no old-side span to overlap.
		return -1, false
	}
	for i, c := range candidates {
		if _, ok := consumedByCandidate[i]; !ok {
			continue
		}
		if h.FilePath != c.SourceFile {
			continue
		}
		start, end := c.SourceRange()
		if rangesOverlap(h.OldStart, h.OldEnd(), start, end) {
			return i, true
		}
	}
	return -1, false
}

// matchesTarget reports whether h overlaps a consumed candidate's target
// range on the new side and shares the candidate's target file.
func matchesTarget(h domain.Hunk, candidates []domain.MoveCandidate, consumedByCandidate map[int]consumed) (int, bool) {
	for i, c := range candidates {
		if _, ok := consumedByCandidate[i]; !ok {
			continue
		}
		if h.FilePath != c.TargetFile {
			continue
		}
		start, end := c.TargetRange()
		if rangesOverlap(h.NewStart, h.NewEnd(), start, end) {
			return i, true
		}
	}
	return -1, false
}

func rangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart <= bEnd && bStart <= aEnd
}
