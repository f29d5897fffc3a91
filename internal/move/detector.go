// Package move implements C2: detecting contiguous blocks of removed lines
// that reappear as added lines elsewhere in the same diff.
//
// The matching and greedy tie-break sweep are grounded on the candidate-pair
// proximity search in the teacher's dedup package, adapted from spatial
// finding-overlap to exact-content line matching.
package move

import (
	"sort"
	"strings"

	"github.com/prradar/pipeline/internal/domain"
)

// Options configures the detector. MinRunLength is the minimum number of
// matched lines a run must have to be kept; the zero value is treated as 2.
type Options struct {
	MinRunLength int
}

func (o Options) minRunLength() int {
	if o.MinRunLength <= 0 {
		return 2
	}
	return o.MinRunLength
}

// Detect discovers maximal matched pairs of contiguous removed/added line
// runs in diff, per the algorithm in the move-detection contract.
func Detect(diff domain.GitDiff, opts Options) []domain.MoveCandidate {
	removed := taggedLines(diff, domain.LineRemoved)
	added := taggedLines(diff, domain.LineAdded)

	matches := exactMatches(removed, added)
	runs := groupRuns(matches)
	runs = filterByLength(runs, opts.minRunLength())
	for i := range runs {
		runs[i].Score = computeScore(runs[i])
	}
	return resolveOverlaps(runs)
}

// taggedLines extracts every DiffLine of the given kind across all hunks,
// annotated with its absolute location and a whitespace-normalized form.
func taggedLines(diff domain.GitDiff, kind domain.LineKind) []domain.TaggedLine {
	var out []domain.TaggedLine
	for hi, h := range diff.Hunks {
		for _, dl := range h.DiffLines {
			if dl.Kind != kind {
				continue
			}
			var lineNum int
			switch kind {
			case domain.LineRemoved:
				if dl.OldLineNumber == nil {
					continue
				}
				lineNum = *dl.OldLineNumber
			case domain.LineAdded:
				if dl.NewLineNumber == nil {
					continue
				}
				lineNum = *dl.NewLineNumber
			}
			out = append(out, domain.TaggedLine{
				FilePath:   h.FilePath,
				HunkIndex:  hi,
				LineNumber: lineNum,
				Kind:       kind,
				Content:    dl.Content,
				Normalized: normalize(dl.Content),
			})
		}
	}
	return out
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}

// exactMatch pairs one removed line with the added line it was matched to.
type exactMatch struct {
	removed domain.TaggedLine
	added   domain.TaggedLine
}

// exactMatches builds an index from normalized added content to unconsumed
// positions, then walks removed lines in order assigning each the first
// unconsumed added line with identical normalized content.
func exactMatches(removed, added []domain.TaggedLine) []exactMatch {
	index := make(map[string][]int)
	for i, a := range added {
		if a.Normalized == "" {
			continue
		}
		index[a.Normalized] = append(index[a.Normalized], i)
	}
	consumed := make([]bool, len(added))

	var matches []exactMatch
	for _, r := range removed {
		if r.Normalized == "" {
			continue
		}
		positions := index[r.Normalized]
		for _, pos := range positions {
			if consumed[pos] {
				continue
			}
			consumed[pos] = true
			matches = append(matches, exactMatch{removed: r, added: added[pos]})
			break
		}
	}
	return matches
}

// groupRuns groups exact matches into contiguous run candidates. A match
// extends the current run for a given (source_file, target_file) pair iff
// both its removed and added lines immediately follow the run's current
// tail lines in diff-tag order.
func groupRuns(matches []exactMatch) []domain.MoveCandidate {
	type runKey struct {
		source, target string
	}
	type openRun struct {
		removed []domain.TaggedLine
		added   []domain.TaggedLine
	}
	open := make(map[runKey]*openRun)
	var order []runKey
	var runs []domain.MoveCandidate

	closeRun := func(k runKey) {
		r := open[k]
		if r == nil {
			return
		}
		runs = append(runs, domain.MoveCandidate{
			SourceFile:   k.source,
			TargetFile:   k.target,
			RemovedLines: r.removed,
			AddedLines:   r.added,
		})
		delete(open, k)
	}

	for _, m := range matches {
		k := runKey{source: m.removed.FilePath, target: m.added.FilePath}
		r, ok := open[k]
		if ok && extendsRun(r.removed[len(r.removed)-1], m.removed) && extendsRun(r.added[len(r.added)-1], m.added) {
			r.removed = append(r.removed, m.removed)
			r.added = append(r.added, m.added)
			continue
		}
		if ok {
			closeRun(k)
		} else {
			order = append(order, k)
		}
		open[k] = &openRun{removed: []domain.TaggedLine{m.removed}, added: []domain.TaggedLine{m.added}}
	}
	for _, k := range order {
		closeRun(k)
	}
	return runs
}

// extendsRun reports whether next continues a run ending at prev: within the
// same hunk next must be on the following line number; across hunks any line
// of the immediately following hunk extends the run, and the positions of
// prev and next within their hunks are not checked.
func extendsRun(prev, next domain.TaggedLine) bool {
	if prev.HunkIndex == next.HunkIndex {
		return next.LineNumber == prev.LineNumber+1
	}
	return next.HunkIndex == prev.HunkIndex+1
}

func filterByLength(runs []domain.MoveCandidate, minLen int) []domain.MoveCandidate {
	var out []domain.MoveCandidate
	for _, r := range runs {
		if r.MatchedLines() >= minLen {
			out = append(out, r)
		}
	}
	return out
}

func computeScore(c domain.MoveCandidate) float64 {
	srcStart, srcEnd := c.SourceRange()
	tgtStart, tgtEnd := c.TargetRange()
	sourceSpan := srcEnd - srcStart + 1
	targetSpan := tgtEnd - tgtStart + 1
	span := sourceSpan
	if targetSpan > span {
		span = targetSpan
	}
	if span <= 0 {
		return 0
	}
	return float64(c.MatchedLines()) / float64(span)
}

// resolveOverlaps runs the greedy tie-break sweep: candidates are ordered by
// (descending matched_lines, descending score, ascending source_start,
// ascending target_start); accepted candidates consume their removed/added
// positions so later, overlapping candidates are dropped.
func resolveOverlaps(runs []domain.MoveCandidate) []domain.MoveCandidate {
	sort.SliceStable(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		if a.MatchedLines() != b.MatchedLines() {
			return a.MatchedLines() > b.MatchedLines()
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		aStart, _ := a.SourceRange()
		bStart, _ := b.SourceRange()
		if aStart != bStart {
			return aStart < bStart
		}
		aTStart, _ := a.TargetRange()
		bTStart, _ := b.TargetRange()
		return aTStart < bTStart
	})

	usedRemoved := make(map[linePos]bool)
	usedAdded := make(map[linePos]bool)

	var accepted []domain.MoveCandidate
	for _, c := range runs {
		if overlapsUsed(c.RemovedLines, usedRemoved) || overlapsUsed(c.AddedLines, usedAdded) {
			continue
		}
		markUsed(c.RemovedLines, usedRemoved)
		markUsed(c.AddedLines, usedAdded)
		accepted = append(accepted, c)
	}
	return accepted
}

type linePos struct {
	file string
	line int
}

func overlapsUsed(lines []domain.TaggedLine, used map[linePos]bool) bool {
	for _, l := range lines {
		if used[linePos{file: l.FilePath, line: l.LineNumber}] {
			return true
		}
	}
	return false
}

func markUsed(lines []domain.TaggedLine, used map[linePos]bool) {
	for _, l := range lines {
		used[linePos{file: l.FilePath, line: l.LineNumber}] = true
	}
}
