package diffmodel

import (
	"fmt"

	"github.com/prradar/pipeline/internal/domain"
)

// ErrInvariantViolation is returned by FindByNewLine when a hunk's own
// invariant (at most one diff line claims a given new-file line number) does
// not hold. It should never occur on output of Parse; its existence documents
// the precondition FindByNewLine relies on.
type ErrInvariantViolation struct {
	FilePath    string
	HunkIndex   int
	NewLineNum  int
	Occurrences int
}

func (e *ErrInvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s hunk %d has %d diff lines claiming new line %d, expected at most 1",
		e.FilePath, e.HunkIndex, e.Occurrences, e.NewLineNum)
}

// FindByNewLine returns the index into h.DiffLines whose NewLineNumber equals
// newLine, or -1 if no diff line claims that line number. It is the
// hunk-local helper later phases use to map a target-file line number back
// onto the diff line that produced it.
func FindByNewLine(h domain.Hunk, hunkIndex, newLine int) (int, error) {
	found := -1
	occurrences := 0
	for i, dl := range h.DiffLines {
		if dl.NewLineNumber != nil && *dl.NewLineNumber == newLine {
			occurrences++
			if found == -1 {
				found = i
			}
		}
	}
	if occurrences > 1 {
		return -1, &ErrInvariantViolation{FilePath: h.FilePath, HunkIndex: hunkIndex, NewLineNum: newLine, Occurrences: occurrences}
	}
	return found, nil
}

// FindByOldLine is the old-side analogue of FindByNewLine, used when
// projecting onto removed/context lines by pre-change line number.
func FindByOldLine(h domain.Hunk, hunkIndex, oldLine int) (int, error) {
	found := -1
	occurrences := 0
	for i, dl := range h.DiffLines {
		if dl.OldLineNumber != nil && *dl.OldLineNumber == oldLine {
			occurrences++
			if found == -1 {
				found = i
			}
		}
	}
	if occurrences > 1 {
		return -1, &ErrInvariantViolation{FilePath: h.FilePath, HunkIndex: hunkIndex, NewLineNum: oldLine, Occurrences: occurrences}
	}
	return found, nil
}
