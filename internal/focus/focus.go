// Package focus implements C4: subdividing each hunk of a GitDiff into
// file-level and (optionally) method-level reviewable FocusAreas, with a
// stable content-addressed focus_id. Hashing is grounded on the teacher's
// hashFinding/NewFindingFingerprint style: a pipe-joined payload reduced to
// a hex SHA-256 prefix.
package focus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/prradar/pipeline/internal/domain"
)

// focusIDHexLen is the width of the hex SHA-256 prefix used for focus_id.
// The spec's original codebase uses 8; this implementation widens to 16
// per §9's explicit permission, reducing collision probability while
// keeping "detect and fail the phase" as the only hard requirement.
const focusIDHexLen = 16

// SubdivideFunc inspects one hunk and proposes method-level sub-regions. It
// is the external, language-agnostic oracle described in §4.4; when nil,
// method-level generation is skipped.
type SubdivideFunc func(h domain.Hunk) []MethodRegion

// MethodRegion is one candidate method-level FocusArea proposed by a
// SubdivideFunc.
type MethodRegion struct {
	StartLine   int
	EndLine     int
	Description string
}

// Generate produces the ordered list of FocusAreas for diff. subdivide may
// be nil to skip method-level focus areas.
func Generate(diff domain.GitDiff, subdivide SubdivideFunc) ([]domain.FocusArea, error) {
	var areas []domain.FocusArea
	seen := make(map[string]bool)

	for hi, h := range diff.Hunks {
		if len(h.DiffLines) == 0 {
			// Pure rename / binary marker hunk: nothing to review.
			continue
		}

		fileArea, err := build(h, hi, h.NewStart, h.NewEnd(), "", domain.FocusFile)
		if err != nil {
			return nil, err
		}
		if seen[fileArea.FocusID] {
			return nil, fmt.Errorf("focus_id collision on %s: duplicate within phase output", fileArea.FocusID)
		}
		seen[fileArea.FocusID] = true
		areas = append(areas, fileArea)

		if subdivide == nil {
			continue
		}
		for _, region := range subdivide(h) {
			methodArea, err := build(h, hi, region.StartLine, region.EndLine, region.Description, domain.FocusMethod)
			if err != nil {
				return nil, err
			}
			if seen[methodArea.FocusID] {
				return nil, fmt.Errorf("focus_id collision on %s: duplicate within phase output", methodArea.FocusID)
			}
			seen[methodArea.FocusID] = true
			areas = append(areas, methodArea)
		}
	}

	return areas, nil
}

func build(h domain.Hunk, hunkIndex, startLine, endLine int, description string, ft domain.FocusType) (domain.FocusArea, error) {
	if startLine > endLine {
		return domain.FocusArea{}, fmt.Errorf("focus area invariant violated: start_line %d > end_line %d in %s", startLine, endLine, h.FilePath)
	}
	id := focusID(h.FilePath, hunkIndex, startLine, endLine, ft)
	return domain.FocusArea{
		FocusID:     id,
		FilePath:    h.FilePath,
		StartLine:   startLine,
		EndLine:     endLine,
		Description: description,
		HunkIndex:   hunkIndex,
		HunkContent: renderHunkContent(h),
		FocusType:   ft,
	}, nil
}

// focusID is the hex SHA-256 prefix of file_path|hunk_index|start_line|end_line|focus_type.
func focusID(filePath string, hunkIndex, startLine, endLine int, ft domain.FocusType) string {
	payload := fmt.Sprintf("%s|%d|%d|%d|%s", filePath, hunkIndex, startLine, endLine, ft)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])[:focusIDHexLen]
}

// renderHunkContent annotates each body line with its new-file line number
// ("<new_line>: ") or, for deletions which have none, "   -: ".
func renderHunkContent(h domain.Hunk) string {
	var sb strings.Builder
	for _, dl := range h.DiffLines {
		if dl.NewLineNumber != nil {
			fmt.Fprintf(&sb, "%d: %s\n", *dl.NewLineNumber, dl.Content)
		} else {
			fmt.Fprintf(&sb, "   -: %s\n", dl.Content)
		}
	}
	return sb.String()
}
