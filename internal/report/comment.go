package report

import (
	"fmt"
	"strings"

	"github.com/prradar/pipeline/internal/domain"
)

// FormatComment composes the PR-comment body for one violation, per
// §4.8's pure-transform contract. It is grounded on bkyoung's
// FormatFindingComment: a header line, the model's comment, then optional
// Skill/Docs lines and an attribution footer.
func FormatComment(v domain.Violation) string {
	var sb strings.Builder

	if v.RuleURL != "" {
		sb.WriteString(fmt.Sprintf("**[%s](%s)**\n\n", v.RuleName, v.RuleURL))
	} else {
		sb.WriteString(fmt.Sprintf("**%s**\n\n", v.RuleName))
	}

	sb.WriteString(v.Comment)
	sb.WriteString("\n")

	if v.Skill != "" {
		sb.WriteString(fmt.Sprintf("\nRelated Claude Skill: `/%s`\n", v.Skill))
	}
	if v.DocLink != "" {
		sb.WriteString(fmt.Sprintf("\nRelated Documentation: [Docs](%s)\n", v.DocLink))
	}

	sb.WriteString(fmt.Sprintf("\n*Assisted by [PR Radar](https://github.com/prradar/pipeline) (cost $%.4f · %s)*\n", v.CostUSD, v.ModelUsed))

	return sb.String()
}

// FormatComments renders every violation's comment body in order.
func FormatComments(violations []domain.Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, FormatComment(v))
	}
	return out
}

// ValidNewLines computes, per file, the set of new-side line numbers that
// land on a surviving hunk of diff — the only lines a poster may attach an
// inline comment to. Grounded on sevigo-code-warden's
// ParseValidLinesFromPatch, adapted to read directly off the already-parsed
// hunk model (context and added lines carry a new-side line number; removed
// lines don't) instead of re-scanning raw patch text.
func ValidNewLines(diff domain.GitDiff) map[string]map[int]bool {
	valid := make(map[string]map[int]bool)
	for _, h := range diff.Hunks {
		lines := valid[h.FilePath]
		if lines == nil {
			lines = make(map[int]bool)
			valid[h.FilePath] = lines
		}
		for _, dl := range h.DiffLines {
			if dl.NewLineNumber != nil && (dl.Kind == domain.LineAdded || dl.Kind == domain.LineContext) {
				lines[*dl.NewLineNumber] = true
			}
		}
	}
	return valid
}

// BuildPayload composes the §6 posting payload for one violation. When the
// violation's line number lands on a surviving hunk of the diff (per
// validLines), it's an inline comment carrying commit_id/path/side/line;
// otherwise it's downgraded to a bare-body file-level comment.
func BuildPayload(v domain.Violation, commitID string, validLines map[string]map[int]bool) domain.CommentPayload {
	body := FormatComment(v)
	if lines := validLines[v.FilePath]; v.LineNumber > 0 && lines[v.LineNumber] {
		line := v.LineNumber
		return domain.CommentPayload{
			CommitID: commitID,
			Path:     v.FilePath,
			Side:     "RIGHT",
			Line:     &line,
			Body:     body,
		}
	}
	return domain.CommentPayload{Body: body}
}

// BuildPayloads composes the posting payload for every violation, in order,
// against one diff's surviving hunks.
func BuildPayloads(violations []domain.Violation, diff domain.GitDiff, commitID string) []domain.CommentPayload {
	validLines := ValidNewLines(diff)
	out := make([]domain.CommentPayload, 0, len(violations))
	for _, v := range violations {
		out = append(out, BuildPayload(v, commitID, validLines))
	}
	return out
}
