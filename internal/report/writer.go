package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/fsutil"
)

// WriteJSON persists the full ReviewReport as pretty-printed JSON.
func WriteJSON(path string, r domain.ReviewReport) error {
	return fsutil.WriteJSON(path, r)
}

// MarshalJSON is a convenience for callers that only need the bytes (e.g.
// the CLI's --json flag writing to stdout) rather than a file.
func MarshalJSON(r domain.ReviewReport) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteMarkdown renders the report as Markdown and writes it to path.
func WriteMarkdown(path string, r domain.ReviewReport) error {
	return fsutil.WriteFile(path, []byte(RenderMarkdown(r)), 0o644)
}

// RenderMarkdown builds the Markdown summary, title-casing severity labels
// the way bkyoung's writer.buildContent does.
func RenderMarkdown(r domain.ReviewReport) string {
	caser := cases.Title(language.English)
	var b strings.Builder

	b.WriteString("# PR Review Report\n\n")
	b.WriteString(fmt.Sprintf("- Total tasks: %d\n", r.Summary.TotalTasks))
	b.WriteString(fmt.Sprintf("- Successes: %d\n", r.Summary.TotalSuccesses))
	b.WriteString(fmt.Sprintf("- Failures: %d\n", r.Summary.TotalFailures))
	b.WriteString(fmt.Sprintf("- Violations found: %d\n", r.Summary.ViolationsFound))
	b.WriteString(fmt.Sprintf("- Total cost: $%.4f\n\n", r.Summary.TotalCostUSD))

	if len(r.Summary.BySeverity) > 0 {
		b.WriteString("## By Severity\n\n")
		for _, sev := range sortedKeys(r.Summary.BySeverity) {
			b.WriteString(fmt.Sprintf("- %s: %d\n", caser.String(sev), r.Summary.BySeverity[sev]))
		}
		b.WriteString("\n")
	}

	if len(r.Violations) == 0 {
		b.WriteString("No violations reported.\n")
		return b.String()
	}

	b.WriteString("## Violations\n\n")
	for _, v := range r.Violations {
		b.WriteString(fmt.Sprintf("### %s (%s)\n\n", v.RuleName, caser.String(domain.SeverityBucket(v.Score))))
		b.WriteString(fmt.Sprintf("- File: %s:%d\n", v.FilePath, v.LineNumber))
		b.WriteString(fmt.Sprintf("- Score: %d\n", v.Score))
		b.WriteString(fmt.Sprintf("- Model: %s\n\n", v.ModelUsed))
		b.WriteString(v.Comment)
		b.WriteString("\n\n")
	}

	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
