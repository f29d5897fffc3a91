package diffmodel

import (
	"fmt"
	"strings"

	"github.com/prradar/pipeline/internal/domain"
)

// RenderMarkdown renders a GitDiff as a fenced-diff Markdown document, one
// section per file, the human-readable counterpart to diff-parsed.json and
// effective-diff-parsed.json per §4.9's directory layout.
func RenderMarkdown(d domain.GitDiff) string {
	var b strings.Builder
	b.WriteString("# Diff\n\n")
	if d.CommitHash != "" {
		b.WriteString(fmt.Sprintf("Commit: `%s`\n\n", d.CommitHash))
	}

	for _, file := range d.ChangedFiles() {
		b.WriteString(fmt.Sprintf("## %s\n\n", file))
		b.WriteString("```diff\n")
		for _, idx := range d.HunksForFile(file) {
			h := d.Hunks[idx]
			b.WriteString(fmt.Sprintf("@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLength, h.NewStart, h.NewLength))
			for _, line := range h.DiffLines {
				b.WriteString(linePrefix(line.Kind))
				b.WriteString(line.Content)
				b.WriteString("\n")
			}
		}
		b.WriteString("```\n\n")
	}
	return b.String()
}

func linePrefix(kind domain.LineKind) string {
	switch kind {
	case domain.LineAdded:
		return "+"
	case domain.LineRemoved:
		return "-"
	default:
		return " "
	}
}
