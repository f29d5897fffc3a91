// Package effective implements C3: re-diffing the extended neighborhood of
// each detected move and reconstructing a reduced "effective diff" that
// drops the move's source hunk and replaces its target hunk with the
// residual re-diff. The reconstruction classification loop is original to
// this pipeline; it is built from the same hunk/line primitives C1 exposes.
package effective

import (
	"context"
	"fmt"

	"github.com/prradar/pipeline/internal/diffmodel"
	"github.com/prradar/pipeline/internal/domain"
)

// RediffOracle re-diffs two text blobs and returns unified diff text. The
// concrete adapter may shell out to `git diff --no-index` or any other
// re-diff engine; this package only depends on the port.
type RediffOracle interface {
	Rediff(ctx context.Context, oldText, newText, oldLabel, newLabel string) (string, error)
}

// Options configures the effective-diff pass.
type Options struct {
	// ContextLines is C in the spec: how far beyond the matched span the
	// re-diff neighborhood extends. Zero defaults to 3.
	ContextLines int
	// Proximity bounds which residual hunks survive trimming. Zero defaults
	// to 3.
	Proximity int
}

func (o Options) contextLines() int {
	if o.ContextLines <= 0 {
		return 3
	}
	return o.ContextLines
}

func (o Options) proximity() int {
	if o.Proximity <= 0 {
		return 3
	}
	return o.Proximity
}

// FileContents maps a file path to its full pre- and post-change text.
type FileContents struct {
	Old map[string]string
	New map[string]string
}

// Result is the effective diff plus the move report and any per-candidate
// diagnostics (oracle failures that caused a candidate to be skipped).
type Result struct {
	Diff        domain.GitDiff
	MoveReport  domain.MoveReport
	Diagnostics []string
}

// consumed is the per-candidate outcome: the trimmed residual hunks it
// contributes to the reconstructed diff, plus its MoveDetail.
type consumed struct {
	candidate domain.MoveCandidate
	hunks     []domain.Hunk
	detail    domain.MoveDetail
}

// Build runs C3 over diff using the moves already identified by C2, the full
// file contents needed to extract each candidate's extended neighborhood,
// and a re-diff oracle.
func Build(ctx context.Context, diff domain.GitDiff, candidates []domain.MoveCandidate, contents FileContents, oracle RediffOracle, opts Options) (Result, error) {
	consumedByCandidate := make(map[int]consumed, len(candidates))
	var diagnostics []string

	for i, cand := range candidates {
		c, ok, diag := rediffCandidate(ctx, cand, contents, oracle, opts)
		if diag != "" {
			diagnostics = append(diagnostics, diag)
		}
		if !ok {
			continue
		}
		consumedByCandidate[i] = c
	}

	reconstructed, report := reconstruct(diff, candidates, consumedByCandidate)
	return Result{Diff: reconstructed, MoveReport: report, Diagnostics: diagnostics}, nil
}

// rediffCandidate re-diffs the extended neighborhood of one candidate and
// trims the result to the candidate's target span. ok is false when the
// oracle failed or timed out; the candidate is then left unconsumed and its
// original hunks survive unchanged per §4.3's failure handling.
func rediffCandidate(ctx context.Context, cand domain.MoveCandidate, contents FileContents, oracle RediffOracle, opts Options) (consumed, bool, string) {
	srcStart, srcEnd := cand.SourceRange()
	tgtStart, tgtEnd := cand.TargetRange()
	c := opts.contextLines()

	oldText, oldOK := contents.Old[cand.SourceFile]
	newText, newOK := contents.New[cand.TargetFile]
	if !oldOK || !newOK {
		return consumed{}, false, fmt.Sprintf("move %s->%s: missing file contents for re-diff", cand.SourceFile, cand.TargetFile)
	}

	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	oldRegionStart, oldRegionEnd := clampRange(srcStart-c, srcEnd+c, len(oldLines))
	newRegionStart, newRegionEnd := clampRange(tgtStart-c, tgtEnd+c, len(newLines))

	oldRegion := joinLines(oldLines, oldRegionStart, oldRegionEnd)
	newRegion := joinLines(newLines, newRegionStart, newRegionEnd)

	rawDiff, err := oracle.Rediff(ctx, oldRegion, newRegion, cand.SourceFile, cand.TargetFile)
	if err != nil {
		return consumed{}, false, fmt.Sprintf("move %s->%s: rediff oracle failed: %v", cand.SourceFile, cand.TargetFile, err)
	}

	interior, err := diffmodel.Parse(rawDiff, "")
	if err != nil {
		return consumed{}, false, fmt.Sprintf("move %s->%s: rediff output unparsable: %v", cand.SourceFile, cand.TargetFile, err)
	}

	trimmed := trimHunks(interior.Hunks, cand.TargetFile, oldRegionStart, newRegionStart, tgtStart, tgtEnd, opts.proximity())

	var effectiveLines int
	for _, h := range trimmed {
		for _, dl := range h.DiffLines {
			if dl.Kind == domain.LineAdded || dl.Kind == domain.LineRemoved {
				effectiveLines++
			}
		}
	}

	detail := domain.MoveDetail{
		SourceFile:         cand.SourceFile,
		TargetFile:         cand.TargetFile,
		SourceLines:        [2]int{srcStart, srcEnd},
		TargetLines:        [2]int{tgtStart, tgtEnd},
		MatchedLines:       cand.MatchedLines(),
		Score:              cand.Score,
		EffectiveDiffLines: effectiveLines,
	}

	return consumed{candidate: cand, hunks: trimmed, detail: detail}, true, ""
}

// trimHunks keeps interior hunks whose absolute new-side range, once
// projected back through the region offset, overlaps the candidate's target
// span widened by proximity. Kept hunks are rehomed from region-relative to
// absolute file coordinates throughout — OldStart, NewStart, and every
// DiffLine's line numbers — not just FilePath, so downstream consumers (C4
// focus areas built from the effective diff) see real file line numbers
// instead of offsets into the re-diffed region.
func trimHunks(hunks []domain.Hunk, targetFile string, oldRegionStart, newRegionStart, tgtStart, tgtEnd, proximity int) []domain.Hunk {
	lo := tgtStart - proximity
	hi := tgtEnd + proximity

	var out []domain.Hunk
	for _, h := range hunks {
		absStart := newRegionStart + h.NewStart - 1
		absEnd := newRegionStart + h.NewEnd() - 1
		if absEnd < lo || absStart > hi {
			continue
		}
		rehomed := h
		rehomed.FilePath = targetFile
		rehomed.OldStart = oldRegionStart + h.OldStart - 1
		rehomed.NewStart = newRegionStart + h.NewStart - 1
		if h.DiffLines != nil {
			lines := make([]domain.DiffLine, len(h.DiffLines))
			for i, dl := range h.DiffLines {
				rehomedLine := dl
				if dl.OldLineNumber != nil {
					n := oldRegionStart + *dl.OldLineNumber - 1
					rehomedLine.OldLineNumber = &n
				}
				if dl.NewLineNumber != nil {
					n := newRegionStart + *dl.NewLineNumber - 1
					rehomedLine.NewLineNumber = &n
				}
				lines[i] = rehomedLine
			}
			rehomed.DiffLines = lines
		}
		out = append(out, rehomed)
	}
	return out
}

func clampRange(start, end, length int) (int, int) {
	if start < 1 {
		start = 1
	}
	if end > length {
		end = length
	}
	if end < start {
		end = start
	}
	return start, end
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func joinLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if end < start {
		return ""
	}
	out := ""
	for i := start; i <= end; i++ {
		out += lines[i-1] + "\n"
	}
	return out
}
