// Package diffmodel implements C1: parsing a unified diff into the GitDiff
// data model and projecting new-file line numbers back onto diff lines.
//
// The core line-accounting algorithm (tracking both old- and new-side line
// numbers for every line kind, and reporting malformed headers with the
// offending file and line offset) is grounded on a reference unidiff parser
// from the retrieval pack rather than the teacher's own single-file parser,
// because the teacher only tracks new-side line numbers and cannot satisfy
// the context-line invariant this pipeline requires.
package diffmodel

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/prradar/pipeline/internal/domain"
)

// ParseError names the offending file and the 1-based line offset within the
// raw diff text where parsing failed.
type ParseError struct {
	File       string
	LineOffset int
	Msg        string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("diff parse error in %s at line %d: %s", e.File, e.LineOffset, e.Msg)
	}
	return fmt.Sprintf("diff parse error at line %d: %s", e.LineOffset, e.Msg)
}

type parseState struct {
	hunks       []domain.Hunk
	currentFile string
	oldPath     string
	newPath     string
	renameFrom  string
	binary      bool
	hunk        *domain.Hunk
	oldLine     int
	newLine     int
	lineOffset  int
}

// Parse converts unified diff text into a GitDiff. commitHash is attached
// verbatim; pass "" when unknown.
func Parse(raw string, commitHash string) (domain.GitDiff, error) {
	st := &parseState{}
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		st.lineOffset++

		switch {
		case strings.HasPrefix(line, "diff --git "):
			if err := st.flushFile(); err != nil {
				return domain.GitDiff{}, err
			}
			st.resetFile()
			st.oldPath, st.newPath = parseGitHeaderPaths(line)
			st.currentFile = st.newPath

		case strings.HasPrefix(line, "rename from "):
			st.renameFrom = strings.TrimPrefix(line, "rename from ")

		case strings.HasPrefix(line, "rename to "):
			st.currentFile = strings.TrimPrefix(line, "rename to ")

		case strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ"):
			st.binary = true

		case strings.HasPrefix(line, "--- "):
			p := strings.TrimPrefix(line, "--- ")
			if p != "/dev/null" {
				st.oldPath = stripGitPrefix(p)
			}

		case strings.HasPrefix(line, "+++ "):
			p := strings.TrimPrefix(line, "+++ ")
			if p != "/dev/null" {
				st.newPath = stripGitPrefix(p)
				st.currentFile = st.newPath
			}

		case strings.HasPrefix(line, "@@"):
			if err := st.flushHunk(); err != nil {
				return domain.GitDiff{}, err
			}
			h, err := parseHunkHeader(line, st.currentFile, st.lineOffset)
			if err != nil {
				return domain.GitDiff{}, err
			}
			st.hunk = h
			st.oldLine = h.OldStart
			st.newLine = h.NewStart

		case strings.HasPrefix(line, `\ No newline at end of file`):
			// Informational only; does not affect line accounting.

		case st.hunk != nil:
			if err := st.appendBodyLine(line); err != nil {
				return domain.GitDiff{}, err
			}

		default:
			// Lines outside any hunk and not a recognized header (e.g. the
			// "index <sha>..<sha> <mode>" line) are ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.GitDiff{}, &ParseError{File: st.currentFile, LineOffset: st.lineOffset, Msg: err.Error()}
	}
	if err := st.flushFile(); err != nil {
		return domain.GitDiff{}, err
	}

	return domain.GitDiff{CommitHash: commitHash, Hunks: st.hunks}, nil
}

func (st *parseState) resetFile() {
	st.oldPath = ""
	st.newPath = ""
	st.renameFrom = ""
	st.binary = false
	st.hunk = nil
}

// flushHunk appends the in-progress hunk, if any, to the file's hunk list.
func (st *parseState) flushHunk() error {
	if st.hunk == nil {
		return nil
	}
	if err := validateHunkLengths(st.hunk); err != nil {
		return &ParseError{File: st.hunk.FilePath, LineOffset: st.lineOffset, Msg: err.Error()}
	}
	st.hunks = append(st.hunks, *st.hunk)
	st.hunk = nil
	return nil
}

// flushFile closes out the current file: if it never produced a hunk (pure
// rename or binary file), a marker hunk with empty diff_lines is emitted.
func (st *parseState) flushFile() error {
	if err := st.flushHunk(); err != nil {
		return err
	}
	if st.currentFile == "" {
		return nil
	}
	if len(st.hunksForCurrentFile()) == 0 && (st.renameFrom != "" || st.binary) {
		st.hunks = append(st.hunks, domain.Hunk{
			FilePath:   st.currentFile,
			RenameFrom: st.renameFrom,
			DiffLines:  nil,
		})
	}
	return nil
}

func (st *parseState) hunksForCurrentFile() []domain.Hunk {
	var out []domain.Hunk
	for _, h := range st.hunks {
		if h.FilePath == st.currentFile {
			out = append(out, h)
		}
	}
	return out
}

func (st *parseState) appendBodyLine(line string) error {
	h := st.hunk
	if line == "" {
		// A blank line inside a hunk body is a context line with empty content.
		line = " "
	}
	prefix, content := line[0], line[1:]
	var dl domain.DiffLine
	switch prefix {
	case '+':
		dl = domain.DiffLine{Kind: domain.LineAdded, Content: content, NewLineNumber: intPtr(st.newLine)}
		st.newLine++
	case '-':
		dl = domain.DiffLine{Kind: domain.LineRemoved, Content: content, OldLineNumber: intPtr(st.oldLine)}
		st.oldLine++
	case ' ':
		dl = domain.DiffLine{
			Kind:          domain.LineContext,
			Content:       content,
			OldLineNumber: intPtr(st.oldLine),
			NewLineNumber: intPtr(st.newLine),
		}
		st.oldLine++
		st.newLine++
	default:
		return &ParseError{File: h.FilePath, LineOffset: st.lineOffset, Msg: fmt.Sprintf("unexpected hunk body prefix %q", string(prefix))}
	}
	h.DiffLines = append(h.DiffLines, dl)
	return nil
}

func intPtr(n int) *int { return &n }

func stripGitPrefix(p string) string {
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}

func parseGitHeaderPaths(line string) (oldPath, newPath string) {
	rest := strings.TrimPrefix(line, "diff --git ")
	fields := strings.Fields(rest)
	if len(fields) >= 2 {
		return stripGitPrefix(fields[0]), stripGitPrefix(fields[1])
	}
	return "", ""
}

func parseHunkHeader(line, file string, offset int) (*domain.Hunk, error) {
	// Format: @@ -old_start,old_length +new_start,new_length @@ optional-context
	parts := strings.SplitN(line, "@@", 3)
	if len(parts) < 2 {
		return nil, &ParseError{File: file, LineOffset: offset, Msg: "malformed hunk header: missing @@ delimiters"}
	}
	ranges := strings.Fields(parts[1])
	if len(ranges) != 2 {
		return nil, &ParseError{File: file, LineOffset: offset, Msg: fmt.Sprintf("malformed hunk header: expected two ranges, got %q", parts[1])}
	}
	oldStart, oldLen, err := parseRange(ranges[0], '-')
	if err != nil {
		return nil, &ParseError{File: file, LineOffset: offset, Msg: fmt.Sprintf("malformed old range %q: %v", ranges[0], err)}
	}
	newStart, newLen, err := parseRange(ranges[1], '+')
	if err != nil {
		return nil, &ParseError{File: file, LineOffset: offset, Msg: fmt.Sprintf("malformed new range %q: %v", ranges[1], err)}
	}
	return &domain.Hunk{
		FilePath:  file,
		OldStart:  oldStart,
		OldLength: oldLen,
		NewStart:  newStart,
		NewLength: newLen,
	}, nil
}

func parseRange(field string, want byte) (start, length int, err error) {
	if len(field) == 0 || field[0] != want {
		return 0, 0, fmt.Errorf("expected leading %q", string(want))
	}
	field = field[1:]
	startStr, lenStr, hasComma := strings.Cut(field, ",")
	start, err = strconv.Atoi(startStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start: %w", err)
	}
	if !hasComma {
		return start, 1, nil
	}
	length, err = strconv.Atoi(lenStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid length: %w", err)
	}
	return start, length, nil
}

// validateHunkLengths checks the invariant that {context,removed} count ==
// OldLength and {context,added} count == NewLength.
func validateHunkLengths(h *domain.Hunk) error {
	var oldCount, newCount int
	for _, dl := range h.DiffLines {
		switch dl.Kind {
		case domain.LineContext:
			oldCount++
			newCount++
		case domain.LineRemoved:
			oldCount++
		case domain.LineAdded:
			newCount++
		}
	}
	if oldCount != h.OldLength {
		return fmt.Errorf("hunk @@ -%d,%d +%d,%d @@: old-side line count mismatch: header says %d, counted %d", h.OldStart, h.OldLength, h.NewStart, h.NewLength, h.OldLength, oldCount)
	}
	if newCount != h.NewLength {
		return fmt.Errorf("hunk @@ -%d,%d +%d,%d @@: new-side line count mismatch: header says %d, counted %d", h.OldStart, h.OldLength, h.NewStart, h.NewLength, h.NewLength, newCount)
	}
	return nil
}
