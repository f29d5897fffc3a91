// Package domain holds the data model shared by every phase of the pipeline.
// Entities here are immutable once produced: a phase writes them to disk and
// every later phase only ever reads them back.
package domain

// LineKind classifies a single line of a hunk body.
type LineKind string

const (
	LineContext LineKind = "context"
	LineAdded   LineKind = "added"
	LineRemoved LineKind = "removed"
)

// DiffLine is one source line of a hunk.
//
// OldLineNumber is absent (nil) for additions; NewLineNumber is absent for
// removals. Content never carries the leading +/-/space prefix.
type DiffLine struct {
	Kind          LineKind `json:"kind"`
	Content       string   `json:"content"`
	OldLineNumber *int     `json:"old_line_number,omitempty"`
	NewLineNumber *int     `json:"new_line_number,omitempty"`
}

// Hunk is a contiguous change region inside one file version.
//
// Invariant: the count of {context,removed} lines equals OldLength, and the
// count of {context,added} lines equals NewLength.
type Hunk struct {
	FilePath   string     `json:"file_path"`
	RenameFrom string     `json:"rename_from,omitempty"`
	OldStart   int        `json:"old_start"`
	OldLength  int        `json:"old_length"`
	NewStart   int        `json:"new_start"`
	NewLength  int        `json:"new_length"`
	DiffLines  []DiffLine `json:"diff_lines"`
}

// NewEnd returns the last new-side line number covered by the hunk.
func (h Hunk) NewEnd() int {
	if h.NewLength == 0 {
		return h.NewStart
	}
	return h.NewStart + h.NewLength - 1
}

// OldEnd returns the last old-side line number covered by the hunk.
func (h Hunk) OldEnd() int {
	if h.OldLength == 0 {
		return h.OldStart
	}
	return h.OldStart + h.OldLength - 1
}

// GitDiff is an ordered sequence of hunks plus the commit the diff was taken
// against.
type GitDiff struct {
	CommitHash string `json:"commit_hash,omitempty"`
	Hunks      []Hunk `json:"hunks"`
}

// ChangedFiles returns the preserved-order unique set of hunk file paths.
func (d GitDiff) ChangedFiles() []string {
	seen := make(map[string]struct{}, len(d.Hunks))
	var files []string
	for _, h := range d.Hunks {
		if _, ok := seen[h.FilePath]; ok {
			continue
		}
		seen[h.FilePath] = struct{}{}
		files = append(files, h.FilePath)
	}
	return files
}

// HunksForFile returns the indices, in order, of hunks belonging to path.
func (d GitDiff) HunksForFile(path string) []int {
	var idx []int
	for i, h := range d.Hunks {
		if h.FilePath == path {
			idx = append(idx, i)
		}
	}
	return idx
}
