package domain

// FocusType distinguishes whole-hunk review units from subdivided ones.
type FocusType string

const (
	FocusFile   FocusType = "file"
	FocusMethod FocusType = "method"
)

// FocusArea is a reviewable sub-region of a single hunk.
//
// StartLine and EndLine are both new-file-numbering, inclusive. Invariant:
// StartLine <= EndLine and the range lies within the enclosing hunk.
type FocusArea struct {
	FocusID     string    `json:"focus_id"`
	FilePath    string    `json:"file_path"`
	StartLine   int       `json:"start_line"`
	EndLine     int       `json:"end_line"`
	Description string    `json:"description"`
	HunkIndex   int       `json:"hunk_index"`
	HunkContent string    `json:"hunk_content"`
	FocusType   FocusType `json:"focus_type"`
}
