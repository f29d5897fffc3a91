// Package fsutil provides the on-disk write primitives every phase relies
// on: atomic-rename writes for durability and an advisory lockfile to keep
// concurrent runs against the same PR directory from racing each other.
package fsutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteFile writes data to path via a temp-file-then-rename sequence,
// fsyncing the temp file before the rename so the write survives a crash
// between the two steps.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing temp file for %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("fsyncing temp file for %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming temp file into place for %s: %w", path, err)
	}
	return nil
}

// WriteJSON pretty-prints v with encoding/json and writes it atomically.
// Map keys come out sorted; struct fields keep their declaration order and
// are not sorted.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return WriteFile(path, buf.Bytes(), 0o644)
}

// ReadJSON decodes the JSON file at path into v with encoding/json's default
// field matching: a key matches a snake_case struct tag exactly or
// case-insensitively. Underscores are not ignored, so camelCase keys such as
// "filePath" do not match a "file_path" tag and are dropped.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// SanitizeFilename flattens an identifier that may carry path separators
// (e.g. a task_id built from a rule's slash-preserving relative-path name,
// per §4.5) into a single filename component, so artifacts land directly
// under a phase's flat output directory instead of silently nesting into
// subdirectories that the phase's own non-recursive directory listing would
// then miss on read-back.
func SanitizeFilename(id string) string {
	return strings.ReplaceAll(id, "/", "_")
}

// Exists reports whether path names a regular file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// RemoveOrphanedTemp globs <dir>/*.tmp and removes anything left over from a
// killed process. The atomic-rename contract already guarantees readers
// never observe a partial file, but a crash between write and rename can
// leave one of these around; this is pure housekeeping.
func RemoveOrphanedTemp(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		return nil, fmt.Errorf("globbing orphaned temp files in %s: %w", dir, err)
	}
	var removed []string
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("removing orphaned temp file %s: %w", m, err)
		}
		removed = append(removed, m)
	}
	return removed, nil
}
