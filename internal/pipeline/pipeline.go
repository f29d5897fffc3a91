// Package pipeline wires C1-C8 into the sequencer.PhaseFunc values the CLI
// layer drives, grounded on bkyoung's orchestrator.go: one facade function
// per phase, each reading its predecessors' artifacts straight off disk
// (the sequencer is the only thing that knows phase order) and writing its
// own artifacts atomically via fsutil.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/prradar/pipeline/internal/fsutil"
)

// readJSONFile is a small helper around fsutil.ReadJSON for artifacts that
// may legitimately not exist yet (returns ok=false rather than erroring).
func readJSONFile(path string, v any) (bool, error) {
	if !fsutil.Exists(path) {
		return false, nil
	}
	if err := fsutil.ReadJSON(path, v); err != nil {
		return false, err
	}
	return true, nil
}

// listJSONArtifacts returns the parsed base names (without ".json") of every
// *.json file directly under dir, excluding the bookkeeping files the
// sequencer itself writes.
func listJSONArtifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		switch e.Name() {
		case "phase_result.json", "summary.json", "all-rules.json":
			continue
		}
		names = append(names, e.Name()[:len(e.Name())-len(".json")])
	}
	sort.Strings(names)
	return names, nil
}

// writeJSONNamed marshals v as pretty, key-sorted JSON (encoding/json sorts
// map keys already; struct field order is preserved, matching §6's
// "pretty-printed, keys sorted" requirement for map-shaped payloads) and
// writes it atomically under dir/name.json.
func writeJSONNamed(dir, name string, v any) error {
	return fsutil.WriteJSON(filepath.Join(dir, name+".json"), v)
}

// marshalIndent renders v as two-space-indented JSON. Nothing in this package
// calls it; diff-parsed.md is rendered by diffmodel's Markdown renderer.
func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

var errArtifactMissing = fmt.Errorf("required predecessor artifact missing")

func requireArtifact[T any](path string, out *T) error {
	ok, err := readJSONFile(path, out)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", errArtifactMissing, path)
	}
	return nil
}
