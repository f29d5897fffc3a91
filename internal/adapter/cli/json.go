package cli

import (
	"encoding/json"
	"io"
)

// writeJSON pretty-prints v to w, per §6's "all JSON is UTF-8,
// pretty-printed" output contract for --json mode.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
