package rules

import (
	"strings"

	"github.com/adrg/frontmatter"
)

// rawFormat hands the delimiter-split frontmatter block back as raw bytes
// instead of letting the library unmarshal it. The loader decodes that
// block itself with the minimal YAML subset in yamlsubset.go, since the
// spec requires rejecting out-of-subset constructs with a precise line
// number — something a general-purpose YAML decoder will not do.
var rawFormat = frontmatter.NewFormat("YAML", []byte("---"), []byte("---"), func(data []byte, v any) error {
	out, ok := v.(*[]byte)
	if !ok {
		return errUnexpectedTarget
	}
	*out = append([]byte(nil), data...)
	return nil
})

var errUnexpectedTarget = &frontmatterTargetError{}

type frontmatterTargetError struct{}

func (*frontmatterTargetError) Error() string { return "frontmatter: expected *[]byte target" }

// splitFrontmatter separates a `---`-delimited frontmatter block from the
// document body. When no frontmatter is present, the whole document is
// returned as the body and fm is nil.
func splitFrontmatter(content string) (fm map[string]any, body string, err error) {
	var raw []byte
	bodyBytes, parseErr := frontmatter.Parse(strings.NewReader(content), &raw, rawFormat)
	if parseErr != nil {
		return nil, content, nil
	}
	decoded, err := parseYAMLSubset(raw)
	if err != nil {
		return nil, "", err
	}
	return decoded, string(bodyBytes), nil
}
