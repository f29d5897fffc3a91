package diffmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/diffmodel"
	"github.com/prradar/pipeline/internal/domain"
)

func TestRenderMarkdown_IncludesFileSectionAndHunkHeader(t *testing.T) {
	diff, err := diffmodel.Parse(simpleDiff, "deadbeef")
	require.NoError(t, err)

	md := diffmodel.RenderMarkdown(diff)

	assert.Contains(t, md, "Commit: `deadbeef`")
	assert.Contains(t, md, "## greeting.go")
	assert.Contains(t, md, "@@ -1,5 +1,6 @@")
	assert.Contains(t, md, "-\treturn \"hi\"")
	assert.Contains(t, md, "+\treturn \"hi, \" + name")
}

func TestRenderMarkdown_EmptyDiff(t *testing.T) {
	md := diffmodel.RenderMarkdown(domain.GitDiff{})
	assert.Equal(t, "# Diff\n\n", md)
}
