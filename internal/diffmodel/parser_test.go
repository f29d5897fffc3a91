package diffmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/diffmodel"
	"github.com/prradar/pipeline/internal/domain"
)

const simpleDiff = `diff --git a/greeting.go b/greeting.go
index 1111111..2222222 100644
--- a/greeting.go
+++ b/greeting.go
@@ -1,5 +1,6 @@
 package main

-func Greet() string {
-	return "hi"
+func Greet(name string) string {
+	return "hi, " + name
 }
+
`

func TestParse_RoundTrip(t *testing.T) {
	diff, err := diffmodel.Parse(simpleDiff, "deadbeef")
	require.NoError(t, err)
	require.Len(t, diff.Hunks, 1)

	h := diff.Hunks[0]
	assert.Equal(t, "greeting.go", h.FilePath)
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 5, h.OldLength)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 6, h.NewLength)

	var oldCount, newCount int
	for _, dl := range h.DiffLines {
		switch dl.Kind {
		case domain.LineContext:
			require.NotNil(t, dl.OldLineNumber)
			require.NotNil(t, dl.NewLineNumber)
			oldCount++
			newCount++
		case domain.LineRemoved:
			require.NotNil(t, dl.OldLineNumber)
			require.Nil(t, dl.NewLineNumber)
			oldCount++
		case domain.LineAdded:
			require.NotNil(t, dl.NewLineNumber)
			require.Nil(t, dl.OldLineNumber)
			newCount++
		}
	}
	assert.Equal(t, h.OldLength, oldCount, "old-side line count must equal header old_length")
	assert.Equal(t, h.NewLength, newCount, "new-side line count must equal header new_length")
}

func TestParse_ProjectionLaw(t *testing.T) {
	diff, err := diffmodel.Parse(simpleDiff, "")
	require.NoError(t, err)
	h := diff.Hunks[0]

	for _, dl := range h.DiffLines {
		if dl.NewLineNumber == nil {
			continue
		}
		idx, err := diffmodel.FindByNewLine(h, 0, *dl.NewLineNumber)
		require.NoError(t, err)
		require.GreaterOrEqual(t, idx, 0)
		assert.Equal(t, dl.Content, h.DiffLines[idx].Content)
	}

	idx, err := diffmodel.FindByNewLine(h, 0, 9999)
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

const renameOnlyDiff = `diff --git a/old_name.go b/new_name.go
similarity index 100%
rename from old_name.go
rename to new_name.go
`

func TestParse_PureRename(t *testing.T) {
	diff, err := diffmodel.Parse(renameOnlyDiff, "")
	require.NoError(t, err)
	require.Len(t, diff.Hunks, 1)

	h := diff.Hunks[0]
	assert.Equal(t, "new_name.go", h.FilePath)
	assert.Equal(t, "old_name.go", h.RenameFrom)
	assert.Empty(t, h.DiffLines)
}

const binaryDiff = `diff --git a/logo.png b/logo.png
index 3333333..4444444 100644
Binary files a/logo.png and b/logo.png differ
`

func TestParse_BinaryFile(t *testing.T) {
	diff, err := diffmodel.Parse(binaryDiff, "")
	require.NoError(t, err)
	require.Len(t, diff.Hunks, 1)
	assert.Equal(t, "logo.png", diff.Hunks[0].FilePath)
	assert.Empty(t, diff.Hunks[0].DiffLines)
}

func TestParse_MultipleFiles(t *testing.T) {
	combined := simpleDiff + binaryDiff
	diff, err := diffmodel.Parse(combined, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"greeting.go", "logo.png"}, diff.ChangedFiles())
}

func TestParse_MalformedHunkHeader(t *testing.T) {
	bad := `diff --git a/f.go b/f.go
--- a/f.go
+++ b/f.go
@@ not-a-range @@
 package main
`
	_, err := diffmodel.Parse(bad, "")
	require.Error(t, err)
	var perr *diffmodel.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "f.go", perr.File)
}
