package focus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/diffmodel"
	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/focus"
)

const simpleDiff = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -10,3 +10,4 @@
 func run() {
-	old()
+	newCall()
+	another()
 }
`

func TestGenerate_FileLevel(t *testing.T) {
	diff, err := diffmodel.Parse(simpleDiff, "")
	require.NoError(t, err)

	areas, err := focus.Generate(diff, nil)
	require.NoError(t, err)
	require.Len(t, areas, 1)

	a := areas[0]
	assert.Equal(t, "main.go", a.FilePath)
	assert.Equal(t, domain.FocusFile, a.FocusType)
	assert.Len(t, a.FocusID, 16)
	assert.Contains(t, a.HunkContent, "newCall()")
}

func TestGenerate_MethodLevel(t *testing.T) {
	diff, err := diffmodel.Parse(simpleDiff, "")
	require.NoError(t, err)

	subdivide := func(h domain.Hunk) []focus.MethodRegion {
		return []focus.MethodRegion{{StartLine: h.NewStart, EndLine: h.NewEnd(), Description: "run"}}
	}

	areas, err := focus.Generate(diff, subdivide)
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, domain.FocusFile, areas[0].FocusType)
	assert.Equal(t, domain.FocusMethod, areas[1].FocusType)
	assert.NotEqual(t, areas[0].FocusID, areas[1].FocusID)
}

func TestGenerate_SkipsMarkerHunks(t *testing.T) {
	diff := domain.GitDiff{Hunks: []domain.Hunk{{FilePath: "renamed.go", RenameFrom: "old.go"}}}

	areas, err := focus.Generate(diff, nil)
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestGenerate_StableIDs(t *testing.T) {
	diff, err := diffmodel.Parse(simpleDiff, "")
	require.NoError(t, err)

	first, err := focus.Generate(diff, nil)
	require.NoError(t, err)
	second, err := focus.Generate(diff, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
