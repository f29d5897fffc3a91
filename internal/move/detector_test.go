package move_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/diffmodel"
	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/move"
)

const movedBlockDiff = `diff --git a/source.go b/source.go
--- a/source.go
+++ b/source.go
@@ -10,5 +10,2 @@
 func caller() {
-	validateInput(x)
-	normalize(x)
-	persist(x)
 }
diff --git a/target.go b/target.go
--- a/target.go
+++ b/target.go
@@ -20,2 +20,5 @@
 func helper() {
+	validateInput(x)
+	normalize(x)
+	persist(x)
 }
`

func TestDetect_SingleMove(t *testing.T) {
	diff, err := diffmodel.Parse(movedBlockDiff, "")
	require.NoError(t, err)

	candidates := move.Detect(diff, move.Options{MinRunLength: 2})
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "source.go", c.SourceFile)
	assert.Equal(t, "target.go", c.TargetFile)
	assert.Equal(t, 3, c.MatchedLines())
	assert.InDelta(t, 1.0, c.Score, 0.0001)
}

func TestDetect_NoMoveBelowMinLength(t *testing.T) {
	diff, err := diffmodel.Parse(movedBlockDiff, "")
	require.NoError(t, err)

	candidates := move.Detect(diff, move.Options{MinRunLength: 10})
	assert.Empty(t, candidates)
}

func TestDetect_Conservation(t *testing.T) {
	diff, err := diffmodel.Parse(movedBlockDiff, "")
	require.NoError(t, err)

	var removedLines, addedLines int
	for _, h := range diff.Hunks {
		for _, dl := range h.DiffLines {
			switch dl.Kind {
			case domain.LineRemoved:
				removedLines++
			case domain.LineAdded:
				addedLines++
			}
		}
	}

	candidates := move.Detect(diff, move.Options{})
	var totalMoved int
	for _, c := range candidates {
		totalMoved += c.MatchedLines()
	}
	assert.LessOrEqual(t, totalMoved, removedLines)
	assert.LessOrEqual(t, totalMoved, addedLines)
}

func TestDetect_Idempotent(t *testing.T) {
	diff, err := diffmodel.Parse(movedBlockDiff, "")
	require.NoError(t, err)

	first := move.Detect(diff, move.Options{})
	second := move.Detect(diff, move.Options{})
	assert.Equal(t, first, second)
}
