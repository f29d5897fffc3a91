package sequencer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/fsutil"
	"github.com/prradar/pipeline/internal/sequencer"
)

func TestRun_RejectsWhenPredecessorIncomplete(t *testing.T) {
	root := t.TempDir()
	l := sequencer.NewLayout(root, "org-repo", 42)

	_, err := sequencer.Run(context.Background(), l, domain.PhaseFocusAreas, func(ctx context.Context) (domain.PhaseStats, error) {
		t.Fatal("phase function should not run")
		return domain.PhaseStats{}, nil
	}, sequencer.Options{})

	require.Error(t, err)
	var depErr *sequencer.ErrDependencyUnmet
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, domain.PhasePullRequest, depErr.Predecessor)
}

func TestRun_SucceedsAndWritesMarker(t *testing.T) {
	root := t.TempDir()
	l := sequencer.NewLayout(root, "org-repo", 42)

	result, err := sequencer.Run(context.Background(), l, domain.PhasePullRequest, func(ctx context.Context) (domain.PhaseStats, error) {
		return domain.PhaseStats{ArtifactsProduced: 3}, nil
	}, sequencer.Options{})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.True(t, fsutil.Exists(l.ResultPath(domain.PhasePullRequest)))
	assert.Equal(t, domain.StatusComplete, sequencer.Status(l, domain.PhasePullRequest))
}

func TestRun_IsNoOpWhenAlreadyComplete(t *testing.T) {
	root := t.TempDir()
	l := sequencer.NewLayout(root, "org-repo", 42)

	calls := 0
	run := func(ctx context.Context) (domain.PhaseStats, error) {
		calls++
		return domain.PhaseStats{}, nil
	}

	_, err := sequencer.Run(context.Background(), l, domain.PhasePullRequest, run, sequencer.Options{})
	require.NoError(t, err)
	_, err = sequencer.Run(context.Background(), l, domain.PhasePullRequest, run, sequencer.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestRun_RecordsFailure(t *testing.T) {
	root := t.TempDir()
	l := sequencer.NewLayout(root, "org-repo", 42)

	_, err := sequencer.Run(context.Background(), l, domain.PhasePullRequest, func(ctx context.Context) (domain.PhaseStats, error) {
		return domain.PhaseStats{}, assertErr
	}, sequencer.Options{})

	require.Error(t, err)
	assert.Equal(t, domain.StatusFailedState, sequencer.Status(l, domain.PhasePullRequest))
}

var assertErr = &sentinel{"boom"}

type sentinel struct{ msg string }

func (s *sentinel) Error() string { return s.msg }
