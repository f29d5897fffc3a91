package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prradar/pipeline/internal/diffmodel"
	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/effective"
	"github.com/prradar/pipeline/internal/fsutil"
	"github.com/prradar/pipeline/internal/move"
	"github.com/prradar/pipeline/internal/sequencer"
)

// DiffOracle is the phase-1 diff/content source, implemented concretely by
// internal/adapter/git.Engine against a local clone.
type DiffOracle interface {
	CumulativeDiff(baseRef, targetRef string) (diffText, commitHash string, err error)
	ResolveCommit(ref string) (string, error)
	FileContents(commitHash, path string) (string, error)
}

// PRContextOracle fetches the upstream pull request context §6 lists
// alongside the diff. Optional: a nil PRContext in DiffOptions skips the
// gh-*.json artifacts entirely (the diff itself never depends on them).
type PRContextOracle interface {
	FetchPR(ctx context.Context, owner, repo string, number int) (domain.PRMetadata, error)
	FetchComments(ctx context.Context, owner, repo string, number int) ([]domain.ReviewComment, error)
	FetchRepo(ctx context.Context, owner, repo string) (domain.RepoInfo, error)
}

// DiffOptions configures the phase-1 run.
type DiffOptions struct {
	BaseRef   string
	TargetRef string
	Move      move.Options
	Effective effective.Options

	// PRContext, Owner, Repo, and PRNumber are optional; when PRContext is
	// non-nil the phase additionally snapshots gh-pr.json, gh-comments.json,
	// and gh-repo.json.
	PRContext PRContextOracle
	Owner     string
	Repo      string
	PRNumber  int
}

// RunDiffPhase builds the phase-1 PhaseFunc: parse the cumulative diff (C1),
// detect moves (C2), re-diff and reconstruct the effective diff (C3).
func RunDiffPhase(l sequencer.Layout, oracle DiffOracle, rediff effective.RediffOracle, opts DiffOptions) sequencer.PhaseFunc {
	return func(ctx context.Context) (domain.PhaseStats, error) {
		dir := l.Dir(domain.PhasePullRequest)

		rawDiff, targetHash, err := oracle.CumulativeDiff(opts.BaseRef, opts.TargetRef)
		if err != nil {
			return domain.PhaseStats{}, fmt.Errorf("cumulative diff: %w", err)
		}
		if err := fsutil.WriteFile(filepath.Join(dir, "diff-raw.diff"), []byte(rawDiff), 0o644); err != nil {
			return domain.PhaseStats{}, err
		}

		parsed, err := diffmodel.Parse(rawDiff, targetHash)
		if err != nil {
			return domain.PhaseStats{}, &sequencer.ErrInvariantViolation{Phase: domain.PhasePullRequest, Msg: err.Error()}
		}
		if err := fsutil.WriteJSON(filepath.Join(dir, "diff-parsed.json"), parsed); err != nil {
			return domain.PhaseStats{}, err
		}
		if err := fsutil.WriteFile(filepath.Join(dir, "diff-parsed.md"), []byte(diffmodel.RenderMarkdown(parsed)), 0o644); err != nil {
			return domain.PhaseStats{}, err
		}

		if opts.PRContext != nil {
			if err := writeGitHubContext(ctx, dir, opts); err != nil {
				return domain.PhaseStats{}, fmt.Errorf("fetch pr context: %w", err)
			}
		}

		candidates := move.Detect(parsed, opts.Move)

		baseHash, err := oracle.ResolveCommit(opts.BaseRef)
		if err != nil {
			return domain.PhaseStats{}, fmt.Errorf("resolve base ref: %w", err)
		}

		contents := effective.FileContents{Old: map[string]string{}, New: map[string]string{}}
		var diagnostics []string
		for _, c := range candidates {
			if _, ok := contents.Old[c.SourceFile]; !ok {
				text, err := oracle.FileContents(baseHash, c.SourceFile)
				if err != nil {
					diagnostics = append(diagnostics, fmt.Sprintf("read %s@%s: %v", c.SourceFile, baseHash, err))
					continue
				}
				contents.Old[c.SourceFile] = text
			}
			if _, ok := contents.New[c.TargetFile]; !ok {
				text, err := oracle.FileContents(targetHash, c.TargetFile)
				if err != nil {
					diagnostics = append(diagnostics, fmt.Sprintf("read %s@%s: %v", c.TargetFile, targetHash, err))
					continue
				}
				contents.New[c.TargetFile] = text
			}
		}

		result, err := effective.Build(ctx, parsed, candidates, contents, rediff, opts.Effective)
		if err != nil {
			return domain.PhaseStats{}, fmt.Errorf("build effective diff: %w", err)
		}
		result.Diagnostics = append(diagnostics, result.Diagnostics...)

		if err := fsutil.WriteJSON(filepath.Join(dir, "effective-diff-parsed.json"), result.Diff); err != nil {
			return domain.PhaseStats{}, err
		}
		if err := fsutil.WriteFile(filepath.Join(dir, "effective-diff-parsed.md"), []byte(diffmodel.RenderMarkdown(result.Diff)), 0o644); err != nil {
			return domain.PhaseStats{}, err
		}
		if err := fsutil.WriteJSON(filepath.Join(dir, "effective-diff-moves.json"), result.MoveReport); err != nil {
			return domain.PhaseStats{}, err
		}

		return domain.PhaseStats{
			ArtifactsProduced: len(result.Diff.Hunks),
			Metadata: map[string]any{
				"moves_detected":   result.MoveReport.MovesDetected,
				"diagnostic_count": len(result.Diagnostics),
			},
		}, nil
	}
}

// writeGitHubContext snapshots the upstream pull request context (metadata,
// posted comments, repo info) into phase-1, per §6's "consumed from
// upstream" inputs.
func writeGitHubContext(ctx context.Context, dir string, opts DiffOptions) error {
	pr, err := opts.PRContext.FetchPR(ctx, opts.Owner, opts.Repo, opts.PRNumber)
	if err != nil {
		return fmt.Errorf("fetch pr: %w", err)
	}
	if err := fsutil.WriteJSON(filepath.Join(dir, "gh-pr.json"), pr); err != nil {
		return err
	}

	comments, err := opts.PRContext.FetchComments(ctx, opts.Owner, opts.Repo, opts.PRNumber)
	if err != nil {
		return fmt.Errorf("fetch comments: %w", err)
	}
	if err := fsutil.WriteJSON(filepath.Join(dir, "gh-comments.json"), comments); err != nil {
		return err
	}

	repo, err := opts.PRContext.FetchRepo(ctx, opts.Owner, opts.Repo)
	if err != nil {
		return fmt.Errorf("fetch repo: %w", err)
	}
	return fsutil.WriteJSON(filepath.Join(dir, "gh-repo.json"), repo)
}
