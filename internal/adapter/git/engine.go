// Package git provides the concrete DiffOracle for phase-1: a go-git
// backed reader that resolves two refs and encodes their cumulative patch
// as unified diff text, grounded on bkyoung's adapter/git/engine.go.
package git

import (
	"bytes"
	"fmt"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	formatdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Engine reads a cumulative unified diff between two refs of a repository
// using go-git, without shelling out.
type Engine struct {
	repoDir string
}

// NewEngine constructs a git Engine rooted at repoDir.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// CumulativeDiff resolves baseRef and targetRef and returns the unified
// diff text between them, plus the resolved target commit hash.
func (e *Engine) CumulativeDiff(baseRef, targetRef string) (diffText, commitHash string, err error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", "", fmt.Errorf("open repo: %w", err)
	}

	baseCommit, err := resolveCommit(repo, baseRef)
	if err != nil {
		return "", "", fmt.Errorf("resolve base ref %s: %w", baseRef, err)
	}
	targetCommit, err := resolveCommit(repo, targetRef)
	if err != nil {
		return "", "", fmt.Errorf("resolve target ref %s: %w", targetRef, err)
	}

	patch, err := baseCommit.Patch(targetCommit)
	if err != nil {
		return "", "", fmt.Errorf("compute patch: %w", err)
	}

	var buf bytes.Buffer
	encoder := formatdiff.NewUnifiedEncoder(&buf, formatdiff.DefaultContextLines)
	if err := encoder.Encode(patch); err != nil {
		return "", "", fmt.Errorf("encode patch: %w", err)
	}

	return buf.String(), targetCommit.Hash.String(), nil
}

// ResolveCommit resolves ref to its commit hash, trying the same candidate
// forms as CumulativeDiff (bare ref, refs/heads/<ref>, refs/remotes/origin/<ref>).
func (e *Engine) ResolveCommit(ref string) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	commit, err := resolveCommit(repo, ref)
	if err != nil {
		return "", fmt.Errorf("resolve ref %s: %w", ref, err)
	}
	return commit.Hash.String(), nil
}

func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to resolve ref %s", ref)
}

// FileContents reads path's blob at commitHash, returning ("", nil) if the
// path does not exist at that commit (e.g. it was added or deleted).
func (e *Engine) FileContents(commitHash, path string) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	commit, err := repo.CommitObject(plumbing.NewHash(commitHash))
	if err != nil {
		return "", fmt.Errorf("resolve commit %s: %w", commitHash, err)
	}
	file, err := commit.File(path)
	if err != nil {
		return "", nil
	}
	return file.Contents()
}
