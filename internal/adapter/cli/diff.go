package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/effective"
	"github.com/prradar/pipeline/internal/move"
	"github.com/prradar/pipeline/internal/pipeline"
	"github.com/prradar/pipeline/internal/sequencer"
)

func diffCommand(deps Dependencies) *cobra.Command {
	var f commonFlags
	var baseRef, targetRef, ghOwner, ghRepo string

	cmd := &cobra.Command{
		Use:   "diff <pr_number>",
		Short: "Run phase 1: parse the cumulative diff, detect moves, build the effective diff",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prNumber, err := parsePRNumber(args)
			if err != nil {
				return err
			}
			if deps.GitOracleFactory == nil {
				return fmt.Errorf("diff: no git oracle configured")
			}

			l := layoutFor(f, prNumber)
			oracle := deps.GitOracleFactory(f.repoPath)
			diffOpts := pipeline.DiffOptions{
				BaseRef:   baseRef,
				TargetRef: targetRef,
				Move:      move.Options{},
				Effective: effective.Options{},
			}
			if deps.GitHubContext != nil && ghOwner != "" && ghRepo != "" {
				diffOpts.PRContext = deps.GitHubContext
				diffOpts.Owner = ghOwner
				diffOpts.Repo = ghRepo
				diffOpts.PRNumber = prNumber
			}
			fn := pipeline.RunDiffPhase(l, oracle, deps.RediffOracle, diffOpts)

			result, runErr := sequencer.Run(cmd.Context(), l, domain.PhasePullRequest, fn, sequencer.Options{
				LockTimeout: lockTimeout(deps.DefaultConfig),
			})
			return reportPhaseOutcome(cmd, domain.PhasePullRequest, result, runErr, f.jsonOut)
		},
	}

	bindCommonFlags(cmd, deps, &f)
	cmd.Flags().StringVar(&baseRef, "base-ref", "main", "Base git ref the PR is diffed against")
	cmd.Flags().StringVar(&targetRef, "target-ref", "HEAD", "Target git ref (the PR's head)")
	cmd.Flags().StringVar(&ghOwner, "gh-owner", "", "GitHub repository owner, to snapshot pr/comments/repo context")
	cmd.Flags().StringVar(&ghRepo, "gh-repo", "", "GitHub repository name, to snapshot pr/comments/repo context")
	return cmd
}
