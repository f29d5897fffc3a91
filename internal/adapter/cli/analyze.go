package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/effective"
	"github.com/prradar/pipeline/internal/move"
	"github.com/prradar/pipeline/internal/pipeline"
	"github.com/prradar/pipeline/internal/report"
	"github.com/prradar/pipeline/internal/sequencer"
)

// analyzeCommand runs the full pipeline, phases 1 through 6, stopping at
// the first phase that fails. It accepts every phase's own flags in
// addition to the common set, per §10's "analyze additionally accepts
// --workers, --min-score, --rules-dir".
func analyzeCommand(deps Dependencies) *cobra.Command {
	var f commonFlags
	var baseRef, targetRef, rulesDir, model, ghOwner, ghRepo string
	var workers, minScore int

	cmd := &cobra.Command{
		Use:   "analyze <pr_number>",
		Short: "Run the full pipeline: diff, focus areas, rules, tasks, evaluate, report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prNumber, err := parsePRNumber(args)
			if err != nil {
				return err
			}
			if deps.GitOracleFactory == nil {
				return fmt.Errorf("analyze: no git oracle configured")
			}

			l := layoutFor(f, prNumber)
			opts := sequencer.Options{LockTimeout: lockTimeout(deps.DefaultConfig)}
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
			diffFn := pipeline.RunDiffPhase(l, oracle, deps.RediffOracle, diffOpts)
			result, runErr := sequencer.Run(cmd.Context(), l, domain.PhasePullRequest, diffFn, opts)
			if err := reportPhaseOutcome(cmd, domain.PhasePullRequest, result, runErr, f.jsonOut); err != nil {
				return err
			}

			result, runErr = sequencer.Run(cmd.Context(), l, domain.PhaseFocusAreas,
				pipeline.RunFocusAreasPhase(l, deps.Subdivide), opts)
			if err := reportPhaseOutcome(cmd, domain.PhaseFocusAreas, result, runErr, f.jsonOut); err != nil {
				return err
			}

			result, runErr = sequencer.Run(cmd.Context(), l, domain.PhaseRules,
				pipeline.RunRulesLoadPhase(l, resolveDefault(rulesDir, resolveDefault(deps.DefaultConfig.Rules.Dir, "rules"))), opts)
			if err := reportPhaseOutcome(cmd, domain.PhaseRules, result, runErr, f.jsonOut); err != nil {
				return err
			}

			result, runErr = sequencer.Run(cmd.Context(), l, domain.PhaseTasks,
				pipeline.RunTasksPhase(l), opts)
			if err := reportPhaseOutcome(cmd, domain.PhaseTasks, result, runErr, f.jsonOut); err != nil {
				return err
			}

			resolvedModel := resolveDefault(model, resolveDefault(deps.DefaultConfig.Evaluator.Model, "static"))
			oracle2 := deps.oracleFactory()(resolvedModel)
			resolvedWorkers := workers
			if resolvedWorkers <= 0 {
				resolvedWorkers = deps.DefaultConfig.Evaluator.Workers
			}
			result, runErr = sequencer.Run(cmd.Context(), l, domain.PhaseEvaluations,
				pipeline.RunEvaluatePhase(l, oracle2, resolvedWorkers, progressReporter(cmd)), opts)
			if err := reportPhaseOutcome(cmd, domain.PhaseEvaluations, result, runErr, f.jsonOut); err != nil {
				return err
			}

			resolvedMinScore := minScore
			if resolvedMinScore <= 0 {
				resolvedMinScore = deps.DefaultConfig.Report.MinScore
			}
			result, runErr = sequencer.Run(cmd.Context(), l, domain.PhaseReport,
				pipeline.RunReportPhase(l, report.Options{MinScore: resolvedMinScore}), opts)
			return reportPhaseOutcome(cmd, domain.PhaseReport, result, runErr, f.jsonOut)
		},
	}

	bindCommonFlags(cmd, deps, &f)
	cmd.Flags().StringVar(&baseRef, "base-ref", "main", "Base git ref the PR is diffed against")
	cmd.Flags().StringVar(&targetRef, "target-ref", "HEAD", "Target git ref (the PR's head)")
	cmd.Flags().StringVar(&ghOwner, "gh-owner", "", "GitHub repository owner, to snapshot pr/comments/repo context")
	cmd.Flags().StringVar(&ghRepo, "gh-repo", "", "GitHub repository name, to snapshot pr/comments/repo context")
	cmd.Flags().StringVar(&rulesDir, "rules-dir", "", "Directory of rule markdown files (defaults to config, then \"rules\")")
	cmd.Flags().StringVar(&model, "model", "", "Model name passed to the oracle factory")
	cmd.Flags().IntVar(&workers, "workers", 0, "Bounded worker pool size (defaults to config, then the evaluator's own default)")
	cmd.Flags().IntVar(&minScore, "min-score", 0, "Minimum violation score to include in the report (defaults to config)")
	return cmd
}
