package cli

import (
	"github.com/spf13/cobra"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/pipeline"
	"github.com/prradar/pipeline/internal/report"
	"github.com/prradar/pipeline/internal/sequencer"
)

func reportCommand(deps Dependencies) *cobra.Command {
	var f commonFlags
	var minScore int

	cmd := &cobra.Command{
		Use:   "report <pr_number>",
		Short: "Run phase 6: filter, sort, and aggregate evaluation results into the final report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prNumber, err := parsePRNumber(args)
			if err != nil {
				return err
			}

			l := layoutFor(f, prNumber)
			resolvedMinScore := minScore
			if resolvedMinScore <= 0 {
				resolvedMinScore = deps.DefaultConfig.Report.MinScore
			}

			fn := pipeline.RunReportPhase(l, report.Options{MinScore: resolvedMinScore})
			result, runErr := sequencer.Run(cmd.Context(), l, domain.PhaseReport, fn, sequencer.Options{
				LockTimeout: lockTimeout(deps.DefaultConfig),
			})
			return reportPhaseOutcome(cmd, domain.PhaseReport, result, runErr, f.jsonOut)
		},
	}

	bindCommonFlags(cmd, deps, &f)
	cmd.Flags().IntVar(&minScore, "min-score", 0, "Minimum violation score to include in the report (defaults to config)")
	return cmd
}
