package cli

import (
	"github.com/spf13/cobra"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/pipeline"
	"github.com/prradar/pipeline/internal/sequencer"
)

func evaluateCommand(deps Dependencies) *cobra.Command {
	var f commonFlags
	var workers int
	var model string

	cmd := &cobra.Command{
		Use:   "evaluate <pr_number>",
		Short: "Run phase 5: dispatch every generated task to the model oracle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prNumber, err := parsePRNumber(args)
			if err != nil {
				return err
			}

			l := layoutFor(f, prNumber)
			resolvedModel := resolveDefault(model, resolveDefault(deps.DefaultConfig.Evaluator.Model, "static"))
			oracle := deps.oracleFactory()(resolvedModel)
			resolvedWorkers := workers
			if resolvedWorkers <= 0 {
				resolvedWorkers = deps.DefaultConfig.Evaluator.Workers
			}

			fn := pipeline.RunEvaluatePhase(l, oracle, resolvedWorkers, progressReporter(cmd))
			result, runErr := sequencer.Run(cmd.Context(), l, domain.PhaseEvaluations, fn, sequencer.Options{
				LockTimeout: lockTimeout(deps.DefaultConfig),
			})
			return reportPhaseOutcome(cmd, domain.PhaseEvaluations, result, runErr, f.jsonOut)
		},
	}

	bindCommonFlags(cmd, deps, &f)
	cmd.Flags().IntVar(&workers, "workers", 0, "Bounded worker pool size (defaults to config, then the evaluator's own default)")
	cmd.Flags().StringVar(&model, "model", "", "Model name passed to the oracle factory")
	return cmd
}
