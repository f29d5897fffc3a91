package cli

import (
	"github.com/spf13/cobra"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/pipeline"
	"github.com/prradar/pipeline/internal/sequencer"
)

// rulesCommand covers phases 2-4 (focus areas, rule loading, task
// generation) as one command, per §6's "rules (covers focus areas + rules +
// tasks)" CLI surface.
func rulesCommand(deps Dependencies) *cobra.Command {
	var f commonFlags
	var rulesDir string

	cmd := &cobra.Command{
		Use:   "rules <pr_number>",
		Short: "Run phases 2-4: focus areas, rule loading, task generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prNumber, err := parsePRNumber(args)
			if err != nil {
				return err
			}

			l := layoutFor(f, prNumber)
			opts := sequencer.Options{LockTimeout: lockTimeout(deps.DefaultConfig)}

			result, runErr := sequencer.Run(cmd.Context(), l, domain.PhaseFocusAreas,
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
			return reportPhaseOutcome(cmd, domain.PhaseTasks, result, runErr, f.jsonOut)
		},
	}

	bindCommonFlags(cmd, deps, &f)
	cmd.Flags().StringVar(&rulesDir, "rules-dir", "", "Directory of rule markdown files (defaults to config, then \"rules\")")
	return cmd
}
