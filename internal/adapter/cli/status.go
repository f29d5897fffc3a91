package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prradar/pipeline/internal/pipeline"
)

// statusCommand reports every phase's computed status. It always exits 0,
// per §6's "status exits 0 regardless of pipeline state" — the command
// itself succeeded even if the pipeline it describes has failed phases.
func statusCommand(deps Dependencies) *cobra.Command {
	var f commonFlags

	cmd := &cobra.Command{
		Use:   "status <pr_number>",
		Short: "Report the computed status of every phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prNumber, err := parsePRNumber(args)
			if err != nil {
				return err
			}

			l := layoutFor(f, prNumber)
			statuses := pipeline.Status(l)

			if f.jsonOut {
				return writeJSON(cmd.OutOrStdout(), statuses)
			}
			for _, s := range statuses {
				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-12s %d artifacts\n", s.Phase, s.Status, s.ArtifactCount)
			}
			return nil
		},
	}

	bindCommonFlags(cmd, deps, &f)
	return cmd
}
