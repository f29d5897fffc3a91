package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prradar/pipeline/internal/pipeline"
)

// commentCommand renders phase-6's violations as §6 comment-posting
// payloads. It is a read-only view over an already-complete report, not a
// sequencer-gated phase, so it never writes phase_result.json.
func commentCommand(deps Dependencies) *cobra.Command {
	var f commonFlags

	cmd := &cobra.Command{
		Use:   "comment <pr_number>",
		Short: "Render the report's violations as PR comment-posting payloads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prNumber, err := parsePRNumber(args)
			if err != nil {
				return err
			}

			l := layoutFor(f, prNumber)
			payloads, err := pipeline.BuildComments(l)
			if err != nil {
				return fmt.Errorf("comment: %w", err)
			}

			if f.jsonOut {
				return writeJSON(cmd.OutOrStdout(), payloads)
			}
			for i, p := range payloads {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "---")
				}
				switch {
				case p.Line != nil:
					fmt.Fprintf(cmd.OutOrStdout(), "%s:%d (%s)\n", p.Path, *p.Line, p.Side)
				case p.Path != "":
					fmt.Fprintf(cmd.OutOrStdout(), "%s (file-level)\n", p.Path)
				default:
					fmt.Fprintln(cmd.OutOrStdout(), "(PR-level)")
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.Body)
			}
			return nil
		},
	}

	bindCommonFlags(cmd, deps, &f)
	return cmd
}
