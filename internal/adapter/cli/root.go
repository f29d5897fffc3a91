// Package cli wires the pipeline's phase functions behind a Cobra command
// tree: one subcommand per phase plus `analyze` (the full pipeline) and
// `status`, mirroring the teacher's thin cmd/<tool>/main.go +
// internal/adapter/cli/root.go split — main builds the concrete adapters,
// root.go owns flag parsing and precedence.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/prradar/pipeline/internal/adapter/oracle/static"
	"github.com/prradar/pipeline/internal/config"
	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/effective"
	"github.com/prradar/pipeline/internal/evaluate"
	"github.com/prradar/pipeline/internal/focus"
	"github.com/prradar/pipeline/internal/pipeline"
	"github.com/prradar/pipeline/internal/sequencer"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// OracleFactory builds the phase-5 model oracle for a given model name.
// Deferred to call time (not built eagerly in main) so output-only commands
// like `status` never need API credentials configured.
type OracleFactory func(model string) evaluate.Oracle

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators the CLI needs, assembled by main.
type Dependencies struct {
	// GitOracleFactory builds the phase-1 diff/content source for a given
	// --repo-path. Required for `diff` and `analyze`.
	GitOracleFactory func(repoPath string) pipeline.DiffOracle
	// RediffOracle re-diffs move candidates' neighborhoods (C3).
	RediffOracle effective.RediffOracle
	// OracleFactory builds the phase-5 model oracle. Defaults to a static
	// clean-verdict oracle when nil.
	OracleFactory OracleFactory
	// Subdivide optionally proposes method-level FocusAreas (C4); nil skips
	// method-level generation.
	Subdivide focus.SubdivideFunc
	// GitHubContext builds the optional gh-*.json snapshotter; nil skips it
	// entirely (the diff phase never requires it).
	GitHubContext pipeline.PRContextOracle

	DefaultConfig config.Config
	Args          Arguments
	Version       string
}

func (d Dependencies) oracleFactory() OracleFactory {
	if d.OracleFactory != nil {
		return d.OracleFactory
	}
	return defaultOracleFactory
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "prradar",
		Short: "AI-assisted PR review pipeline",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	root.AddCommand(
		diffCommand(deps),
		rulesCommand(deps),
		evaluateCommand(deps),
		reportCommand(deps),
		commentCommand(deps),
		analyzeCommand(deps),
		statusCommand(deps),
	)

	return root
}

// commonFlags are the flags every phase subcommand shares, per §6's CLI
// surface: `<pr_number>`, `--output-dir`, `--repo-path`, `--json`.
type commonFlags struct {
	outputDir string
	repoPath  string
	jsonOut   bool
}

func bindCommonFlags(cmd *cobra.Command, deps Dependencies, f *commonFlags) {
	defaultOutput := resolveDefault(deps.DefaultConfig.Sequencer.OutputDir, "out")
	defaultRepo := resolveDefault(deps.DefaultConfig.Sequencer.RepoPath, ".")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", defaultOutput, "Directory under which phase artifacts are written")
	cmd.Flags().StringVar(&f.repoPath, "repo-path", defaultRepo, "Local path to the repository being reviewed")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Emit machine-readable JSON instead of a human summary")
}

func resolveDefault(configVal, builtinDefault string) string {
	if configVal != "" {
		return configVal
	}
	return builtinDefault
}

func parsePRNumber(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("pr_number is required")
	}
	var n int
	if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n <= 0 {
		return 0, fmt.Errorf("pr_number must be a positive integer, got %q", args[0])
	}
	return n, nil
}

func repoSlug(repoPath string) string {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return "unknown"
	}
	return filepath.Base(abs)
}

func layoutFor(f commonFlags, prNumber int) sequencer.Layout {
	return sequencer.NewLayout(f.outputDir, repoSlug(f.repoPath), prNumber)
}

// lockTimeout resolves the sequencer lock wait from config, falling back to
// fsutil's own default (signalled by the zero Duration) when unset or
// unparsable.
func lockTimeout(cfg config.Config) time.Duration {
	if cfg.Sequencer.LockTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(cfg.Sequencer.LockTimeout)
	if err != nil {
		return 0
	}
	return d
}

// reportPhaseOutcome prints the phase result (respecting --json) and
// translates a failed run into a non-zero-exit error, per §7's "CLI layer
// translates the last written PhaseResult into a human message and exit
// code" propagation policy.
func reportPhaseOutcome(cmd *cobra.Command, phase domain.PhaseName, result domain.PhaseResult, runErr error, jsonOut bool) error {
	if jsonOut {
		_ = writeJSON(cmd.OutOrStdout(), result)
	}

	if errors.Is(runErr, sequencer.ErrCancelled) {
		if !jsonOut {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: cancelled\n", phase)
		}
		return runErr
	}
	var depErr *sequencer.ErrDependencyUnmet
	if errors.As(runErr, &depErr) {
		if !jsonOut {
			fmt.Fprintln(cmd.OutOrStdout(), depErr.Error())
		}
		return runErr
	}
	if runErr != nil {
		if !jsonOut {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: failed: %v\n", phase, runErr)
		}
		return runErr
	}
	if !jsonOut {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d artifacts)\n", phase, result.Status, result.Stats.ArtifactsProduced)
	}
	return nil
}

// isInteractive reports whether stdout is an interactive terminal, the same
// term.IsTerminal check the teacher's tty.go uses, wired into the
// evaluator's progress reporter so `evaluate`/`analyze` print a live line
// only when a human is watching.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func progressReporter(cmd *cobra.Command) evaluate.ProgressFunc {
	if !isInteractive() {
		return nil
	}
	return func(index, total int, result domain.RuleEvaluationResult) {
		fmt.Fprintf(cmd.OutOrStdout(), "\revaluating %d/%d (%s)", index+1, total, result.TaskID)
		if index+1 == total {
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}
}

// defaultOracleFactory returns a fixed clean-verdict static oracle when the
// caller hasn't wired a real model oracle, the same "no API key, fall back
// to static client" posture the teacher's buildProviders uses per vendor.
func defaultOracleFactory(model string) evaluate.Oracle {
	return static.New(model, static.Clean)
}
