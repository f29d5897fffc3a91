package sequencer

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/fsutil"
)

// PhaseFunc runs one phase's work and reports the stats to record on
// success. It is expected to be idempotent: Run only calls it when the
// phase is not already complete (or, for phase-5, to fill in missing
// tasks), and any outputs it writes must themselves use fsutil's atomic
// writes.
type PhaseFunc func(ctx context.Context) (domain.PhaseStats, error)

// Options configures a Run invocation.
type Options struct {
	// LockTimeout bounds how long Run waits for the advisory lockfile.
	// Zero defaults to fsutil.DefaultLockTimeout.
	LockTimeout time.Duration
	// Force re-runs the phase even if its marker already reports success.
	Force bool
}

// Run executes one phase under the sequencer's dependency gate, advisory
// lock, and crash-recovery sweep, and records its outcome atomically as
// phase_result.json. A phase whose predecessor has not completed
// successfully is rejected with *ErrDependencyUnmet before fn is ever
// called.
func Run(ctx context.Context, l Layout, phase domain.PhaseName, fn PhaseFunc, opts Options) (domain.PhaseResult, error) {
	if pred, ok := Predecessor(phase); ok {
		if Status(l, pred) != domain.StatusComplete {
			return domain.PhaseResult{}, &ErrDependencyUnmet{Phase: phase, Predecessor: pred}
		}
	}

	if !opts.Force && Status(l, phase) == domain.StatusComplete {
		var existing domain.PhaseResult
		if err := fsutil.ReadJSON(l.ResultPath(phase), &existing); err == nil {
			return existing, nil
		}
	}

	timeout := opts.LockTimeout
	if timeout == 0 {
		timeout = fsutil.DefaultLockTimeout
	}

	if err := os.MkdirAll(l.Dir(phase), 0o755); err != nil {
		return domain.PhaseResult{}, err
	}

	var result domain.PhaseResult
	var runErr error

	lockErr := fsutil.WithLock(l.LockPath(), timeout, func() error {
		if _, err := fsutil.RemoveOrphanedTemp(l.Dir(phase)); err != nil {
			return err
		}

		start := timeNow()
		stats, err := fn(ctx)
		stats.DurationMs = timeNow().Sub(start).Milliseconds()

		if err != nil {
			msg := err.Error()
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				msg = ErrCancelled.Error()
			}
			result = domain.PhaseResult{
				Phase:        phase,
				Status:       domain.StatusFailed,
				CompletedAt:  timeNow(),
				ErrorMessage: msg,
				Stats:        stats,
			}
			runErr = err
		} else {
			result = domain.PhaseResult{
				Phase:       phase,
				Status:      domain.StatusSuccess,
				CompletedAt: timeNow(),
				Stats:       stats,
			}
		}

		return fsutil.WriteJSON(l.ResultPath(phase), result)
	})
	if lockErr != nil {
		return domain.PhaseResult{}, lockErr
	}

	if runErr != nil && (errors.Is(runErr, context.Canceled) || ctx.Err() != nil) {
		return result, ErrCancelled
	}
	return result, runErr
}

// timeNow is a seam so tests can't accidentally depend on wall-clock time
// beyond measuring a duration.
var timeNow = time.Now
