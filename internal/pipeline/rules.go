package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prradar/pipeline/internal/domain"
	"github.com/prradar/pipeline/internal/focus"
	"github.com/prradar/pipeline/internal/fsutil"
	"github.com/prradar/pipeline/internal/rules"
	"github.com/prradar/pipeline/internal/sequencer"
	"github.com/prradar/pipeline/internal/task"
)

// RunFocusAreasPhase builds the phase-2 PhaseFunc: subdivide phase-1's
// effective diff into file- and method-level FocusAreas (C4), writing one
// artifact per FocusType per the directory layout's "{<type>.json}".
func RunFocusAreasPhase(l sequencer.Layout, subdivide focus.SubdivideFunc) sequencer.PhaseFunc {
	return func(ctx context.Context) (domain.PhaseStats, error) {
		var diff domain.GitDiff
		if err := requireArtifact(filepath.Join(l.Dir(domain.PhasePullRequest), "effective-diff-parsed.json"), &diff); err != nil {
			return domain.PhaseStats{}, err
		}

		areas, err := focus.Generate(diff, subdivide)
		if err != nil {
			return domain.PhaseStats{}, &sequencer.ErrInvariantViolation{Phase: domain.PhaseFocusAreas, Msg: err.Error()}
		}

		byType := map[domain.FocusType][]domain.FocusArea{}
		for _, a := range areas {
			byType[a.FocusType] = append(byType[a.FocusType], a)
		}

		dir := l.Dir(domain.PhaseFocusAreas)
		for ft, group := range byType {
			if err := writeJSONNamed(dir, string(ft), group); err != nil {
				return domain.PhaseStats{}, err
			}
		}

		return domain.PhaseStats{ArtifactsProduced: len(areas)}, nil
	}
}

// RunRulesLoadPhase builds the phase-3 PhaseFunc: load the rule corpus (C5).
func RunRulesLoadPhase(l sequencer.Layout, rulesDir string) sequencer.PhaseFunc {
	return func(ctx context.Context) (domain.PhaseStats, error) {
		loaded, err := rules.Load(rulesDir)
		if err != nil {
			return domain.PhaseStats{}, fmt.Errorf("load rules: %w", err)
		}

		dir := l.Dir(domain.PhaseRules)
		if err := fsutil.WriteJSON(filepath.Join(dir, "all-rules.json"), loaded); err != nil {
			return domain.PhaseStats{}, err
		}

		return domain.PhaseStats{ArtifactsProduced: len(loaded)}, nil
	}
}

// allFocusAreas reads every phase-2 <type>.json artifact back into one slice.
func allFocusAreas(l sequencer.Layout) ([]domain.FocusArea, error) {
	dir := l.Dir(domain.PhaseFocusAreas)
	names, err := listJSONArtifacts(dir)
	if err != nil {
		return nil, err
	}
	var out []domain.FocusArea
	for _, name := range names {
		var group []domain.FocusArea
		if err := requireArtifact(filepath.Join(dir, name+".json"), &group); err != nil {
			return nil, err
		}
		out = append(out, group...)
	}
	return out, nil
}

// RunTasksPhase builds the phase-4 PhaseFunc: cartesian product of compiled
// rules and focus areas (C6), one artifact file per task.
func RunTasksPhase(l sequencer.Layout) sequencer.PhaseFunc {
	return func(ctx context.Context) (domain.PhaseStats, error) {
		var loaded []domain.Rule
		if err := requireArtifact(filepath.Join(l.Dir(domain.PhaseRules), "all-rules.json"), &loaded); err != nil {
			return domain.PhaseStats{}, err
		}

		compiled, err := rules.CompileAll(loaded)
		if err != nil {
			return domain.PhaseStats{}, fmt.Errorf("compile rules: %w", err)
		}

		areas, err := allFocusAreas(l)
		if err != nil {
			return domain.PhaseStats{}, fmt.Errorf("read focus areas: %w", err)
		}

		generated := task.Generate(compiled, areas)

		seen := make(map[string]bool, len(generated))
		dir := l.Dir(domain.PhaseTasks)
		for _, t := range generated {
			if seen[t.TaskID] {
				return domain.PhaseStats{}, &sequencer.ErrInvariantViolation{Phase: domain.PhaseTasks, Msg: "duplicate task_id: " + t.TaskID}
			}
			seen[t.TaskID] = true
			if err := writeJSONNamed(dir, fsutil.SanitizeFilename(t.TaskID), t); err != nil {
				return domain.PhaseStats{}, err
			}
		}

		return domain.PhaseStats{ArtifactsProduced: len(generated)}, nil
	}
}
