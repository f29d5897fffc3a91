// Package config holds the pipeline's layered configuration struct and the
// viper-backed loader/merge helpers, following the teacher's
// struct-of-structs-per-concern composition.
package config

// Config is the full pipeline configuration, decomposed per concern.
type Config struct {
	Sequencer     SequencerConfig     `yaml:"sequencer"`
	Evaluator     EvaluatorConfig     `yaml:"evaluator"`
	Rules         RulesConfig         `yaml:"rules"`
	Report        ReportConfig        `yaml:"report"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// SequencerConfig configures the phase sequencer (C9).
type SequencerConfig struct {
	OutputDir   string `yaml:"outputDir"`
	RepoPath    string `yaml:"repoPath"`
	LockTimeout string `yaml:"lockTimeout"`
}

// EvaluatorConfig configures the evaluation runner (C7).
type EvaluatorConfig struct {
	Workers    int    `yaml:"workers"`
	TimeoutSec int    `yaml:"timeoutSec"`
	Model      string `yaml:"model"`
}

// RulesConfig configures the rule loader (C5).
type RulesConfig struct {
	Dir string `yaml:"dir"`
}

// ReportConfig configures the report aggregator (C8).
type ReportConfig struct {
	MinScore int `yaml:"minScore"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, warn, error
	Format  string `yaml:"format"` // json, text
}

// Merge combines configuration instances left to right, the rightmost
// non-zero field in each group winning. Mirrors the teacher's
// Merge(configs...)/choose* helper pattern.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base
	result.Sequencer = chooseSequencer(base.Sequencer, overlay.Sequencer)
	result.Evaluator = chooseEvaluator(base.Evaluator, overlay.Evaluator)
	result.Rules = chooseRules(base.Rules, overlay.Rules)
	result.Report = chooseReport(base.Report, overlay.Report)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)
	return result
}

func chooseSequencer(base, overlay SequencerConfig) SequencerConfig {
	result := base
	if overlay.OutputDir != "" {
		result.OutputDir = overlay.OutputDir
	}
	if overlay.RepoPath != "" {
		result.RepoPath = overlay.RepoPath
	}
	if overlay.LockTimeout != "" {
		result.LockTimeout = overlay.LockTimeout
	}
	return result
}

func chooseEvaluator(base, overlay EvaluatorConfig) EvaluatorConfig {
	result := base
	if overlay.Workers != 0 {
		result.Workers = overlay.Workers
	}
	if overlay.TimeoutSec != 0 {
		result.TimeoutSec = overlay.TimeoutSec
	}
	if overlay.Model != "" {
		result.Model = overlay.Model
	}
	return result
}

func chooseRules(base, overlay RulesConfig) RulesConfig {
	if overlay.Dir != "" {
		return overlay
	}
	return base
}

func chooseReport(base, overlay ReportConfig) ReportConfig {
	if overlay.MinScore != 0 {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}
