package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prradar/pipeline/internal/adapter/cli"
	"github.com/prradar/pipeline/internal/adapter/git"
	"github.com/prradar/pipeline/internal/adapter/github"
	"github.com/prradar/pipeline/internal/adapter/oracle/httpcli"
	"github.com/prradar/pipeline/internal/adapter/oracle/rediff"
	"github.com/prradar/pipeline/internal/adapter/oracle/static"
	"github.com/prradar/pipeline/internal/config"
	"github.com/prradar/pipeline/internal/evaluate"
	"github.com/prradar/pipeline/internal/observability"
	"github.com/prradar/pipeline/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "prradar",
		EnvPrefix:   "PRRADAR",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger := buildLogger(cfg.Observability.Logging)
	logger.Info(ctx, "prradar starting", "version", version())

	rediffOracle := rediff.New()

	var ghContext pipeline.PRContextOracle
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ghContext = github.NewClient(token)
	}

	root := cli.NewRootCommand(cli.Dependencies{
		GitOracleFactory: func(repoPath string) pipeline.DiffOracle {
			return git.NewEngine(repoPath)
		},
		RediffOracle:  rediffOracle,
		OracleFactory: buildOracleFactory,
		Subdivide:     nil,
		GitHubContext: ghContext,
		DefaultConfig: cfg,
		Version:       version(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return err
	}
	return nil
}

// buildOracleFactory resolves the phase-5 model oracle: a live HTTP oracle
// when the environment supplies an endpoint and credential, otherwise a
// static clean-verdict fixture, the same "no API key, fall back to a
// static client" posture the teacher's buildProviders uses per vendor.
func buildOracleFactory(model string) evaluate.Oracle {
	baseURL := os.Getenv("PRRADAR_ORACLE_URL")
	authValue := os.Getenv("PRRADAR_ORACLE_API_KEY")
	if baseURL == "" || authValue == "" {
		return static.New(model, static.Clean)
	}
	return httpcli.New(baseURL, "Authorization", "Bearer "+authValue)
}

func buildLogger(cfg config.LoggingConfig) observability.Logger {
	if !cfg.Enabled {
		return observability.NewNoop()
	}
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	format := observability.FormatText
	if cfg.Format == "json" {
		format = observability.FormatJSON
	}
	return observability.NewLogger(level, format)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "prradar"))
	}
	return paths
}

// version is overridden at build time via -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func version() string {
	return buildVersion
}
