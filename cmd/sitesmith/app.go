package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sitesmith/internal/config"
	"github.com/fyrsmithlabs/sitesmith/internal/deploy"
	"github.com/fyrsmithlabs/sitesmith/internal/events"
	"github.com/fyrsmithlabs/sitesmith/internal/generation"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
	"github.com/fyrsmithlabs/sitesmith/internal/pipeline"
	"github.com/fyrsmithlabs/sitesmith/internal/qa"
	"github.com/fyrsmithlabs/sitesmith/internal/store"
	"github.com/fyrsmithlabs/sitesmith/internal/telemetry"
)

const pipelineTracer = "github.com/fyrsmithlabs/sitesmith/internal/pipeline"

// app holds everything a command needs, built from one loaded config.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	history   store.Repository
	deployers *deploy.Registry
	natsConn  *nats.Conn
	publisher *events.NATSPublisher
	pipeline  *pipeline.Orchestrator
}

// newApp loads configuration and wires the pipeline. Logs go to logOut.
func newApp(ctx context.Context, opts *rootOptions, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	tel, err := telemetry.New(ctx, cfg.Telemetry, version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logCfg, err := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logCfg.Output.OTEL = tel.LoggerProvider() != nil
	logger, err := logging.NewWriterLogger(logCfg, logOut, tel.LoggerProvider())
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, telemetry: tel}

	a.history, err = store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to open generation store: %w", err)
	}

	if cfg.Events.Enabled {
		nc, err := nats.Connect(cfg.Events.NATSURL,
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(5),
			nats.ReconnectWait(1*time.Second),
		)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.Events.NATSURL, err)
		}
		a.natsConn = nc
		a.publisher = events.NewNATSPublisher(nc, cfg.Events.SubjectPrefix)
		logger.Info(ctx, "connected to NATS", zap.String("url", cfg.Events.NATSURL))
	}

	gen, err := newGenerator(cfg.Generation, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.deployers = newDeployers(ctx, cfg.Deploy)

	a.pipeline = pipeline.New(pipeline.Options{
		Generator: gen,
		Gate: qa.NewGate(nil, nil, qa.Options{
			NavigationTimeout: cfg.QA.NavigationTimeout,
			Logger:            logger,
		}),
		Deployer:      a.deployers,
		Store:         a.history,
		Logger:        logger,
		Tracer:        a.telemetry.Tracer(pipelineTracer),
		OutputDir:     cfg.Pipeline.OutputDir,
		BaseURL:       cfg.Pipeline.BaseURL,
		Concurrency:   cfg.Pipeline.Concurrency,
		MaxIterations: cfg.Pipeline.MaxIterations,
	})

	logger.Info(ctx, "sitesmith initialized",
		zap.String("mode", string(gen.Mode())),
		zap.String("store", cfg.Store.Driver),
		zap.Strings("deploy_providers", a.deployers.Names()),
		zap.Bool("events", a.publisher != nil))
	return a, nil
}

// newGenerator returns the collaborator-backed generator when an API key is
// configured, and the deterministic one otherwise.
func newGenerator(cfg config.GenerationConfig, logger *logging.Logger) (generation.Generator, error) {
	if !cfg.APIKey.IsSet() {
		return generation.Deterministic{}, nil
	}
	text, err := generation.NewLangChainText(cfg.TextEndpoint, cfg.TextModel, cfg.APIKey.Value())
	if err != nil {
		return nil, fmt.Errorf("failed to create text collaborator: %w", err)
	}
	var images generation.ImageCollaborator
	if cfg.ImageEndpoint != "" {
		img, err := generation.NewHTTPImages(cfg.ImageEndpoint, cfg.ImageModel, cfg.APIKey.Value(), cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create image collaborator: %w", err)
		}
		images = img
	}
	return generation.New(text, images, generation.Options{
		RateLimit:  cfg.RateLimit,
		Burst:      cfg.Burst,
		MaxRetries: 2,
		Cache:      generation.NewCache(),
		Logger:     logger,
	}), nil
}

// newDeployers registers local always, git when a repository path is set,
// and github when owner and repository are set.
func newDeployers(ctx context.Context, cfg config.DeployConfig) *deploy.Registry {
	adapters := []deploy.Adapter{deploy.NewLocal(cfg.TargetDir)}
	if cfg.GitRepoPath != "" {
		adapters = append(adapters, deploy.NewGit(cfg.GitRepoPath, cfg.GitAuthor, cfg.GitEmail))
	}
	if cfg.GitHubOwner != "" && cfg.GitHubRepo != "" {
		adapters = append(adapters, deploy.NewGitHub(ctx, cfg.GitHubToken.Value(), cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch))
	}
	if cfg.ScanSecrets {
		for i, a := range adapters {
			adapters[i] = deploy.NewGuard(a)
		}
	}
	return deploy.NewRegistry(adapters...)
}

// deployRequest resolves the --deploy flag; "default" selects the
// configured provider.
func (a *app) deployRequest(provider string) *deploy.Request {
	if provider == "" {
		return nil
	}
	if provider == "default" {
		provider = a.cfg.Deploy.Provider
	}
	return &deploy.Request{Provider: provider}
}

// Close releases every resource in reverse order of acquisition.
func (a *app) Close(ctx context.Context) {
	if a.natsConn != nil {
		a.natsConn.Close()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn(ctx, "failed to close generation store", zap.Error(err))
		}
	}
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
