// Package config provides configuration loading for sitesmith.
//
// Values are resolved from hardcoded defaults, then an optional YAML file,
// then SITESMITH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete sitesmith configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Pipeline   PipelineConfig   `koanf:"pipeline"`
	Generation GenerationConfig `koanf:"generation"`
	QA         QAConfig         `koanf:"qa"`
	Events     EventsConfig     `koanf:"events"`
	Store      StoreConfig      `koanf:"store"`
	Deploy     DeployConfig     `koanf:"deploy"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// PipelineConfig controls the generation run.
type PipelineConfig struct {
	OutputDir     string `koanf:"output_dir"`
	BaseURL       string `koanf:"base_url"`
	MaxIterations int    `koanf:"max_iterations"`
	Concurrency   int    `koanf:"concurrency"`
}

// GenerationConfig configures the text and image collaborators. When no
// API key is set the deterministic generator is used.
type GenerationConfig struct {
	TextEndpoint  string        `koanf:"text_endpoint"`
	TextModel     string        `koanf:"text_model"`
	APIKey        Secret        `koanf:"api_key"`
	ImageEndpoint string        `koanf:"image_endpoint"`
	ImageModel    string        `koanf:"image_model"`
	RateLimit     float64       `koanf:"rate_limit"`
	Burst         int           `koanf:"burst"`
	Timeout       time.Duration `koanf:"timeout"`
}

// QAConfig configures the quality gate.
type QAConfig struct {
	NavigationTimeout time.Duration `koanf:"navigation_timeout"`
}

// EventsConfig configures progress fan-out over NATS.
type EventsConfig struct {
	Enabled       bool   `koanf:"enabled"`
	NATSURL       string `koanf:"nats_url"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// StoreConfig selects the generation repository.
type StoreConfig struct {
	Driver string `koanf:"driver"` // memory | sqlite
	Path   string `koanf:"path"`
}

// DeployConfig holds publish-target settings.
type DeployConfig struct {
	Provider     string `koanf:"provider"`
	TargetDir    string `koanf:"target_dir"`
	GitRepoPath  string `koanf:"git_repo_path"`
	GitAuthor    string `koanf:"git_author"`
	GitEmail     string `koanf:"git_email"`
	GitHubToken  Secret `koanf:"github_token"`
	GitHubOwner  string `koanf:"github_owner"`
	GitHubRepo   string `koanf:"github_repo"`
	GitHubBranch string `koanf:"github_branch"`
	ScanSecrets  bool   `koanf:"scan_secrets"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Protocol    string  `koanf:"protocol"`
	Insecure    bool    `koanf:"insecure"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            9191,
			ShutdownTimeout: 10 * time.Second,
		},
		Pipeline: PipelineConfig{
			OutputDir:     "./output",
			BaseURL:       "https://example.com",
			MaxIterations: 5,
			Concurrency:   3,
		},
		Generation: GenerationConfig{
			TextEndpoint:  "https://api.openai.com/v1",
			TextModel:     "gpt-4o-mini",
			ImageEndpoint: "https://api.openai.com/v1",
			ImageModel:    "dall-e-3",
			RateLimit:     2,
			Burst:         3,
			Timeout:       60 * time.Second,
		},
		QA: QAConfig{
			NavigationTimeout: 30 * time.Second,
		},
		Events: EventsConfig{
			NATSURL:       "nats://localhost:4222",
			SubjectPrefix: "generations",
		},
		Store: StoreConfig{
			Driver: "memory",
			Path:   "./sitesmith.db",
		},
		Deploy: DeployConfig{
			Provider:     "local",
			TargetDir:    "./public",
			GitAuthor:    "sitesmith",
			GitEmail:     "sitesmith@localhost",
			GitHubBranch: "main",
			ScanSecrets:  true,
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			Insecure:    true,
			ServiceName: "sitesmith",
			SampleRate:  1.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Pipeline.OutputDir == "" {
		return errors.New("pipeline.output_dir is required")
	}
	if c.Pipeline.MaxIterations < 1 {
		return fmt.Errorf("pipeline.max_iterations must be >= 1, got %d", c.Pipeline.MaxIterations)
	}
	if c.Pipeline.Concurrency < 1 {
		return fmt.Errorf("pipeline.concurrency must be >= 1, got %d", c.Pipeline.Concurrency)
	}
	if c.QA.NavigationTimeout <= 0 {
		return errors.New("qa.navigation_timeout must be positive")
	}
	if c.Generation.RateLimit <= 0 {
		return errors.New("generation.rate_limit must be positive")
	}
	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("store.driver must be 'memory' or 'sqlite', got %q", c.Store.Driver)
	}
	if c.Events.Enabled && c.Events.NATSURL == "" {
		return errors.New("events.nats_url is required when events are enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		return errors.New("telemetry.service_name is required when telemetry is enabled")
	}
	return nil
}
