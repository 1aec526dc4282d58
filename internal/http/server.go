// Package http provides the HTTP API for sitesmith.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sitesmith/internal/events"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
	"github.com/fyrsmithlabs/sitesmith/internal/pipeline"
	"github.com/fyrsmithlabs/sitesmith/internal/store"
)

// Runner runs generations.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, sink events.Sink) (*pipeline.Result, error)
	Describe(version string, providers []string) pipeline.Status
}

// Subscriber streams the events of a run published elsewhere.
type Subscriber interface {
	Subscribe(ctx context.Context, generationID string) (<-chan events.Event, error)
}

// Server provides HTTP endpoints for sitesmith.
type Server struct {
	echo       *echo.Echo
	runner     Runner
	history    store.Repository
	relay      events.Sink
	subscriber Subscriber
	providers  []string
	metrics    *HTTPMetrics
	logger     *logging.Logger
	config     *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host    string
	Port    int
	Version string
	// Heartbeat is the interval of SSE keep-alive comments.
	Heartbeat time.Duration
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithHistory serves generation records from repo.
func WithHistory(repo store.Repository) Option {
	return func(s *Server) { s.history = repo }
}

// WithRelay copies every streamed event to sink, and serves
// GET /api/v1/generations/:id/events from sub when it is not nil.
func WithRelay(sink events.Sink, sub Subscriber) Option {
	return func(s *Server) {
		s.relay = sink
		s.subscriber = sub
	}
}

// WithProviders lists the deployment providers in the status descriptor.
func WithProviders(names []string) Option {
	return func(s *Server) { s.providers = names }
}

// NewServer creates a new HTTP server.
func NewServer(runner Runner, logger *logging.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9191,
		}
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 30 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	metrics := NewHTTPMetrics(logger)
	e.Use(metrics.MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:    e,
		runner:  runner,
		metrics: metrics,
		logger:  logger,
		config:  cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/status", s.handleStatus)
	v1.POST("/generate", s.handleGenerate)
	v1.GET("/generations", s.handleListGenerations)
	v1.GET("/generations/:id", s.handleGetGeneration)
	v1.GET("/generations/:id/events", s.handleGenerationEvents)
}

// Handler exposes the router, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.runner.Describe(s.config.Version, s.providers))
}

// handleGenerate validates the intake, then runs the pipeline and streams
// its events as SSE. A client disconnect cancels the run.
func (s *Server) handleGenerate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid generate request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	cfg, err := intake.Normalize(req.Intake)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	stream := events.NewChannelSink(16)
	var sink events.Sink = stream
	if s.relay != nil {
		sink = events.MultiSink{stream, s.relay}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.runner.Run(ctx, pipeline.Request{Config: cfg, Deploy: req.Deploy.toDeploy()}, sink)
		if err != nil {
			s.logger.Warn(ctx, "generation ended with error", zap.Error(err))
		}
	}()

	startStream(c)
	defer s.metrics.streamOpened(ctx)()
	ticker := time.NewTicker(s.config.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case e := <-stream.C:
			if err := s.writeEvent(c, e); err != nil {
				return nil
			}
			if e.Terminal() {
				return nil
			}

		case <-done:
			// Run returned; everything it emitted is already buffered.
			for {
				select {
				case e := <-stream.C:
					if err := s.writeEvent(c, e); err != nil {
						return nil
					}
				default:
					return nil
				}
			}

		case <-ticker.C:
			fmt.Fprint(c.Response(), ": heartbeat\n\n")
			c.Response().Flush()

		case <-ctx.Done():
			return nil
		}
	}
}

// handleGenerationEvents relays a run's events from the message bus.
func (s *Server) handleGenerationEvents(c echo.Context) error {
	if s.subscriber == nil {
		return echo.NewHTTPError(http.StatusNotFound, "event relay is not enabled")
	}
	ctx := c.Request().Context()
	ch, err := s.subscriber.Subscribe(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	startStream(c)
	defer s.metrics.streamOpened(ctx)()
	ticker := time.NewTicker(s.config.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			if err := s.writeEvent(c, e); err != nil {
				return nil
			}
			if e.Terminal() {
				return nil
			}

		case <-ticker.C:
			fmt.Fprint(c.Response(), ": heartbeat\n\n")
			c.Response().Flush()

		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Server) handleGetGeneration(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusNotFound, "generation history is not enabled")
	}
	rec, err := s.history.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "generation not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleListGenerations(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusNotFound, "generation history is not enabled")
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}
	recs, err := s.history.List(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if recs == nil {
		recs = []*store.Record{}
	}
	return c.JSON(http.StatusOK, GenerationsResponse{Generations: recs})
}

func startStream(c echo.Context) {
	h := c.Response().Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()
}

func (s *Server) writeEvent(c echo.Context, e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", e.Type, data); err != nil {
		return err
	}
	c.Response().Flush()
	s.metrics.eventStreamed(c.Request().Context(), e.Type)
	return nil
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
