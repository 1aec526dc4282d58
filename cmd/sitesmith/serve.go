package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpserver "github.com/fyrsmithlabs/sitesmith/internal/http"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the sitesmith HTTP API",
		Long: `Start the HTTP API. Generations are requested with POST /api/v1/generate
and their progress is streamed back as server-sent events.

Examples:
  # Start with defaults (localhost:9191)
  sitesmith serve

  # Persist history in SQLite
  SITESMITH_STORE_DRIVER=sqlite sitesmith serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, root)
		},
	}
}

// runServe blocks until ctx is cancelled, then shuts the server down
// within the configured timeout.
func runServe(ctx context.Context, root *rootOptions) error {
	a, err := newApp(ctx, root, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	opts := []httpserver.Option{
		httpserver.WithHistory(a.history),
		httpserver.WithProviders(a.deployers.Names()),
	}
	if a.publisher != nil {
		opts = append(opts, httpserver.WithRelay(a.publisher, a.publisher))
	}
	srv, err := httpserver.NewServer(a.pipeline, a.logger, &httpserver.Config{
		Host:    a.cfg.Server.Host,
		Port:    a.cfg.Server.Port,
		Version: version,
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	a.logger.Info(ctx, "server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://%s:%d/health", a.cfg.Server.Host, a.cfg.Server.Port)),
		zap.String("generate_endpoint", "/api/v1/generate"),
		zap.String("metrics_endpoint", "/metrics"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	a.logger.Info(shutdownCtx, "server shutdown complete")
	return nil
}
