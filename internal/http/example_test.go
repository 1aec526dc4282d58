package http_test

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	httpserver "github.com/fyrsmithlabs/sitesmith/internal/http"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
	"github.com/fyrsmithlabs/sitesmith/internal/pipeline"
	"github.com/fyrsmithlabs/sitesmith/internal/store"
)

// ExampleServer demonstrates how to create and start the HTTP server.
func ExampleServer() {
	logger := logging.NewNop()
	ctx := context.Background()

	// Deterministic generation, sites written under ./output
	runner := pipeline.New(pipeline.Options{Logger: logger})

	cfg := &httpserver.Config{
		Host:    "localhost",
		Port:    0,
		Version: "dev",
	}

	server, err := httpserver.NewServer(runner, logger, cfg,
		httpserver.WithHistory(store.NewMemory()),
		httpserver.WithProviders([]string{"local"}),
	)
	if err != nil {
		panic(err)
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Error(ctx, "server error", zap.Error(err))
		}
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "shutdown error", zap.Error(err))
	}

	fmt.Println("Server started and stopped successfully")
	// Output: Server started and stopped successfully
}
