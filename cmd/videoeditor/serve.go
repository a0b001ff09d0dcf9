package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maauso/videoeditor-bridge/internal/bootstrap"
	"github.com/maauso/videoeditor-bridge/internal/config"
	"github.com/maauso/videoeditor-bridge/internal/server"
	"github.com/maauso/videoeditor-bridge/internal/telemetry"
)

const serviceName = "videoeditor-bridge"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the method bridge over HTTP",
	Long: `Start the HTTP server. Methods are invoked with
POST /v1/methods/{method}; running operations are listed with
GET /v1/operations and cancelled with DELETE /v1/operations/{id}.

Example:
  PORT=8080 OUTPUT_DIR=/data/out videoeditor serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create structured logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting video editor bridge",
		slog.Int("port", cfg.Port),
		slog.String("log_format", cfg.LogFormat),
		slog.String("log_level", cfg.LogLevel),
		slog.String("output_dir", cfg.OutputDir),
		slog.Int("max_concurrent_operations", cfg.MaxConcurrentOperations),
		slog.Bool("s3_enabled", cfg.S3Enabled()),
		slog.Bool("tracing_enabled", cfg.OTelEndpoint != ""),
	)

	shutdownTracing, err := telemetry.Setup(cmd.Context(), serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	// Initialize dependencies using bootstrap
	deps, err := bootstrap.NewDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}
	if err := deps.VerifyTools(cmd.Context()); err != nil {
		logger.Warn("media tools unavailable, operations will fail",
			slog.String("error", err.Error()),
		)
	}

	// Initialize HTTP handlers and router
	handlers := server.NewHandlers(deps.Dispatcher, deps.Operations, deps.Storage, logger)
	router := server.NewRouter(handlers, logger, server.Config{AllowedOrigins: cfg.AllowedOrigins})

	// Create HTTP server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// Invocations block until the operation finishes.
		WriteTimeout: 60 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			slog.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-shutdownCh:
		logger.Info("received shutdown signal",
			slog.String("signal", sig.String()),
		)
	case err := <-errCh:
		deps.Close()
		return err
	}

	// Blocked invocations return once their operations are cancelled.
	cancelled := deps.Operations.CancelAll()
	logger.Info("cancelled running operations", slog.Int("count", cancelled))

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("failed to flush traces", slog.String("error", err.Error()))
	}

	logger.Info("server stopped gracefully")
	return nil
}
