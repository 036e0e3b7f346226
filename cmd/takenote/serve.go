package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/takenote/internal/config"
	logpkg "github.com/kailas-cloud/takenote/internal/logger"
	"github.com/kailas-cloud/takenote/internal/metrics"
	chiTransport "github.com/kailas-cloud/takenote/internal/transport/chi"
	healthuc "github.com/kailas-cloud/takenote/internal/usecase/health"
	noteuc "github.com/kailas-cloud/takenote/internal/usecase/note"
	"github.com/kailas-cloud/takenote/internal/usecase/ratelimit"
	"github.com/kailas-cloud/takenote/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(false)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	env := config.GetEnv()
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting takenote API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	// Register inference metrics explicitly (no init())
	metrics.RegisterInferenceMetrics()

	providers, hfClient := buildProviders(cfg, store.cache, logger)
	engine := buildEngine(cfg, providers, false, logger)
	logger.Info("Analysis engine ready",
		zap.Int("providers", len(providers)),
		zap.Bool("hf_authenticated", cfg.Inference.HuggingFace.APIKey != ""),
		zap.Bool("openai_similarity", cfg.Inference.OpenAI.Enabled()),
		zap.Int("deadline_sec", cfg.Inference.DeadlineSec),
	)

	noteSvc := noteuc.New(store.notes, engine).
		WithPagination(cfg.Notes.DefaultPageSize, cfg.Notes.MaxPageSize)
	healthSvc := healthuc.New(store.pinger, hfClient)
	limiter := ratelimit.New(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.PeriodSec)*time.Second)

	server := chiTransport.NewServer(noteSvc, engine, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.SecurityHeaders)
	r.Use(chiTransport.RateLimitMiddleware(limiter))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.Tokens))
	r.Use(chiTransport.MaxBodySize(chiTransport.MaxBodyBytes))
	r.Use(metrics.Middleware())
	server.Routes(r)

	if len(cfg.Auth.Tokens) == 0 {
		logger.Warn("No auth tokens configured, every request runs as the anonymous user")
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		logger.Error("HTTP server error", zap.Error(err))
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
