// Package main is the entrypoint for the code review analysis server.
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

	"github.com/kiranshivaraju/codereview/internal/ai"
	"github.com/kiranshivaraju/codereview/internal/api"
	"github.com/kiranshivaraju/codereview/internal/api/handler"
	mw "github.com/kiranshivaraju/codereview/internal/api/middleware"
	"github.com/kiranshivaraju/codereview/internal/cache"
	"github.com/kiranshivaraju/codereview/internal/config"
	"github.com/kiranshivaraju/codereview/internal/store"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
)

const shutdownTimeout = 30 * time.Second

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "codereview-server",
	Short: "Source review and refactoring service",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(apiKeyCmd)
	rootCmd.Version = version
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// 1. Load config, failing fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env, "auth_enabled", cfg.Auth.Enabled)

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create AI provider
	aiProvider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name(), "model", aiProvider.Model())

	// 6. Create store and review service
	pgStore := store.NewPostgresStore(pool)
	reviews := ai.NewReviewService(aiProvider, pgStore, redisCache,
		cfg.AI.InferenceTimeout, cfg.Review.RefactorCacheTTL)

	// 7. Build router
	router := api.NewRouter(buildDependencies(cfg, pgStore, redisCache, aiProvider.Name(), reviews))

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// both AI calls may run to the inference timeout
		WriteTimeout: 2*cfg.AI.InferenceTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// buildDependencies wires handlers and middleware. Authentication is only
// installed when enabled, and rate limiting only with a positive limit.
func buildDependencies(cfg *config.Config, st store.Store, c cache.Cache, provider string, reviews *ai.ReviewService) api.Dependencies {
	analyzeOpts := handler.AnalyzeOptions{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Timeout:        2*cfg.AI.InferenceTimeout + 10*time.Second,
	}
	legacyOpts := analyzeOpts
	legacyOpts.Bare = true

	deps := api.Dependencies{
		HealthHandler:        handler.NewHealthHandler(st, c, provider),
		AnalyzeHandler:       handler.NewAnalyzeHandler(reviews, analyzeOpts),
		LegacyAnalyzeHandler: handler.NewAnalyzeHandler(reviews, legacyOpts),
		ListReviewsHandler:   handler.NewListReviewsHandler(reviews),
		GetReviewHandler:     handler.NewGetReviewHandler(reviews),
	}
	if cfg.Auth.Enabled {
		deps.Auth = mw.NewAuth(st)
	}
	if cfg.Auth.RateLimitPerMin > 0 {
		deps.RateLimit = mw.NewRateLimit(c, cfg.Auth.RateLimitPerMin)
	}
	return deps
}
