// Package main is the entrypoint for the Reel Insight HTTP server.
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

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/reelinsight/internal/api"
	"github.com/kiranshivaraju/reelinsight/internal/api/handler"
	mw "github.com/kiranshivaraju/reelinsight/internal/api/middleware"
	"github.com/kiranshivaraju/reelinsight/internal/app"
	"github.com/kiranshivaraju/reelinsight/internal/config"
	"github.com/kiranshivaraju/reelinsight/internal/web"
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel,
	})))
	slog.Info("config loaded",
		"ai_provider", cfg.AI.Provider,
		"store_backend", cfg.Store.Backend,
		"env", cfg.Server.Env,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect backends and wire the pipeline
	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// 3. Sweep stale temp files in the background
	go a.Janitor.Run(ctx)

	// 4. Build router with dependencies
	router, err := newRouter(cfg, a)
	if err != nil {
		return err
	}

	// 5. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.WriteTimeout,
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

func newRouter(cfg *config.Config, a *app.App) (http.Handler, error) {
	pages, err := web.NewPages(a.Service)
	if err != nil {
		return nil, err
	}

	auth := mw.NewAuth(cfg.API.KeyHashes)
	if auth.Enabled() {
		slog.Info("API key authentication enabled", "keys", len(cfg.API.KeyHashes))
	}

	return api.NewRouter(api.Dependencies{
		Auth:              auth,
		RateLimit:         mw.NewRateLimit(a.Cache, cfg.API.RateLimitPerMin),
		TrustProxyHeaders: cfg.API.TrustProxyHeaders,

		HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{
			"store": a.Store,
			"cache": a.Cache,
		}),
		SubmitHandler:    handler.NewSubmitHandler(a.Service),
		GetResultHandler: handler.NewGetResultHandler(a.Service),
		StatusHandler:    handler.NewStatusHandler(a.Service),

		IndexPage:   pages.Index,
		SubmitForm:  pages.Submit,
		ResultsPage: pages.Results,
	}), nil
}
