// Package app assembles the pipeline and its backing services from config.
// Both the HTTP server and the reelfetch CLI start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kiranshivaraju/reelinsight/internal/ai"
	"github.com/kiranshivaraju/reelinsight/internal/analysis"
	"github.com/kiranshivaraju/reelinsight/internal/cache"
	"github.com/kiranshivaraju/reelinsight/internal/config"
	"github.com/kiranshivaraju/reelinsight/internal/media"
	"github.com/kiranshivaraju/reelinsight/internal/pipeline"
	"github.com/kiranshivaraju/reelinsight/internal/store"
	"github.com/kiranshivaraju/reelinsight/internal/transcribe"
)

// StartupTimeout bounds how long dependency pings are retried at startup.
const StartupTimeout = 30 * time.Second

// App holds the wired service and the resources that must be closed on exit.
type App struct {
	Service *pipeline.Service
	Cache   cache.Cache
	Store   store.ResultStore
	Janitor *media.Janitor

	closers []func()
}

// Build connects to the configured backends and wires the pipeline. On
// error every resource opened so far is closed before returning.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}
	if err := a.wire(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, cfg *config.Config) error {
	if err := a.openCache(ctx, cfg); err != nil {
		return err
	}
	if err := a.openStore(ctx, cfg); err != nil {
		return err
	}

	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", provider.Name())

	a.Service = pipeline.NewService(
		cfg.Media.TempDir,
		media.NewFetcher(cfg.Media, media.ExecRunner{}),
		transcribe.NewClient(cfg.Transcribe),
		analysis.NewAnalyzer(provider, cfg.AI.InferenceTimeout),
		a.Store,
		a.Cache,
	)
	a.Janitor = media.NewJanitor(cfg.Media.TempDir, cfg.Media.TempMaxAge, cfg.Media.JanitorInterval)
	return nil
}

// Close releases every opened resource in reverse order. It is safe to call
// on a nil App and more than once.
func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openCache(ctx context.Context, cfg *config.Config) error {
	if cfg.Redis.URL == "" {
		a.Cache = cache.NewMemoryCache()
		slog.Info("using in-memory cache")
		return nil
	}

	rc, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })
	if err := PingWithRetry(ctx, "redis", rc.Ping, StartupTimeout); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	a.Cache = rc
	slog.Info("redis connected")
	return nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Store.Backend {
	case "memory":
		a.Store = store.NewMemoryStore()

	case "redis":
		a.Store = store.NewRedisStore(a.Cache, cfg.Store.ResultTTL)

	case "postgres":
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := PingWithRetry(ctx, "postgres", pool.Ping, StartupTimeout); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")
		a.Store = store.NewPostgresStore(pool)

	case "sqlite":
		s, err := store.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		a.Store = s

	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	slog.Info("result store ready", "backend", cfg.Store.Backend)
	return nil
}

// PingWithRetry calls ping with exponential backoff until it succeeds, ctx
// is done or maxElapsed passes.
func PingWithRetry(ctx context.Context, name string, ping func(context.Context) error, maxElapsed time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = maxElapsed

	attempt := 0
	op := func() error {
		attempt++
		err := ping(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("dependency not ready", "dependency", name, "attempt", attempt, "error", err)
		}
		if errors.Is(err, context.Canceled) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
