package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
	"github.com/gokatarajesh/picture-riddle/internal/config"
	"github.com/gokatarajesh/picture-riddle/internal/db/migrations"
	"github.com/gokatarajesh/picture-riddle/internal/game"
	"github.com/gokatarajesh/picture-riddle/internal/game/scoring"
	"github.com/gokatarajesh/picture-riddle/internal/logging"
	"github.com/gokatarajesh/picture-riddle/internal/metrics"
	"github.com/gokatarajesh/picture-riddle/internal/question"
	"github.com/gokatarajesh/picture-riddle/internal/server"
	"github.com/gokatarajesh/picture-riddle/internal/stats"
	ws "github.com/gokatarajesh/picture-riddle/pkg/http/ws"
)

// Game is the process-wide game wiring shared by the API server and the terminal player.
type Game struct {
	Catalog    *catalog.Catalog
	Controller *game.Controller
	Registry   *prometheus.Registry

	ready   func() error
	closers []io.Closer
	cleanup []func()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// NewGame loads the catalog, opens the statistics backend and builds the controller.
// Statistics that fail to load fall back to zero; the game still starts.
func NewGame(ctx context.Context, cfg *config.App, logger zerolog.Logger) (*Game, error) {
	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	g := &Game{Catalog: c, Registry: reg}
	store, err := g.openStore(ctx, cfg, logger)
	if err != nil {
		g.Close()
		return nil, err
	}

	tracker := stats.NewTracker(store, logger, stats.TrackerOptions{
		PersistTimeout: cfg.Storage.PersistTimeout,
		Metrics:        m,
	})
	if err := tracker.Load(ctx); err != nil {
		logger.Warn().Err(err).Str("backend", cfg.Storage.Backend).Msg("continuing with empty statistics")
	}

	selector := question.NewSelector(c, question.NewRand(cfg.Game.Seed))
	g.Controller = game.NewController(c, selector, tracker, game.Options{
		QuestionTime:    cfg.Game.QuestionTime,
		TickInterval:    cfg.Game.TickInterval,
		HintsPerSession: cfg.Game.HintsPerSession,
		Scoring:         scoring.ScoringConfig{PointsPerCorrect: cfg.Game.PointsPerCorrect},
		Metrics:         m,
	}, logger)
	g.cleanup = append(g.cleanup, g.Controller.Close)

	logger.Info().
		Int("themes", len(c.Themes())).
		Int("questions", c.Size()).
		Str("stats_backend", cfg.Storage.Backend).
		Msg("game ready")
	return g, nil
}

func (g *Game) openStore(ctx context.Context, cfg *config.App, logger zerolog.Logger) (stats.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return stats.NewMemoryStore(), nil

	case config.BackendSQLite:
		store, err := stats.OpenSQLite(cfg.SQLite.Path, cfg.Storage.Key)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		g.closers = append(g.closers, store)
		return store, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		g.closers = append(g.closers, client)
		g.ready = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.PersistTimeout)
			defer cancel()
			return client.Ping(ctx).Err()
		}
		if err := g.ready(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable at startup")
		}
		return stats.NewRedisStore(client, cfg.Storage.Key), nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		g.closers = append(g.closers, closerFunc(func() error { pool.Close(); return nil }))

		db := stdlib.OpenDBFromPool(pool)
		migrateErr := migrations.Up(ctx, db)
		_ = db.Close()
		if migrateErr != nil {
			return nil, fmt.Errorf("migrate postgres: %w", migrateErr)
		}
		g.ready = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.PersistTimeout)
			defer cancel()
			return pool.Ping(ctx)
		}
		return stats.NewPostgresStore(pool, cfg.Storage.Key), nil

	default:
		return nil, fmt.Errorf("unknown stats backend %q", cfg.Storage.Backend)
	}
}

// Ready reports backend reachability; nil for local backends.
func (g *Game) Ready() error {
	if g.ready == nil {
		return nil
	}
	return g.ready()
}

// Close stops the countdown and releases the storage backend.
func (g *Game) Close() error {
	for _, fn := range g.cleanup {
		fn()
	}
	var errs []error
	for i := len(g.closers) - 1; i >= 0; i-- {
		if err := g.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Application aggregates shared infrastructure (game, websocket hub, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	game *Game
	hub  *ws.Hub
	http *http.Server
}

// New bootstraps logger, game wiring and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	g, err := NewGame(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub(logger)
	g.cleanup = append(g.cleanup, server.Broadcast(g.Controller, hub, logger))

	apiServer := server.NewHTTPServer(cfg, logger, server.Deps{
		Controller: g.Controller,
		Catalog:    g.Catalog,
		Hub:        hub,
		Metrics:    promhttp.HandlerFor(g.Registry, promhttp.HandlerOpts{}),
		Ready:      g.Ready,
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		game:   g,
		hub:    hub,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}
	a.hub.CloseAll()

	if err := a.game.Close(); err != nil {
		a.logger.Error().Err(err).Msg("storage shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}
