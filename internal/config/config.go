package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Statistics backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"picture-riddle"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"10s"`

	Game     Game
	Catalog  Catalog
	Storage  Storage
	SQLite   SQLite
	Redis    Redis
	Postgres Postgres
	CORS     CORS
}

// Game groups gameplay tuning.
type Game struct {
	QuestionTime     int           `env:"GAME_QUESTION_TIME" envDefault:"15"`
	TickInterval     time.Duration `env:"GAME_TICK_INTERVAL" envDefault:"1s"`
	HintsPerSession  int           `env:"GAME_HINTS_PER_SESSION" envDefault:"3"`
	PointsPerCorrect int           `env:"GAME_POINTS_PER_CORRECT" envDefault:"10"`
	Seed             uint64        `env:"GAME_SEED" envDefault:"0"`
}

// Catalog points at an alternative question catalog; empty uses the embedded one.
type Catalog struct {
	Path string `env:"CATALOG_PATH" envDefault:""`
}

// Storage selects where lifetime statistics live.
type Storage struct {
	Backend        string        `env:"STATS_BACKEND" envDefault:"sqlite"`
	Key            string        `env:"STATS_KEY" envDefault:"nepGameStats"`
	PersistTimeout time.Duration `env:"STATS_PERSIST_TIMEOUT" envDefault:"2s"`
}

// SQLite is the local single-file backend.
type SQLite struct {
	Path string `env:"SQLITE_PATH" envDefault:"./data/riddle.db"`
}

// Redis holds the cache backend configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"5"`
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:"postgres"`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:"riddle"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type"`
	MaxAge         int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// DSN renders a libpq-style connection URL.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (a *App) IsProduction() bool {
	return a.Env == "production"
}

// Validate rejects values the game cannot run with.
func (a *App) Validate() error {
	switch a.Storage.Backend {
	case BackendMemory, BackendRedis, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("STATS_BACKEND %q: must be one of memory, redis, sqlite, postgres", a.Storage.Backend)
	}
	if a.Storage.Key == "" {
		return errors.New("STATS_KEY must not be empty")
	}
	if a.Game.QuestionTime <= 0 {
		return errors.New("GAME_QUESTION_TIME must be positive")
	}
	if a.Game.HintsPerSession < 0 {
		return errors.New("GAME_HINTS_PER_SESSION must not be negative")
	}
	if a.Game.PointsPerCorrect <= 0 {
		return errors.New("GAME_POINTS_PER_CORRECT must be positive")
	}
	if a.Game.TickInterval < 0 {
		return errors.New("GAME_TICK_INTERVAL must not be negative")
	}
	return nil
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
