// Package app wires configuration into the storage, services and worker shared by the entrypoints.
package app

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/config"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/workers"
)

type App struct {
	Config *config.Config
	Logger zerolog.Logger

	DB    *sqlx.DB
	Redis *redis.Client
	Store repository.Store

	Registry *prometheus.Registry
	Metrics  *metrics.Recorder

	Normalizer *analytics.Normalizer
	Readiness  *services.ReadinessService
	Trends     *services.TrendService
	Plans      *services.PlanService
	Ingest     *services.IngestService
	Worker     *workers.ReadinessWorker
}

// OpenDatabase connects with the configured driver. SQLite databases get their tables created.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY and keeps ":memory:" databases shared
		db.SetMaxOpenConns(1)
		if err := repository.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// New builds every component from a validated config. Close releases the connections.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	a.Metrics = metrics.NewRecorder(a.Registry)

	db, err := OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a.DB = db
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	var store repository.Store = repository.NewSQLMetricRepository(db)
	store = repository.NewBreakerMetricRepository(store, repository.BreakerSettings{
		MaxRequests:         cfg.Breaker.MaxRequests,
		Interval:            cfg.Breaker.Interval,
		Timeout:             cfg.Breaker.Timeout,
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
	}, logger)

	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// the engine works without redis; only caching and shared rate limiting are lost
			logger.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		} else {
			a.Redis = rdb
			store = repository.NewCachedMetricRepository(store, rdb, cfg.Redis.CacheTTL, logger)
		}
	}
	a.Store = store

	a.Normalizer, err = analytics.NewNormalizer(cfg.Workouts.DefaultDistanceUnit)
	if err != nil {
		a.Close()
		return nil, err
	}

	params := analytics.ScoringParams{
		HRVWindowDays:    cfg.Readiness.HRVWindowDays,
		TrainingLoadDays: cfg.Readiness.TrainingLoadDays,
		LogisticK:        cfg.Readiness.LogisticK,
		Source:           cfg.Readiness.Source,
	}
	if err := params.Validate(); err != nil {
		a.Close()
		return nil, err
	}

	a.Readiness = services.NewReadinessService(store, a.Normalizer, params, logger, a.Metrics)
	a.Trends = services.NewTrendService(store, a.Normalizer, services.TrendLimits{
		DefaultWeeks: cfg.Trends.DefaultWeeks,
		MaxWeeks:     cfg.Trends.MaxWeeks,
	}, logger, a.Metrics)
	a.Plans = services.NewPlanService(store, a.Normalizer, logger)
	a.Worker = workers.NewReadinessWorker(a.Readiness, cfg.Worker.QueueSize, cfg.Worker.DrainTimeout, logger)
	a.Ingest = services.NewIngestService(store, a.Worker, RecomputeWindows(cfg), logger)

	return a, nil
}

// RecomputeWindows tells ingest how far stored readiness depends on a day's samples.
func RecomputeWindows(cfg *config.Config) services.RecomputeWindows {
	return services.RecomputeWindows{
		TrainingLoadDays: cfg.Readiness.TrainingLoadDays,
		HRVWindowDays:    cfg.Readiness.HRVWindowDays,
	}
}

// Ping checks the database for health reporting.
func (a *App) Ping(ctx context.Context) error {
	return a.DB.PingContext(ctx)
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("closing redis")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("closing database")
		}
	}
}
