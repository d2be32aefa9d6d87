package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/ScentGo/internal/config"
	"github.com/utafrali/ScentGo/internal/repository"
	"github.com/utafrali/ScentGo/internal/repository/postgres"
	"github.com/utafrali/ScentGo/internal/repository/rest"
	"github.com/utafrali/ScentGo/internal/storage"
	"github.com/utafrali/ScentGo/internal/storage/memory"
	redisstore "github.com/utafrali/ScentGo/internal/storage/redis"
	"github.com/utafrali/ScentGo/internal/storage/sqlite"
	"github.com/utafrali/ScentGo/migrations"
	"github.com/utafrali/ScentGo/pkg/database"
	"github.com/utafrali/ScentGo/pkg/httpclient"
)

// Backend is the remote store selected by BACKEND_DRIVER.
type Backend struct {
	Driver   string
	Perfumes repository.PerfumeRepository
	Reviews  repository.ReviewRepository
	Users    repository.UserRepository

	// Pool is set for the postgres driver only.
	Pool *pgxpool.Pool

	ping func(ctx context.Context) error
}

// Ping checks the remote store is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

// Close releases the remote connections.
func (b *Backend) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
}

// OpenBackend connects to the remote store. For postgres it also registers
// pool metrics on reg (when non-nil) and applies migrations when enabled.
func OpenBackend(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*Backend, error) {
	switch cfg.BackendDriver {
	case config.BackendREST:
		return openREST(cfg, logger), nil
	case config.BackendPostgres:
		return openPostgres(ctx, cfg, reg, logger)
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.BackendDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*Backend, error) {
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if reg != nil {
		if err := database.RegisterPoolMetrics(reg, pool, "scentgo"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
	}

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
	}

	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	return &Backend{
		Driver:   config.BackendPostgres,
		Perfumes: postgres.NewPerfumeRepository(pool),
		Reviews:  postgres.NewReviewRepository(pool),
		Users:    postgres.NewUserRepository(pool),
		Pool:     pool,
		ping:     pool.Ping,
	}, nil
}

func openREST(cfg *config.Config, logger *slog.Logger) *Backend {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.RemoteTimeout
	hc := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("hosted-backend"),
		logger,
	)
	client := rest.NewClient(rest.Config{BaseURL: cfg.BackendURL, APIKey: cfg.BackendAPIKey}, hc)
	logger.Info("using hosted backend", slog.String("url", cfg.BackendURL))

	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	return &Backend{
		Driver:   config.BackendREST,
		Perfumes: rest.NewPerfumeRepository(client),
		Reviews:  rest.NewReviewRepository(client),
		Users:    rest.NewUserRepository(client),
		ping:     client.Ping,
	}
}

// OpenLocalStore opens the on-device key-value store selected by
// LOCAL_STORE_DRIVER.
func OpenLocalStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.LocalStoreDriver {
	case config.LocalStoreSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("local store opened", slog.String("driver", "sqlite"), slog.String("path", cfg.SQLitePath))
		return s, nil
	case config.LocalStoreRedis:
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("local store opened", slog.String("driver", "redis"), slog.String("addr", cfg.RedisAddr))
		return redisstore.New(client, cfg.RedisNamespace), nil
	case config.LocalStoreMemory:
		logger.Warn("local store is in-memory; favorites and drafts are lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown local store driver %q", cfg.LocalStoreDriver)
	}
}
