package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/ScentGo/internal/auth"
	"github.com/utafrali/ScentGo/internal/config"
	"github.com/utafrali/ScentGo/internal/event"
	"github.com/utafrali/ScentGo/internal/favorite"
	handler "github.com/utafrali/ScentGo/internal/handler/http"
	"github.com/utafrali/ScentGo/internal/profile"
	"github.com/utafrali/ScentGo/internal/review"
	"github.com/utafrali/ScentGo/internal/stats"
	"github.com/utafrali/ScentGo/internal/storage"
	"github.com/utafrali/ScentGo/pkg/health"
	pkgkafka "github.com/utafrali/ScentGo/pkg/kafka"
	"github.com/utafrali/ScentGo/pkg/middleware"
	"github.com/utafrali/ScentGo/pkg/tracing"
)

// Version is reported to the tracer.
const Version = "0.1.0"

// App wires together all dependencies and runs the ScentGo service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	backend        *Backend
	local          storage.Store
	producer       *pkgkafka.Producer
	unsubscribe    []func()
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	reg := prometheus.DefaultRegisterer

	backend, err := OpenBackend(ctx, cfg, reg, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	local, err := OpenLocalStore(ctx, cfg, logger)
	if err != nil {
		backend.Close()
		_ = tracerShutdown(context.Background())
		return nil, fmt.Errorf("open local store: %w", err)
	}

	// Kafka is optional; without it domain events are dropped.
	var (
		producer  *pkgkafka.Producer
		publisher event.Publisher = event.Noop{}
	)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		backend:        backend,
		local:          local,
		producer:       producer,
		tracerShutdown: tracerShutdown,
	}

	// Favorites: hydrate before serving so the first read sees the persisted set.
	favorites := favorite.New(local, logger)
	favorites.Hydrate(ctx)
	toggleCounter, err := favorite.NewToggleCounter(reg)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("register favorite metrics: %w", err)
	}
	a.unsubscribe = append(a.unsubscribe,
		favorites.Subscribe(toggleCounter),
		favorites.Subscribe(favorite.PublishChanges(publisher, logger)),
	)

	// Build the dependency graph.
	aggregator := stats.NewAggregator(backend.Perfumes, backend.Reviews, cfg.RemoteTimeout, logger)
	reviewService := review.NewService(backend.Reviews, backend.Perfumes, review.NewCache(local, logger), cfg.RemoteTimeout, logger)
	profileService := profile.NewService(favorites, reviewService, backend.Users, logger)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	authService := auth.NewService(backend.Users, jwtManager, publisher, auth.DefaultBcryptCost, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical(backend.Driver, backend.Ping)
	healthHandler.RegisterCritical("local_store", local.Ping)
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(reg, handler.ServiceName)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	// HTTP router.
	router := handler.NewRouter(handler.Deps{
		Stats:          aggregator,
		Favorites:      favorites,
		Reviews:        reviewService,
		Profile:        profileService,
		Auth:           authService,
		JWTManager:     jwtManager,
		Health:         healthHandler,
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.Handler(),
		CORS:           corsCfg,
		Logger:         logger,

		AuthRateLimitRPS:   cfg.AuthRateLimitRPS,
		AuthRateLimitBurst: cfg.AuthRateLimitBurst,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("backend", a.cfg.BackendDriver),
			slog.String("local_store", a.cfg.LocalStoreDriver),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Local store
// 5. Remote store
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.tracerShutdown = nil
	}

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources stops listeners and closes the producer and both stores.
func (a *App) closeResources() error {
	var errs []error

	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.unsubscribe = nil

	// 3. Close Kafka producer.
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}

	// 4. Close the local store.
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			a.logger.Error("local store close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.local = nil
	}

	// 5. Close the remote store.
	if a.backend != nil {
		a.backend.Close()
		a.backend = nil
	}

	if a.tracerShutdown != nil && a.httpServer == nil {
		_ = a.tracerShutdown(context.Background())
		a.tracerShutdown = nil
	}

	return errors.Join(errs...)
}
