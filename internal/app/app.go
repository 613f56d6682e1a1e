package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/source"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/internal/storage/memory"
	pgstorage "github.com/utafrali/storefront/internal/storage/postgres"
	redisstorage "github.com/utafrali/storefront/internal/storage/redis"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const (
	serviceName    = "storefront"
	serviceVersion = "0.1.0"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	loader         *source.Loader
	rdb            *goredis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Tracing.
	shutdown, err := tracing.Setup(ctx, tracing.Config{
		Service:     serviceName,
		Version:     serviceVersion,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTELEndpoint,
		SampleRate:  cfg.OTELSampleRate,
		Enabled:     cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	// Storage backend.
	backend, err := a.openBackend(ctx)
	if err != nil {
		a.closeResources()
		return nil, err
	}
	store := storage.New(backend, cfg.StoragePrefix, logger)

	// Kafka producer, only when brokers are configured.
	var events *event.Producer
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(a.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Product feed.
	hcfg := httpclient.DefaultConfig()
	hcfg.Timeout = cfg.ProductsFetchTimeout
	hcfg.MaxRetries = cfg.ProductsMaxRetries
	feedClient := httpclient.New(hcfg,
		httpclient.WithBreaker(httpclient.NewBreaker(httpclient.DefaultBreakerConfig("products"), logger)))
	a.loader = source.NewLoader(source.NewHTTPFetcher(feedClient, cfg.ProductsURL), logger)

	sessions := session.NewRegistry(a.loader, store, events, session.Config{
		PageSize:    cfg.PageSize,
		Locale:      cfg.Locale,
		MaxSessions: cfg.MaxSessions,
		MinIdle:     handler.RequestTimeout,
	}, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("storage", store.Ping)
	healthHandler.RegisterNonCritical("products", func(context.Context) error {
		if msg := a.loader.State().Error; msg != "" {
			return errors.New(msg)
		}
		return nil
	})
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	h := handler.NewHandler(sessions, a.loader, cfg.TopRatedThreshold, logger)
	router := handler.NewRouter(h, healthHandler, cors, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// openBackend connects the configured storage backend.
func (a *App) openBackend(ctx context.Context) (storage.Backend, error) {
	switch a.cfg.StorageBackend {
	case config.BackendRedis:
		rcfg := database.DefaultRedisConfig()
		rcfg.Addr = a.cfg.RedisAddr
		rcfg.Password = a.cfg.RedisPass
		rcfg.DB = a.cfg.RedisDB
		rdb, err := database.NewRedisClient(ctx, rcfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		a.logger.Info("connected to Redis",
			slog.String("addr", a.cfg.RedisAddr),
			slog.Int("db", a.cfg.RedisDB),
		)
		return redisstorage.New(rdb, a.cfg.StorageTTL()), nil

	case config.BackendPostgres:
		pcfg := database.DefaultPostgresConfig()
		pcfg.Host = a.cfg.PostgresHost
		pcfg.Port = a.cfg.PostgresPort
		pcfg.User = a.cfg.PostgresUser
		pcfg.Password = a.cfg.PostgresPassword
		pcfg.DBName = a.cfg.PostgresDB
		pcfg.SSLMode = a.cfg.PostgresSSLMode
		pool, err := database.NewPostgresPool(ctx, &pcfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		if err := pgstorage.Migrate(ctx, pool, a.logger); err != nil {
			return nil, err
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		a.logger.Info("connected to PostgreSQL", slog.String("host", a.cfg.PostgresHost))
		return pgstorage.New(pool), nil

	default:
		a.logger.Info("using in-memory storage")
		return memory.New(), nil
	}
}

// Run loads the product feed, starts the HTTP server and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go a.loader.Load(ctx)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeResources() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
