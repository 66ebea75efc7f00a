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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ThomasMo54/teaching-shop-example/internal/auth"
	"github.com/ThomasMo54/teaching-shop-example/internal/config"
	"github.com/ThomasMo54/teaching-shop-example/internal/event"
	handler "github.com/ThomasMo54/teaching-shop-example/internal/handler/http"
	pgrepo "github.com/ThomasMo54/teaching-shop-example/internal/repository/postgres"
	redisrepo "github.com/ThomasMo54/teaching-shop-example/internal/repository/redis"
	"github.com/ThomasMo54/teaching-shop-example/internal/service"
	"github.com/ThomasMo54/teaching-shop-example/migrations"
	"github.com/ThomasMo54/teaching-shop-example/pkg/database"
	"github.com/ThomasMo54/teaching-shop-example/pkg/health"
	pkgkafka "github.com/ThomasMo54/teaching-shop-example/pkg/kafka"
	"github.com/ThomasMo54/teaching-shop-example/pkg/middleware"
	"github.com/ThomasMo54/teaching-shop-example/pkg/tracing"
)

// ServiceName identifies this process in logs, metrics and traces.
const ServiceName = "catalog-service"

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumer       *pkgkafka.Consumer
	limiter        *middleware.IPRateLimiter
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.OTELEnabled,
		ServiceName:    ServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	// PostgreSQL
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)
	a.pool, err = database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, a.pool, migrations.FS, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	// Redis
	a.rdb, err = database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.Redis().Addr()),
		slog.Int("db", cfg.RedisDB),
	)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := database.RegisterPoolMetrics(reg, a.pool, ServiceName); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}
	kafkaMetrics := pkgkafka.NewMetrics(reg)

	// Kafka
	var publisher service.EventPublisher = event.NopPublisher{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
		}, kafkaMetrics, logger)
		publisher = event.NewProducer(a.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("kafka disabled, domain events are dropped")
	}

	// Repositories
	productRepo := pgrepo.NewProductRepository(a.pool)
	reviewRepo := pgrepo.NewReviewRepository(a.pool)
	viewRepo := pgrepo.NewViewRepository(a.pool)
	carrierRepo := pgrepo.NewCarrierRepository(a.pool)
	analyticsCache := redisrepo.NewAnalyticsCache(a.rdb, cfg.AnalyticsCacheTTL())
	trending := redisrepo.NewTrendingBoard(a.rdb)

	// Admin credentials
	passwordHash := cfg.AdminPasswordHash
	if passwordHash == "" {
		passwordHash, err = auth.HashPassword(cfg.AdminPassword, auth.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		logger.Warn("ADMIN_PASSWORD_HASH not set, using hashed ADMIN_PASSWORD",
			slog.String("environment", cfg.Environment),
		)
	}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL())

	// Services
	productService := service.NewProductService(productRepo, analyticsCache, trending, publisher, logger)
	analyticsService := service.NewAnalyticsService(productRepo, viewRepo, analyticsCache, trending, publisher, logger)
	svc := handler.Services{
		Products:  productService,
		Reviews:   service.NewReviewService(reviewRepo, productRepo, publisher, logger),
		Analytics: analyticsService,
		Carriers:  service.NewCarrierService(carrierRepo, logger),
		Admin: service.NewAdminService(
			auth.NewCredentials(cfg.AdminUsername, passwordHash),
			jwtManager, productRepo, reviewRepo, carrierRepo, logger,
		),
	}

	// Trending projection
	if cfg.KafkaEnabled && cfg.AnalyticsConsumerEnabled {
		consumerCfg := event.ViewConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			Store:   redisrepo.NewIdempotencyStore(a.rdb, cfg.IdempotencyTTL()),
			Metrics: kafkaMetrics,
		}
		if cfg.KafkaDLQEnabled {
			a.dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
			consumerCfg.DLQ = a.dlq
		}
		a.consumer = event.NewViewConsumer(consumerCfg, analyticsService, logger)
	}

	// Health checks
	healthHandler := health.NewHandler(cfg.Version, 2*time.Second)
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return a.pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return a.rdb.Ping(ctx).Err()
	})
	if a.producer != nil {
		healthHandler.Register("kafka", a.producer.Ping)
	}

	a.limiter = middleware.NewIPRateLimiter(cfg.ViewRateLimitRPS, cfg.ViewRateLimitBurst, 10*time.Minute)
	if err := a.limiter.TrustProxies(cfg.TrustedProxyCIDRs); err != nil {
		return nil, fmt.Errorf("configure trusted proxies: %w", err)
	}

	router := handler.NewRouter(svc, handler.RouterConfig{
		ServiceName:    ServiceName,
		Version:        cfg.Version,
		CORS:           middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		Metrics:        middleware.NewHTTPMetrics(reg, ServiceName),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		ViewLimiter:    a.limiter,
		TokenValidator: jwtManager.Principal,
	}, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ok = true
	return a, nil
}

// Run starts the HTTP server and background workers and blocks until the
// context is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.limiter.Run(gctx)
		return nil
	})

	if a.consumer != nil {
		g.Go(func() error {
			return a.consumer.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")
		return a.shutdownHTTP()
	})

	err := g.Wait()
	a.close()
	return err
}

func (a *App) shutdownHTTP() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// close releases every initialized component. It is safe on a partially
// constructed App.
func (a *App) close() {
	a.logger.Info("shutting down application...")

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("kafka dlq close error", slog.String("error", err.Error()))
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
	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
}
