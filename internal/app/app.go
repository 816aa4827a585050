package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/protyayrd/tweestbd-sub001/internal/catalog"
	"github.com/protyayrd/tweestbd-sub001/internal/config"
	"github.com/protyayrd/tweestbd-sub001/internal/event"
	handler "github.com/protyayrd/tweestbd-sub001/internal/handler/http"
	"github.com/protyayrd/tweestbd-sub001/internal/repository/postgres"
	redisrepo "github.com/protyayrd/tweestbd-sub001/internal/repository/redis"
	"github.com/protyayrd/tweestbd-sub001/internal/service"
	"github.com/protyayrd/tweestbd-sub001/pkg/database"
	"github.com/protyayrd/tweestbd-sub001/pkg/health"
	"github.com/protyayrd/tweestbd-sub001/pkg/httpclient"
	pkgkafka "github.com/protyayrd/tweestbd-sub001/pkg/kafka"
	"github.com/protyayrd/tweestbd-sub001/pkg/middleware"
	"github.com/protyayrd/tweestbd-sub001/pkg/tracing"
)

// App wires together all dependencies and runs the pricing service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	pool            *pgxpool.Pool
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
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

	// Initialize Redis client for the guest cart store.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Initialize tracing.
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "pricing-service",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize tracing: %w", err)
	}

	// Build the dependency graph.
	cartTTL := time.Duration(cfg.CartTTL) * time.Hour
	offerRepo := postgres.NewOfferRepository(pool)
	cartRepo := redisrepo.NewGuestCartRepository(rdb, cartTTL)
	eventProducer := event.NewProducer(producer, logger)

	offerCatalog, err := buildCatalog(cfg, offerRepo, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	offerService := service.NewOfferService(offerRepo, eventProducer, logger)
	pricingService := service.NewPricingService(offerCatalog, eventProducer, logger)
	cartService := service.NewCartService(cartRepo, logger, cartTTL)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		OfferService:   offerService,
		PricingService: pricingService,
		CartService:    cartService,
		HealthHandler:  healthHandler,
		Logger:         logger,
		CORS:           middleware.CORSConfig{AllowedOrigins: cfg.CORSOrigins},
		AdminToken:     sharedSecretValidator(cfg.AdminToken),
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		rdb:             rdb,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// buildCatalog selects the offer lookup source. Local mode reads the
// service's own Postgres tables; remote mode calls the catalog service
// behind a circuit breaker.
func buildCatalog(cfg *config.Config, repo *postgres.OfferRepository, logger *slog.Logger) (catalog.Catalog, error) {
	switch cfg.CatalogMode {
	case config.CatalogModeLocal:
		return catalog.NewRepositoryCatalog(repo), nil
	case config.CatalogModeRemote:
		client := httpclient.New(httpclient.DefaultConfig())
		cbClient := httpclient.NewCircuitBreakerClient(
			client,
			httpclient.DefaultCircuitBreakerConfig("catalog"),
			logger,
		)
		return catalog.NewHTTPCatalog(cbClient, cfg.CatalogURL), nil
	default:
		return nil, fmt.Errorf("unknown catalog mode: %q", cfg.CatalogMode)
	}
}

// sharedSecretValidator grants the admin role when the presented token
// matches the configured shared secret. An empty secret disables admin
// access entirely.
func sharedSecretValidator(secret string) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		if secret == "" || token != secret {
			return nil, errors.New("invalid token")
		}
		return &middleware.Claims{UserID: "admin", Role: "admin"}, nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	// Flush pending spans.
	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	// Close Redis client.
	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	// Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
