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

	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/database"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/health"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/httpclient"
	pkgkafka "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/kafka"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/middleware"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/tracing"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/catalog"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/config"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/event"
	handler "github.com/Gracdom/Ecommercebabyproducts-sub001/internal/handler/http"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/lookup"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/mailer"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/provider"
	providermock "github.com/Gracdom/Ecommercebabyproducts-sub001/internal/provider/mock"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/provider/stripe"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/repository/postgres"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/service"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/webhook"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/migrations"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "storefront")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis (session lookup store and email send ledger).
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))

	// Initialize Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	orderRepo := postgres.NewOrderRepository(pool)
	pendingRepo := postgres.NewPendingOrderRepository(pool)
	abandonedRepo := postgres.NewAbandonedCheckoutRepository(pool)
	lookupStore := lookup.NewStore(redisClient, cfg.LookupTTL)
	emailLedger := lookup.NewEmailLedger(redisClient, cfg.LookupTTL)
	eventProducer := event.NewProducer(producer, logger)

	// Payment provider.
	var paymentProvider provider.Provider
	switch cfg.PaymentProvider {
	case "stripe":
		paymentProvider = stripe.NewProvider(cfg.StripeSecretKey)
	default:
		paymentProvider = providermock.NewProvider()
		logger.Warn("using mock payment provider, sessions will not charge anyone")
	}

	// Outbound email behind a circuit breaker.
	mailClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.Config{
			Timeout:         10 * time.Second,
			MaxRetries:      2,
			RetryWaitMin:    500 * time.Millisecond,
			RetryWaitMax:    5 * time.Second,
			MaxConnsPerHost: 20,
		}),
		httpclient.CircuitBreakerConfig{
			Name:         "resend",
			MaxRequests:  cfg.CBMaxRequests,
			Interval:     time.Duration(cfg.CBInterval) * time.Second,
			Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
			FailureRatio: cfg.CBFailureRatio,
			MinRequests:  cfg.CBMinRequests,
		},
		logger,
	)
	var mail mailer.Mailer
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResendMailer(mailClient, cfg.ResendAPIKey, cfg.ResendBaseURL)
	} else {
		mail = mailer.NewMockMailer(logger)
		logger.Warn("RESEND_API_KEY not set, emails are logged instead of sent")
	}

	// Supplier catalog client. The supplier API is not idempotent on order
	// creation, so this client never retries.
	catalogClient := catalog.NewClient(
		httpclient.New(httpclient.Config{
			Timeout:         cfg.CatalogTimeout,
			MaxRetries:      0,
			MaxConnsPerHost: 20,
		}),
		catalog.Config{
			BaseURL: cfg.CatalogBaseURL,
			APIKey:  cfg.CatalogAPIKey,
			Timeout: cfg.CatalogTimeout,
		},
		logger,
	)

	verifier := webhook.NewVerifier(cfg.StripeWebhookSecret, webhook.WithTolerance(cfg.WebhookTolerance))

	checkoutService := service.NewCheckoutService(
		paymentProvider, pendingRepo, abandonedRepo, eventProducer, cfg.Currency, logger,
	)
	orderService := service.NewOrderService(
		verifier, orderRepo, pendingRepo, lookupStore, emailLedger, mail, eventProducer,
		service.MailConfig{FromAddress: cfg.MailFrom, SalesAddress: cfg.MailSales},
		logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterDeps{
		Checkout:      checkoutService,
		Orders:        orderService,
		Catalog:       catalogClient,
		HealthHandler: healthHandler,
		SyncSecret:    cfg.SyncSecret,
		CORS:          corsCfg,
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
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

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
