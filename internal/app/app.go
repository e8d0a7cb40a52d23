package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mobydigital/login-service/internal/config"
	"github.com/mobydigital/login-service/internal/directory"
	"github.com/mobydigital/login-service/internal/event"
	handler "github.com/mobydigital/login-service/internal/handler/http"
	"github.com/mobydigital/login-service/internal/provider"
	redisrepo "github.com/mobydigital/login-service/internal/repository/redis"
	"github.com/mobydigital/login-service/internal/roster"
	"github.com/mobydigital/login-service/internal/service"
	"github.com/mobydigital/login-service/pkg/health"
	"github.com/mobydigital/login-service/pkg/httpclient"
	pkgkafka "github.com/mobydigital/login-service/pkg/kafka"
	"github.com/mobydigital/login-service/pkg/tracing"
)

// App wires together all dependencies and runs the login service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Tracing.
	tracerShutdown, err := tracing.InitTracer(context.Background(), tracing.Config{
		ServiceName:    "login-service",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Redis session store.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Google OAuth/OIDC client. Discovery is one outbound call at startup.
	providerClient, err := provider.New(ctx, provider.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURI:  cfg.GoogleRedirectURI,
		Issuer:       cfg.GoogleIssuer,
		Timeout:      cfg.ProviderTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init OAuth provider: %w", err)
	}

	// Upstream intranet clients behind a shared retrying client and a
	// circuit breaker per upstream.
	baseClient := httpclient.New(httpclient.Config{
		Timeout:         cfg.UpstreamTimeout,
		MaxRetries:      cfg.HTTPMaxRetries,
		RetryWaitMin:    250 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 50,
	})
	directoryClient := directory.New(
		httpclient.NewCircuitBreakerClient(baseClient, httpclient.DefaultCircuitBreakerConfig("directory"), logger),
		cfg.DirectoryBaseURL, cfg.DirectoryTimeout, logger,
	)
	rosterClient := roster.New(
		httpclient.NewCircuitBreakerClient(baseClient, httpclient.DefaultCircuitBreakerConfig("roster"), logger),
		cfg.RosterCheckURL, cfg.RosterTimeout, logger,
	)

	// Build the dependency graph.
	sessionRepo := redisrepo.NewSessionRepository(rdb, cfg.SessionTTL)
	eventProducer := event.NewProducer(producer, logger)
	loginService := service.NewLoginService(
		providerClient, providerClient,
		directoryClient, rosterClient,
		sessionRepo, eventProducer,
		logger, cfg.AllowedEmailDomain,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(loginService, healthHandler, logger, cfg.LoginRedirectBase, handler.CookieConfig{
		Secure:   cfg.CookieSecure,
		SameSite: cfg.SameSite(),
		TTL:      cfg.SessionTTL,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
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

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
