// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/support-gateway/internal/admin"
	"github.com/carterperez-dev/support-gateway/internal/auth"
	"github.com/carterperez-dev/support-gateway/internal/completion"
	"github.com/carterperez-dev/support-gateway/internal/config"
	"github.com/carterperez-dev/support-gateway/internal/core"
	"github.com/carterperez-dev/support-gateway/internal/gateway"
	"github.com/carterperez-dev/support-gateway/internal/health"
	"github.com/carterperez-dev/support-gateway/internal/knowledge"
	"github.com/carterperez-dev/support-gateway/internal/middleware"
	"github.com/carterperez-dev/support-gateway/internal/quota"
	"github.com/carterperez-dev/support-gateway/internal/server"
	"github.com/carterperez-dev/support-gateway/internal/tenant"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	logger.Info("telemetry initialized",
		"tracing", cfg.Otel.Enabled,
		"endpoint", cfg.Otel.Endpoint,
	)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token manager initialized",
		"algorithm", "HS256",
		"lifetime", auth.SessionLifetime,
	)

	period, err := quota.ParsePeriod(cfg.Quota.Period)
	if err != nil {
		return err
	}

	tenantSvc := tenant.NewService(tenant.NewRepository(db.DB))
	tenantHandler := tenant.NewHandler(tenantSvc)

	authSvc := auth.NewService(db.DB, tokens)
	authHandler := auth.NewHandler(authSvc)

	knowledgeSvc := knowledge.NewService(
		knowledge.NewRepository(db.DB),
		knowledge.NewCache(redis.Client, cfg.Knowledge.CacheTTL),
	)
	knowledgeHandler := knowledge.NewHandler(knowledgeSvc, tenantSvc)

	ledger := quota.NewLedger(quota.NewRepository(db.DB), period)
	quotaHandler := quota.NewHandler(ledger, tenantSvc)

	pipeline, err := gateway.NewPipeline(
		tokens,
		tenantSvc,
		ledger,
		knowledgeSvc,
		completion.NewClient(cfg.Completion),
		gateway.WithMeterProvider(telemetry.MeterProvider),
		gateway.WithTracerProvider(telemetry.TracerProvider),
	)
	if err != nil {
		return fmt.Errorf("build chat pipeline: %w", err)
	}
	gatewayHandler := gateway.NewHandler(pipeline)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Repository: admin.NewRepository(db.DB),
		PeriodKey:  ledger.CurrentPeriodKey,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		ChatOutcomes: func(ctx context.Context) (map[string]int64, error) {
			return telemetry.CounterTotals(ctx, "gateway.chat.outcomes", "outcome")
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(cfg.Otel.ServiceName))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(tokens)
	adminOnly := middleware.RequireAdminKey(cfg.Admin.APIKey)
	loginThrottle := middleware.LoginThrottle(
		redis.Client,
		cfg.LoginThrottle.Requests,
		cfg.LoginThrottle.Burst,
	)

	if cfg.Admin.APIKey == "" {
		logger.Warn("admin api key not configured, admin routes are disabled")
	}

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, loginThrottle)
		knowledgeHandler.RegisterRoutes(r, authenticator)
		quotaHandler.RegisterRoutes(r, authenticator)
		gatewayHandler.RegisterRoutes(r)

		tenantHandler.RegisterAdminRoutes(r, adminOnly)
		adminHandler.RegisterRoutes(r, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
