// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmiplatform/rewards-backend/internal/account"
	"github.com/dmiplatform/rewards-backend/internal/admin"
	"github.com/dmiplatform/rewards-backend/internal/auth"
	"github.com/dmiplatform/rewards-backend/internal/boost"
	"github.com/dmiplatform/rewards-backend/internal/catalog"
	"github.com/dmiplatform/rewards-backend/internal/claim"
	"github.com/dmiplatform/rewards-backend/internal/commission"
	"github.com/dmiplatform/rewards-backend/internal/config"
	"github.com/dmiplatform/rewards-backend/internal/core"
	"github.com/dmiplatform/rewards-backend/internal/health"
	"github.com/dmiplatform/rewards-backend/internal/middleware"
	"github.com/dmiplatform/rewards-backend/internal/plan"
	"github.com/dmiplatform/rewards-backend/internal/referral"
	"github.com/dmiplatform/rewards-backend/internal/server"
)

const (
	drainDelay            = 5 * time.Second
	fanoutBacklogDegraded = 1000
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

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		return err
	}
	logger.Info("token verifier initialized",
		"algorithm", "ES256",
		"issuer", cfg.Auth.Issuer,
	)

	rates, err := commission.NewRateTable(cfg.Rewards)
	if err != nil {
		return err
	}

	planCatalog := catalog.New(cfg.Catalog.Plans, func(ctx context.Context) ([]config.PlanEntry, error) {
		fresh, loadErr := config.LoadCatalog(configPath)
		if loadErr != nil {
			return nil, loadErr
		}
		return fresh.Plans, nil
	})
	logger.Info("plan catalog loaded",
		"plans", len(cfg.Catalog.Plans),
		"version", planCatalog.Version(),
	)

	accountRepo := account.NewRepository(db.DB)
	accountSvc := account.NewService(accountRepo)
	accountHandler := account.NewHandler(accountSvc)

	commissionRepo := commission.NewRepository(db.DB)
	engine := commission.NewEngine(accountRepo, commissionRepo, rates, logger)
	worker := commission.NewWorker(engine, commissionRepo, cfg.Rewards.Fanout, logger)
	commissionHandler := commission.NewHandler(commissionRepo)

	planRepo := plan.NewRepository(db.DB)
	planSvc := plan.NewService(planRepo, planCatalog, engine, cfg.Rewards, logger)
	planHandler := plan.NewHandler(planSvc)

	claimRepo := claim.NewRepository(db.DB)
	claimSvc := claim.NewService(claimRepo, engine, cfg.Rewards, logger)
	claimHandler := claim.NewHandler(claimSvc)

	referralRepo := referral.NewRepository(db.DB)
	referralSvc := referral.NewService(referralRepo, accountSvc, engine, cfg.Rewards, logger)
	referralHandler := referral.NewHandler(referralSvc)

	boostSvc := boost.NewService(planRepo)
	boostHandler := boost.NewHandler(boostSvc)

	healthHandler := health.NewHandler(db, redis, commissionRepo, fanoutBacklogDegraded)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Catalog:    planCatalog,
		Fanout:     commissionRepo,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authenticator := middleware.Authenticator(verifier)
	ensure := account.EnsureAccount(accountSvc)

	// Every rewards route needs both a verified token and a provisioned
	// account row, in that order.
	authed := func(next http.Handler) http.Handler {
		return authenticator(ensure(next))
	}

	claimLimiter := middleware.ClaimRateLimiter(redis.Client)

	router.Route("/v1", func(r chi.Router) {
		accountHandler.RegisterRoutes(r, authed)
		planHandler.RegisterRoutes(r, authed)
		claimHandler.RegisterRoutes(r, authed, claimLimiter)
		referralHandler.RegisterRoutes(r, authed)
		commissionHandler.RegisterRoutes(r, authed)
		boostHandler.RegisterRoutes(r, authed)
		adminHandler.RegisterRoutes(r, authenticator, middleware.RequireAdmin)
	})

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go worker.Run(workerCtx)

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

	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
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
