// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/manufacto/booking/internal/account"
	"github.com/manufacto/booking/internal/activity"
	"github.com/manufacto/booking/internal/admin"
	"github.com/manufacto/booking/internal/auth"
	"github.com/manufacto/booking/internal/catalog"
	"github.com/manufacto/booking/internal/config"
	"github.com/manufacto/booking/internal/core"
	"github.com/manufacto/booking/internal/credit"
	"github.com/manufacto/booking/internal/health"
	"github.com/manufacto/booking/internal/jobs"
	"github.com/manufacto/booking/internal/middleware"
	"github.com/manufacto/booking/internal/registration"
	"github.com/manufacto/booking/internal/server"
	"github.com/manufacto/booking/internal/session"
	"github.com/manufacto/booking/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

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

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		configPath = ""
	}

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

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB, logger); err != nil {
			return err
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	viewCache := core.NewViewCache(redis.Client, cfg.Cache)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized", "algorithm", "ES256")

	userSvc := user.NewService(user.NewRepository(db.DB), cfg.JWT.InviteTokenExpire)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(auth.NewRepository(db.DB), jwtManager, userSvc, redis.Client)
	authHandler := auth.NewHandler(authSvc)

	activitySvc := activity.NewService(activity.NewRepository(db.DB), viewCache)
	activityHandler := activity.NewHandler(activitySvc)

	sessionSvc := session.NewService(
		session.NewRepository(db.DB),
		activitySvc,
		viewCache,
		cfg.Booking,
	)
	sessionHandler := session.NewHandler(sessionSvc)

	creditSvc := credit.NewService(credit.NewRepository(db.DB), userSvc, viewCache)
	creditHandler := credit.NewHandler(creditSvc)

	registrationSvc := registration.NewService(
		registration.NewRepository(db.DB),
		viewCache,
		cfg.Booking,
	)
	registrationHandler := registration.NewHandler(registrationSvc)

	catalogHandler := catalog.NewHandler(catalog.NewService(
		activitySvc,
		sessionSvc,
		registrationSvc,
		userSvc,
		viewCache,
		cfg.Booking.Location(),
		logger,
	))

	accountHandler := account.NewHandler(account.NewService(
		userSvc,
		registrationSvc,
		sessionSvc,
		activitySvc,
		creditSvc,
		viewCache,
	))

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Service:    admin.NewService(admin.NewRepository(db.DB), userSvc, creditSvc),
		AuthSvc:    authSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	scheduler := jobs.NewScheduler(authSvc, logger)
	if cfg.Jobs.Enabled {
		if err := scheduler.Register(cfg.Jobs); err != nil {
			return err
		}
		scheduler.Start()
	}

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
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	bookingLimiter := middleware.BookingLimiter(
		redis.Client,
		middleware.PerMinute(cfg.RateLimit.BookingRequests, cfg.RateLimit.BookingBurst),
	)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)

		activityHandler.RegisterRoutes(r)
		catalogHandler.RegisterRoutes(r)
		registrationHandler.RegisterRoutes(r, authenticator, bookingLimiter)
		accountHandler.RegisterRoutes(r, authenticator)

		mountAdmin(r, authenticator,
			adminHandler,
			userHandler,
			creditHandler,
			accountHandler,
			activityHandler,
			sessionHandler,
			registrationHandler,
			catalogHandler,
		)
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

	scheduler.Stop(shutdownCtx)

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
