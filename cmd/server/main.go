package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajbhoyar729/LokDarpan/internal/auth"
	"github.com/rajbhoyar729/LokDarpan/internal/config"
	"github.com/rajbhoyar729/LokDarpan/internal/db"
	"github.com/rajbhoyar729/LokDarpan/internal/handler"
	"github.com/rajbhoyar729/LokDarpan/internal/middleware"
	"github.com/rajbhoyar729/LokDarpan/internal/repository"
	"github.com/rajbhoyar729/LokDarpan/internal/router"
	"github.com/rajbhoyar729/LokDarpan/internal/service"
	"github.com/rajbhoyar729/LokDarpan/internal/storage"
)

// maxBodySize leaves room for a 500MB video plus its thumbnail and fields.
const maxBodySize = 520 * 1024 * 1024

func main() {
	cfg, err := config.Load()
	if err != nil {
		middleware.NewLogger("info", "lokdarpan").Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := middleware.NewLogger(cfg.LogLevel, "lokdarpan")
	if cfg.JWTSecretGenerated {
		logger.Warn().Msg("JWT_SECRET is not set, using a random per-process secret; tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	if err := os.MkdirAll(cfg.UploadTmpDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.UploadTmpDir).Msg("failed to create upload directory")
	}

	backend, err := storage.NewBackend(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to configure object storage")
	}
	assets := storage.NewGateway(backend, logger)

	metrics := handler.NewMetrics(pool)
	cache := service.NewCacheService(cfg.RedisURL, logger)
	cache.SetObserver(metrics.ObserveCache)
	defer cache.Close()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// Repositories
	userRepo := repository.NewUserRepo(pool)
	channelRepo := repository.NewChannelRepo(pool)
	videoRepo := repository.NewVideoRepo(pool)
	commentRepo := repository.NewCommentRepo(pool)

	// Services
	authSvc := service.NewAuthService(userRepo, assets, tokens, logger)
	userSvc := service.NewUserService(userRepo, channelRepo, cache, logger)
	channelSvc := service.NewChannelService(channelRepo, videoRepo, assets, cache, logger)
	videoSvc := service.NewVideoService(videoRepo, assets, cache, logger)
	commentSvc := service.NewCommentService(commentRepo, videoRepo, cache, logger)

	// Background workers
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	reconciler := service.NewReconcileWorker(
		service.NewReconcileStore(videoRepo, channelRepo),
		assets, cache, cfg.ReconcileInterval, cfg.StaleUploadAfter, logger,
	)
	invalidator := service.NewInvalidationWorker(pool, cache, logger)

	workers.Add(2)
	go func() {
		defer workers.Done()
		reconciler.Start(workerCtx)
	}()
	go func() {
		defer workers.Done()
		invalidator.Start(workerCtx)
	}()

	app := fiber.New(fiber.Config{
		AppName:      "LokDarpan API",
		ServerHeader: "LokDarpan",
		BodyLimit:    maxBodySize,
		ErrorHandler: handler.ErrorHandler(logger),
	})

	router.Setup(app, &router.Handlers{
		Auth:    handler.NewAuthHandler(authSvc, cfg.UploadTmpDir),
		User:    handler.NewUserHandler(userSvc),
		Channel: handler.NewChannelHandler(channelSvc, cfg.UploadTmpDir),
		Video:   handler.NewVideoHandler(videoSvc, metrics, cfg.UploadTmpDir),
		Comment: handler.NewCommentHandler(commentSvc),
		Stats:   handler.NewStatsHandler(userSvc),
		Health:  handler.NewHealthHandler(pool, handler.RedisPinger(cache.Client())),
		Metrics: metrics,
	}, router.Options{
		APIPrefix:   cfg.APIPrefix,
		CORSOrigins: cfg.CORSOrigins,
		Tokens:      tokens,
		Logger:      logger,
	})

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Environment).
			Str("prefix", cfg.APIPrefix).
			Str("storage", cfg.Storage.Driver).
			Msg("LokDarpan backend starting")
		if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	cancelWorkers()
	reconciler.Stop()
	workers.Wait()
	logger.Info().Msg("shutdown complete")
}
