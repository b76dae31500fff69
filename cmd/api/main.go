package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"memorybook/internal/ai"
	"memorybook/internal/config"
	"memorybook/internal/database"
	"memorybook/internal/handlers"
	"memorybook/internal/jobs"
	"memorybook/internal/log"
	"memorybook/internal/queue"
	"memorybook/internal/repository"
	"memorybook/internal/server"
	"memorybook/internal/service"
	"memorybook/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.LogLevel)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if err := database.Migrate(ctx, dbPool, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := queue.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	gemini, err := ai.NewGeminiClient(ctx, ai.GeminiOptions{
		APIKey:          cfg.AI.APIKey,
		ClassifyModel:   cfg.AI.ClassifyModel,
		BackgroundModel: cfg.AI.BackgroundModel,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init gemini client")
	}

	photos := repository.NewPhotoRepository(dbPool)
	clusters := repository.NewClusterRepository(dbPool)
	drafts := repository.NewDraftRepository(dbPool)
	owners := repository.NewOwnerRepository(dbPool)
	producer := queue.NewProducer(redisClient, cfg.Redis.Stream)
	ttl := cfg.Storage.SignedURLTTL

	svc := handlers.Services{
		Photos:    service.NewPhotoService(photos, objectStore, cfg.Ingest, ttl, logger),
		Clusters:  service.NewClusterService(photos, clusters, owners, objectStore, gemini, gemini, cfg.AI, logger),
		Drafts:    service.NewDraftService(drafts, photos, objectStore, ttl, logger),
		Approvals: service.NewApprovalService(drafts, clusters, photos, objectStore, producer, ttl, logger),
		Settings:  service.NewSettingsService(owners),
		Owners:    owners,
	}
	checks := map[string]handlers.HealthCheck{
		"database": dbPool.Ping,
		"cache":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		"storage":  objectStore.Ping,
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, svc, checks)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	schedule := cfg.Drafts.SweepSchedule
	if cfg.Drafts.ExpireAfter <= 0 {
		schedule = ""
	}
	scheduler := jobs.NewScheduler(producer, schedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
