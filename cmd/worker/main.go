package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"memorybook/internal/config"
	"memorybook/internal/database"
	"memorybook/internal/log"
	"memorybook/internal/queue"
	"memorybook/internal/repository"
	"memorybook/internal/service"
	"memorybook/internal/storage"
	"memorybook/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Worker.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := queue.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	pgCfg := cfg.Postgres
	pgCfg.ApplicationName += "-worker"
	dbPool, err := database.NewPostgresPool(ctx, pgCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	drafts := service.NewDraftService(
		repository.NewDraftRepository(dbPool),
		repository.NewPhotoRepository(dbPool),
		objectStore,
		cfg.Storage.SignedURLTTL,
		logger,
	)

	processor := tasks.NewProcessor(objectStore, drafts, cfg.Drafts.ExpireAfter, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Worker.ClaimInterval,
		cfg.Worker.MaxAttempts,
		logger,
		processor,
	)

	logger.Info().Str("stream", cfg.Redis.Stream).Str("consumer", cfg.Redis.Consumer).Msg("worker started")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
	}
	logger.Info().Msg("worker exited cleanly")
}
