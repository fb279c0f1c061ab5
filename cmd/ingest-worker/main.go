package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/profitlens/profitlens-backend/internal/ingest"
	"github.com/profitlens/profitlens-backend/internal/transactions"
	"github.com/profitlens/profitlens-backend/pkg/config"
	"github.com/profitlens/profitlens-backend/pkg/db"
	"github.com/profitlens/profitlens-backend/pkg/instance"
	"github.com/profitlens/profitlens-backend/pkg/logger"
	"github.com/profitlens/profitlens-backend/pkg/migrate"
	"github.com/profitlens/profitlens-backend/pkg/pubsub"
	"github.com/profitlens/profitlens-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "ingest-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "ingest-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	repo := transactions.NewRepository(dbClient.DB())
	writer, err := transactions.NewWriter(repo, logg, transactions.WriterConfig{})
	if err != nil {
		logg.Error(ctx, "failed to create transaction writer", err)
		os.Exit(1)
	}

	router, err := ingest.NewRouter(writer, logg, nil)
	if err != nil {
		logg.Error(ctx, "failed to create ingest router", err)
		os.Exit(1)
	}

	manager := ingest.NewIdempotencyManager(redisClient, cfg.Cache.IdempotencyTTL)

	worker, err := ingest.NewWorker(pubsubClient.ReportsSubscription(), router, manager, logg)
	if err != nil {
		logg.Error(ctx, "failed to create ingest worker", err)
		os.Exit(1)
	}

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"subscription": cfg.PubSub.ReportsSubscription,
		"instance":     instance.GetID(),
	})
	logg.Info(runCtx, "starting ingest worker")

	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		logg.Error(runCtx, "ingest worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "ingest worker shut down")
}
