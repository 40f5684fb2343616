package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/quillbooks/quillbooks/internal/app"
	"github.com/quillbooks/quillbooks/internal/billing/invoices"
	"github.com/quillbooks/quillbooks/internal/billing/quotes"
	"github.com/quillbooks/quillbooks/internal/billing/sequence"
	"github.com/quillbooks/quillbooks/internal/customers"
	jobmetrics "github.com/quillbooks/quillbooks/internal/jobs"
	"github.com/quillbooks/quillbooks/internal/platform/cache"
	"github.com/quillbooks/quillbooks/internal/platform/db"
	"github.com/quillbooks/quillbooks/internal/shared"
	"github.com/quillbooks/quillbooks/internal/users"
	"github.com/quillbooks/quillbooks/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	customerRepo := customers.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	quoteRepo := quotes.NewRepository(pool)
	invoiceRepo := invoices.NewRepository(pool)

	sequences := sequence.NewGenerator(sequence.NewPGStore(pool))
	locker := shared.NewLocker(redisClient, cfg.SeedLockTTL)
	invoiceService := invoices.NewService(invoiceRepo, quoteRepo, customerRepo, userRepo, sequences, locker)

	metrics := jobmetrics.NewMetrics(nil)
	idempotency := shared.NewIdempotencyStore(pool)
	sweepJob := jobs.NewGenerateDueJob(invoiceService, idempotency, logger, metrics)
	seedJob := jobs.NewGenerateSeedJob(invoiceService, logger, metrics)

	sweepTask, err := jobs.NewGenerateDueTask()
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBillingGenerateDue, Handler: sweepJob.Handle},
			{Type: jobs.TaskBillingGenerateSeed, Handler: seedJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.GenerateCron, Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
