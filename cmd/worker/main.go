package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ecologic-brindes/ecologic-backend/internal/app"
	"github.com/ecologic-brindes/ecologic-backend/internal/platform/db"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/clients"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/proposals"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/quotes"
	"github.com/ecologic-brindes/ecologic-backend/jobs"
	"github.com/ecologic-brindes/ecologic-backend/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	renderer := &jobs.ProposalRenderer{
		Logger:    logger,
		Quotes:    quotes.NewRepository(pool),
		Clients:   clients.NewRepository(pool),
		Proposals: proposals.NewRepository(pool),
		Renderer:  report.NewClient(cfg.GotenbergURL),
		OutputDir: cfg.ProposalDir,
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeProposalRender, Handler: renderer.Handle},
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
