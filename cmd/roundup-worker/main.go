package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"roundup/internal/amqp"
	"roundup/internal/cli"
	"roundup/internal/ledger"
	gledger "roundup/internal/ledger/google"
	"roundup/internal/ledger/memory"
	"roundup/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("worker")

	logger.Info("Starting roundup-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	var writer ledger.TransferWriter
	switch cfg.LedgerBackend {
	case "sheets":
		sheetsClient, err := gledger.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets ledger", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets ledger initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		writer = sheetsClient
	default:
		logger.Info("Using in-memory ledger - transfers are not persisted across restarts")
		writer = memory.New()
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(sqliteRepo, writer)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	go func() {
		handler := func(msg *amqp.TransferSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeTransferSync(ctx, handler); err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	logger.Info("Worker running", "queue", cfg.AMQPQueue, "ledger", cfg.LedgerBackend)
	cli.WaitForShutdown(ctx, done)
	slog.Info("Worker stopped")
}
