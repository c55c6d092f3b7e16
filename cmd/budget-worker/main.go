package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/config"
	applog "budget/internal/log"
	"budget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), nil)

	cfg, err := cli.LoadWorkerConfig()
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	logger = cli.SetupLogger(cfg.LogLevel, nil).WithComponent(applog.ComponentWorker)
	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "Worker cannot start", errors.New("AMQP_URL is required"))
	}

	ctx, stop := cli.SignalContext(context.Background())
	err = run(ctx, logger, cfg)
	stop()
	if err != nil {
		cli.Fatal(logger, "Worker stopped", err)
	}
}

// run returns only after the broker connection is closed, so a fatal exit
// in main never skips cleanup.
func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	mirror, err := cli.NewMirror(ctx, logger, cfg)
	if err != nil {
		return fmt.Errorf("initialize mirror: %w", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP connection", "error", err)
		}
	}()

	syncWorker := worker.NewSyncWorker(mirror, logger)

	logger.Info("Starting budget-worker", "queue", cfg.AMQPQueue, "sheets_enabled", cfg.SheetsEnabled())
	err = client.ConsumeLedgerEvents(ctx, syncWorker.HandleLedgerEvent)

	stats := syncWorker.Stats()
	logger.Info("Worker shutdown complete",
		"processed", stats.Processed,
		"duplicates", stats.Duplicates,
		"failed", stats.Failed)

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume ledger events: %w", err)
	}
	return nil
}
