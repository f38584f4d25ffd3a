package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"tally/internal/amqp"
	"tally/internal/backend"
	"tally/internal/cli"
	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/sheets"
	gsheet "tally/internal/sheets/google"
	sheetsmem "tally/internal/sheets/memory"
	"tally/internal/stats"
	"tally/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	if err := run(logger); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the worker")
	}
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Worker is using the memory backend; it cannot see the server's data")
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// the worker consumes; it never publishes
	backendCfg.AMQPURL = ""

	ctx := log.WithContext(context.Background(), logger)
	be, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	}()

	exporter, err := newExporter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer consumer.Close()

	ledger := worker.NewLedgerWorker(stats.NewEngine(be.Expenses, be.Incomes), exporter)

	runCtx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)
	logger.Info("Starting tally-worker", "queue", cfg.AMQPQueue, "sheets_enabled", cfg.SheetsEnabled())

	err = consumer.Consume(log.WithContext(runCtx, logger), ledger.HandleLedgerEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume ledger events: %w", err)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker stopped gracefully")
	return nil
}

func newExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Exporter, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled, year reports will only be logged")
		return sheetsmem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Credentials{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		JSON:          cfg.GoogleServiceAccountJSON,
		File:          cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	return client, nil
}
