package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"tally/internal/auth"
	"tally/internal/backend"
	"tally/internal/cli"
	apphttp "tally/internal/http"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/stats"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	if err := run(logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	ctx := log.WithContext(context.Background(), logger)
	be, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}

	reporter := stats.NewCached(stats.NewEngine(be.Expenses, be.Incomes), be.Stats)
	tokens := auth.NewTokens(cfg.AuthSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Expenses:           services.NewExpenseService(be.Expenses, be.Events, reporter),
		Incomes:            services.NewIncomeService(be.Incomes, be.Events, reporter),
		Reports:            services.NewReportService(reporter),
		Auth:               auth.Middleware(tokens),
		Ready:              be.Ping,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting tally server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_ = be.Cleanup()
		return err
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
	return nil
}
