package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"cashbook/internal/backend"
	"cashbook/internal/cli"
	"cashbook/internal/ledger"
	apphttp "cashbook/internal/http"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ledgerSvc, err := backend.NewLedgerService(context.Background(), cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	seeded, err := ledgerSvc.InitializeIfEmpty(initCtx)
	initCancel()
	switch {
	case errors.Is(err, ledger.ErrMalformedRow):
		// Serve anyway; pages show an error until the file is fixed.
		logger.Warn("Ledger has malformed rows, leaving it untouched", "error", err, "backend", cfg.DataBackend)
	case err != nil:
		logger.Error("Failed to initialize ledger", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if seeded {
		logger.Info("Ledger was empty, seeded with demo data", "backend", cfg.DataBackend)
	}

	srv, err := apphttp.NewServer(cfg.Addr(), ledgerSvc, apphttp.Options{
		SecretKey: cfg.SecretKey,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", "error", err)
		os.Exit(1)
	}
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := ledgerSvc.Close(); err != nil {
			logger.Error("Failed to close ledger", "error", err)
		}
	})

	logger.Info("Starting cashbook server",
		"addr", cfg.Addr(),
		"backend", cfg.DataBackend,
		"events", cfg.EventsEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "addr", cfg.Addr())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
