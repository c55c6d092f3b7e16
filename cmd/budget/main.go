package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"budget/internal/auth"
	"budget/internal/cli"
	apphttp "budget/internal/http"
	"budget/internal/ledger"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), nil)

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	logger = cli.SetupLogger(cfg.LogLevel, nil)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	store, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}

	publisher, closePublisher, err := cli.NewPublisher(ctx, logger, cfg)
	if err != nil {
		store.Close()
		cli.Fatal(logger, "Failed to initialize AMQP publisher", err)
	}

	ledgerSvc := ledger.NewService(store.Ledger, publisher)
	authSvc := auth.NewService(store.Users, auth.Options{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.JWTExpiresIn,
		BcryptCost: cfg.BcryptCost,
	})

	srv := apphttp.NewServer(":"+cfg.Port, ledgerSvc, authSvc, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Ready:              store.Ready,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budget server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		cli.Shutdown(logger, cfg.ShutdownTimeout,
			srv.Shutdown,
			func(context.Context) error { return closePublisher() },
			func(context.Context) error { return store.Close() },
		)
		return nil
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully")
}
