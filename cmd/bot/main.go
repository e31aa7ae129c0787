// Package main runs the Sniper Bowl Telegram bot:
// - chat commands and pick intake over long polling
// - optional HTTP server for health, metrics, status and leaderboards
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sniper-bowl-bot/internal/api"
	"sniper-bowl-bot/internal/app"
	"sniper-bowl-bot/internal/bot"
	"sniper-bowl-bot/internal/config"
	"sniper-bowl-bot/internal/intake"
	"sniper-bowl-bot/internal/leaderboard"
	"sniper-bowl-bot/internal/logging"
	"sniper-bowl-bot/internal/registration"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file")
	storageDriver := flag.String("storage", "", "Ledger backend: memory, sqlite or postgres (overrides config)")
	httpAddr := flag.String("http-addr", "", "Status API address, empty keeps config value (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *storageDriver != "" {
		cfg.Storage.Driver = *storageDriver
	}
	if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := errors.Join(cfg.Validate(), cfg.RequireTelegram()); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}
	logger.Info("Shutdown complete")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer cleanup()

	gateway := app.NewGateway(cfg, logger)

	boards := leaderboard.NewBuilder(stores.Picks, stores.Wallets, gateway, stores.Tape, leaderboard.Config{
		TopN:        cfg.Contest.TopN,
		Concurrency: cfg.Contest.LeaderboardConcurrency,
	}, logger)
	reg := registration.NewWorkflow(stores.Wallets, gateway, stores.Sessions, logger)
	in := intake.New(stores.Picks, gateway, cfg.Contest.FixedStakeNative, logger)

	telegram, err := bot.NewTelegram(cfg.Telegram.Token, cfg.Telegram.Debug, cfg.Telegram.PollTimeout, logger)
	if err != nil {
		return err
	}
	if err := telegram.RegisterCommands(); err != nil {
		logger.Warn("Failed to register bot commands", zap.Error(err))
	}

	handler := bot.NewHandler(boards, reg, in, stores.Picks, gateway, telegram, logger)
	status := api.NewStatus(cfg.Storage.Driver, stores.Tape != nil)
	handler.OnDispatch(status.MessageHandled)

	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		srv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           api.NewRouter(boards, status, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", zap.Error(err))
			}
		}()
	}

	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Warn("Received second signal, forcing immediate shutdown", zap.String("signal", sig.String()))
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Error("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	logger.Info("Bot started",
		zap.String("storage", cfg.Storage.Driver),
		zap.Float64("stake", cfg.Contest.FixedStakeNative),
		zap.Int("topN", cfg.Contest.TopN))

	err = telegram.Run(ctx, handler)
	close(done)

	if srv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server forced to shutdown", zap.Error(err))
		}
	}
	return err
}
