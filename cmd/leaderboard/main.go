// Package main prints a chat's wallet or pick leaderboard for contest operators.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"sniper-bowl-bot/internal/app"
	"sniper-bowl-bot/internal/config"
	"sniper-bowl-bot/internal/leaderboard"
	"sniper-bowl-bot/internal/logging"
	"sniper-bowl-bot/internal/reporting"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file")
	chatID := flag.Int64("chat", 0, "Chat ID (required)")
	userID := flag.Int64("user", 0, "User ID; prints that user's picks instead of the wallet leaderboard")
	top := flag.Int("top", 0, "Number of entries to show (default from config)")
	format := flag.String("format", "table", "Output format: table, csv or markdown")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	if *chatID == 0 {
		fmt.Fprintln(os.Stderr, "Error: --chat is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	if *top > 0 {
		cfg.Contest.TopN = *top
	}

	// Keep stdout for the report.
	logger, err := logging.New("warn", "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stores, cleanup, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening stores: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	boards := leaderboard.NewBuilder(stores.Picks, stores.Wallets, app.NewGateway(cfg, logger), stores.Tape, leaderboard.Config{
		TopN:        cfg.Contest.TopN,
		Concurrency: cfg.Contest.LeaderboardConcurrency,
	}, logger)

	report, err := build(ctx, boards, *chatID, *userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := write(report, *format); err != nil {
		logger.Error("Failed to write report", zap.Error(err))
		os.Exit(1)
	}
}

func build(ctx context.Context, boards *leaderboard.Builder, chatID, userID int64) (*reporting.Report, error) {
	if userID != 0 {
		board, err := boards.Picks(ctx, chatID, userID)
		if err != nil {
			return nil, describe(err, "picks")
		}
		return reporting.FromPickBoard(board), nil
	}

	board, err := boards.Wallets(ctx, chatID, nil)
	if err != nil {
		return nil, describe(err, "registered wallets")
	}
	return reporting.FromWalletBoard(board), nil
}

func describe(err error, what string) error {
	switch {
	case errors.Is(err, leaderboard.ErrNoEntries):
		return fmt.Errorf("no %s in this chat", what)
	case errors.Is(err, leaderboard.ErrNoPricedEntries):
		return fmt.Errorf("none of the %s could be priced", what)
	case errors.Is(err, leaderboard.ErrPriceUnavailable):
		return errors.New("SOL price unavailable, try again later")
	default:
		return err
	}
}

func write(r *reporting.Report, format string) error {
	switch format {
	case "table":
		return reporting.RenderTable(os.Stdout, r)
	case "csv":
		out, err := reporting.RenderCSV(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(os.Stdout, out)
		return err
	case "markdown", "md":
		_, err := fmt.Fprint(os.Stdout, reporting.RenderMarkdown(r))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
