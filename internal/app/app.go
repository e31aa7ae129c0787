// Package app assembles the ledger, oracle and side stores from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sniper-bowl-bot/internal/config"
	"sniper-bowl-bot/internal/oracle"
	"sniper-bowl-bot/internal/registration"
	"sniper-bowl-bot/internal/solana"
	"sniper-bowl-bot/internal/storage"
	chstore "sniper-bowl-bot/internal/storage/clickhouse"
	"sniper-bowl-bot/internal/storage/memory"
	"sniper-bowl-bot/internal/storage/migrations"
	pgstore "sniper-bowl-bot/internal/storage/postgres"
	"sniper-bowl-bot/internal/storage/sqlite"
)

// Stores holds the ledger and the optional side stores.
type Stores struct {
	Picks    storage.PickStore
	Wallets  storage.WalletStore
	Tape     storage.PriceObservationStore // nil when no tape is configured
	Sessions registration.SessionStore
}

// OpenStores connects the configured backends. The returned cleanup closes
// every connection that was opened.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	stores := &Stores{}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory ledger, picks and wallets are lost on restart")
		stores.Picks = memory.NewPickStore()
		stores.Wallets = memory.NewWalletStore()

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		closers = append(closers, func() { db.Close() })
		stores.Picks = sqlite.NewPickStore(db)
		stores.Wallets = sqlite.NewWalletStore(db)
		logger.Info("Using sqlite ledger", zap.String("path", cfg.Storage.SQLitePath))

	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.Picks = pgstore.NewPickStore(pool)
		stores.Wallets = pgstore.NewWalletStore(pool)
		logger.Info("Using postgres ledger")

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		stores.Tape = chstore.NewPriceObservationStore(conn)
		logger.Info("Price tape enabled")
	}

	if cfg.Storage.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			cleanup()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		stores.Sessions = registration.NewRedisSessionStore(client, cfg.Contest.SessionTTL)
		logger.Info("Using redis registration sessions", zap.String("addr", cfg.Storage.RedisAddr))
	} else {
		stores.Sessions = registration.NewMemorySessionStore(cfg.Contest.SessionTTL)
	}

	return stores, cleanup, nil
}

// NewGateway builds the live price and balance gateway.
func NewGateway(cfg *config.Config, logger *zap.Logger) *oracle.Service {
	prices := oracle.NewPriceClient(oracle.PriceClientConfig{
		MoralisBaseURL:   cfg.Oracle.MoralisBaseURL,
		CoinGeckoBaseURL: cfg.Oracle.CoinGeckoBaseURL,
		APIKey:           cfg.Oracle.APIKey,
		Timeout:          cfg.Oracle.Timeout,
		RatePerSecond:    cfg.Oracle.RatePerSecond,
		RateBurst:        cfg.Oracle.RateBurst,
	}, logger)

	rpc := solana.NewHTTPClient(cfg.Solana.RPCEndpoint,
		solana.WithTimeout(cfg.Solana.Timeout),
		solana.WithMaxRetries(cfg.Solana.MaxRetries),
	)

	return oracle.NewService(prices, rpc, cfg.Oracle.SymbolCacheTTL, logger)
}
