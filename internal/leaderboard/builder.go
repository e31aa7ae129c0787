// Package leaderboard ranks a chat's picks and wallets by live PnL.
//
// A render loads the ledger scope, fetches the SOL/USD price once, values every
// entry against that single price and sorts by PnL descending. Entries with equal
// PnL keep their ledger order. Renders are never persisted.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/observability"
	"sniper-bowl-bot/internal/oracle"
	"sniper-bowl-bot/internal/storage"
	"sniper-bowl-bot/internal/valuation"
)

// Board kinds.
const (
	KindPicks   = "picks"
	KindWallets = "wallets"
)

// Defaults.
const (
	DefaultTopN        = 10
	DefaultConcurrency = 4
)

var (
	// ErrPriceUnavailable is returned when the SOL/USD price cannot be fetched.
	ErrPriceUnavailable = errors.New("native price unavailable")

	// ErrNoEntries is returned when the ledger scope is empty.
	ErrNoEntries = errors.New("no entries")

	// ErrNoPricedEntries is returned when every pick in scope failed valuation.
	ErrNoPricedEntries = errors.New("no priced entries")
)

// Config tunes a Builder.
type Config struct {
	TopN        int
	Concurrency int
}

// PickBoard is one render of a user's picks in a chat.
type PickBoard struct {
	ChatID     int64
	UserID     int64
	NativeUSD  float64
	RenderedAt int64
	Entries    []domain.PickValuation
	Total      int // picks in scope
	Skipped    int // picks without a price
}

// WalletBoard is one render of a chat's registered wallets.
type WalletBoard struct {
	ChatID     int64
	NativeUSD  float64
	RenderedAt int64
	Entries    []domain.WalletValuation
	Total      int
}

// Builder renders leaderboards.
type Builder struct {
	picks   storage.PickStore
	wallets storage.WalletStore
	gateway oracle.Gateway
	engine  *valuation.Engine
	tape    storage.PriceObservationStore
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewBuilder creates a new Builder. tape may be nil.
func NewBuilder(
	picks storage.PickStore,
	wallets storage.WalletStore,
	gateway oracle.Gateway,
	tape storage.PriceObservationStore,
	cfg Config,
	logger *zap.Logger,
) *Builder {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Builder{
		picks:   picks,
		wallets: wallets,
		gateway: gateway,
		engine:  valuation.NewEngine(gateway),
		tape:    tape,
		cfg:     cfg,
		logger:  logger.Named("Leaderboard"),
		now:     time.Now,
	}
}

// Picks renders the pick leaderboard of userID in chatID.
func (b *Builder) Picks(ctx context.Context, chatID, userID int64) (*PickBoard, error) {
	start := time.Now()
	board, err := b.picksBoard(ctx, chatID, userID)
	observability.RecordLeaderboardBuild(KindPicks, outcome(err), time.Since(start).Seconds())
	return board, err
}

func (b *Builder) picksBoard(ctx context.Context, chatID, userID int64) (*PickBoard, error) {
	picks, err := b.picks.GetByChatUser(ctx, chatID, userID)
	if err != nil {
		observability.RecordStoreError("load_picks")
		return nil, fmt.Errorf("load picks: %w", err)
	}
	if len(picks) == 0 {
		return nil, ErrNoEntries
	}

	nativeUSD := b.gateway.NativePriceUSD(ctx)
	if nativeUSD <= 0 {
		return nil, ErrPriceUnavailable
	}

	slots := make([]*domain.PickValuation, len(picks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)
	for i, p := range picks {
		g.Go(func() error {
			if v, ok := b.engine.ValuePick(gctx, p, nativeUSD); ok {
				slots[i] = &v
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("value picks: %w", err)
	}

	entries := make([]domain.PickValuation, 0, len(slots))
	for _, v := range slots {
		if v != nil {
			entries = append(entries, *v)
		}
	}
	skipped := len(picks) - len(entries)
	if skipped > 0 {
		observability.RecordLeaderboardSkipped(KindPicks, skipped)
		b.logger.Debug("Picks skipped for missing price",
			zap.Int64("chatID", chatID), zap.Int64("userID", userID), zap.Int("skipped", skipped))
	}
	if len(entries) == 0 {
		return nil, ErrNoPricedEntries
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PnLUSD > entries[j].PnLUSD
	})
	if len(entries) > b.cfg.TopN {
		entries = entries[:b.cfg.TopN]
	}

	for i := range entries {
		entries[i].Symbol = b.gateway.TokenSymbol(ctx, entries[i].Pick.MintAddress)
	}

	board := &PickBoard{
		ChatID:     chatID,
		UserID:     userID,
		NativeUSD:  nativeUSD,
		RenderedAt: b.now().UnixMilli(),
		Entries:    entries,
		Total:      len(picks),
		Skipped:    skipped,
	}
	b.recordPicks(ctx, board)
	return board, nil
}

// Wallets renders the wallet leaderboard of chatID. onStart, if not nil, is
// called once the chat is known to have registrations and before any wallet is
// valued, so the caller can acknowledge a potentially slow render.
func (b *Builder) Wallets(ctx context.Context, chatID int64, onStart func()) (*WalletBoard, error) {
	start := time.Now()
	board, err := b.walletsBoard(ctx, chatID, onStart)
	observability.RecordLeaderboardBuild(KindWallets, outcome(err), time.Since(start).Seconds())
	return board, err
}

func (b *Builder) walletsBoard(ctx context.Context, chatID int64, onStart func()) (*WalletBoard, error) {
	wallets, err := b.wallets.GetByChat(ctx, chatID)
	if err != nil {
		observability.RecordStoreError("load_wallets")
		return nil, fmt.Errorf("load wallets: %w", err)
	}
	if len(wallets) == 0 {
		return nil, ErrNoEntries
	}

	nativeUSD := b.gateway.NativePriceUSD(ctx)
	if nativeUSD <= 0 {
		return nil, ErrPriceUnavailable
	}

	if onStart != nil {
		onStart()
	}

	entries := make([]domain.WalletValuation, len(wallets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)
	for i, w := range wallets {
		g.Go(func() error {
			entries[i] = b.engine.ValueWallet(gctx, w, nativeUSD)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("value wallets: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PnLUSD > entries[j].PnLUSD
	})
	if len(entries) > b.cfg.TopN {
		entries = entries[:b.cfg.TopN]
	}

	board := &WalletBoard{
		ChatID:     chatID,
		NativeUSD:  nativeUSD,
		RenderedAt: b.now().UnixMilli(),
		Entries:    entries,
		Total:      len(wallets),
	}
	b.recordWallets(ctx, board)
	return board, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, ErrNoEntries), errors.Is(err, ErrNoPricedEntries), errors.Is(err, ErrPriceUnavailable):
		return observability.OutcomeDegraded
	default:
		return observability.OutcomeError
	}
}
