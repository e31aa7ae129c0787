package leaderboard

import (
	"context"

	"go.uber.org/zap"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/observability"
)

// recordPicks appends the prices behind a pick render to the price tape.
func (b *Builder) recordPicks(ctx context.Context, board *PickBoard) {
	if b.tape == nil {
		return
	}
	obs := make([]*domain.PriceObservation, 0, len(board.Entries)+1)
	obs = append(obs, nativeObservation(board.ChatID, KindPicks, board.RenderedAt, board.NativeUSD))
	for _, e := range board.Entries {
		obs = append(obs, &domain.PriceObservation{
			ObservedAt:  board.RenderedAt,
			ChatID:      board.ChatID,
			Board:       KindPicks,
			Kind:        domain.ObservationToken,
			Mint:        e.Pick.MintAddress,
			PriceNative: e.CurrentPriceUSD / board.NativeUSD,
			NativeUSD:   board.NativeUSD,
		})
	}
	b.record(ctx, obs)
}

// recordWallets appends the SOL/USD price behind a wallet render to the price tape.
func (b *Builder) recordWallets(ctx context.Context, board *WalletBoard) {
	if b.tape == nil {
		return
	}
	b.record(ctx, []*domain.PriceObservation{
		nativeObservation(board.ChatID, KindWallets, board.RenderedAt, board.NativeUSD),
	})
}

func nativeObservation(chatID int64, kind string, at int64, nativeUSD float64) *domain.PriceObservation {
	return &domain.PriceObservation{
		ObservedAt: at,
		ChatID:     chatID,
		Board:      kind,
		Kind:       domain.ObservationNative,
		NativeUSD:  nativeUSD,
	}
}

// record never fails the render.
func (b *Builder) record(ctx context.Context, obs []*domain.PriceObservation) {
	if err := b.tape.InsertBulk(ctx, obs); err != nil {
		observability.RecordPriceTapeError()
		b.logger.Warn("Failed to record price tape", zap.Int("observations", len(obs)), zap.Error(err))
	}
}
