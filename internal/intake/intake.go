// Package intake records picks shilled into a chat.
package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/observability"
	"sniper-bowl-bot/internal/oracle"
	"sniper-bowl-bot/internal/solana"
	"sniper-bowl-bot/internal/storage"
	"sniper-bowl-bot/internal/valuation"
)

// DefaultFixedStakeNative is the notional SOL stake behind every pick.
const DefaultFixedStakeNative = 0.5

// Outcome is the result of handling one chat message.
type Outcome string

const (
	Ignored          Outcome = "ignored"
	AlreadyShilled   Outcome = "already_shilled"
	PriceUnavailable Outcome = "price_unavailable"
	TokenUnpriced    Outcome = "token_unpriced"
	Added            Outcome = "added"
	Failed           Outcome = "failed"
)

// Request is an inbound chat message.
type Request struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

// Result describes how a message was handled.
type Result struct {
	Outcome Outcome
	Mint    string
	Pick    *domain.Pick // set when Added
	Stake   float64      // SOL stake behind the pick
}

// Intake turns mint addresses posted in a chat into picks.
type Intake struct {
	picks   storage.PickStore
	gateway oracle.Gateway
	stake   float64
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// New creates a new Intake. stakeNative <= 0 selects DefaultFixedStakeNative.
func New(picks storage.PickStore, gateway oracle.Gateway, stakeNative float64, logger *zap.Logger) *Intake {
	if stakeNative <= 0 {
		stakeNative = DefaultFixedStakeNative
	}
	return &Intake{
		picks:   picks,
		gateway: gateway,
		stake:   stakeNative,
		logger:  logger.Named("Intake"),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Stake returns the SOL stake applied to every pick.
func (in *Intake) Stake() float64 {
	return in.stake
}

// Handle records req.Text as a pick if it is a mint address not yet shilled in
// the chat. Ordinary conversation is Ignored without any lookup.
// The returned error is non-nil only for Failed results.
func (in *Intake) Handle(ctx context.Context, req Request) (Result, error) {
	res, err := in.handle(ctx, req)
	if res.Outcome != Ignored {
		observability.RecordIntake(string(res.Outcome))
	}
	return res, err
}

func (in *Intake) handle(ctx context.Context, req Request) (Result, error) {
	mint := strings.TrimSpace(req.Text)
	if !solana.IsValidAddress(mint) {
		return Result{Outcome: Ignored}, nil
	}
	res := Result{Mint: mint, Stake: in.stake}

	_, err := in.picks.GetByChatMint(ctx, req.ChatID, mint)
	switch {
	case err == nil:
		res.Outcome = AlreadyShilled
		return res, nil
	case !errors.Is(err, storage.ErrNotFound):
		observability.RecordStoreError("get_pick")
		res.Outcome = Failed
		return res, fmt.Errorf("lookup pick: %w", err)
	}

	nativeUSD := in.gateway.NativePriceUSD(ctx)
	if nativeUSD <= 0 {
		res.Outcome = PriceUnavailable
		return res, nil
	}

	priceNative := in.gateway.TokenPriceInNative(ctx, mint)
	if priceNative <= 0 {
		res.Outcome = TokenUnpriced
		return res, nil
	}

	cost, tokens := valuation.CostBasis(in.stake, nativeUSD, priceNative)
	pick := &domain.Pick{
		ID:           in.newID(),
		ChatID:       req.ChatID,
		UserID:       req.UserID,
		Username:     req.Username,
		MintAddress:  mint,
		CostBasisUSD: cost,
		NumTokens:    tokens,
		CreatedAt:    in.now().UnixMilli(),
	}

	if err := in.picks.Insert(ctx, pick); err != nil {
		// Another paste of the same mint won the insert.
		if errors.Is(err, storage.ErrDuplicateKey) {
			in.logger.Info("Pick already shilled",
				zap.Int64("chatID", req.ChatID),
				zap.String("mint", mint))
			res.Outcome = AlreadyShilled
			return res, nil
		}
		observability.RecordStoreError("insert_pick")
		res.Outcome = Failed
		return res, fmt.Errorf("insert pick: %w", err)
	}

	in.logger.Info("Pick added",
		zap.Int64("chatID", pick.ChatID),
		zap.Int64("userID", pick.UserID),
		zap.String("mint", mint),
		zap.Float64("costUSD", cost),
		zap.Float64("tokens", tokens))

	res.Outcome = Added
	res.Pick = pick
	return res, nil
}
