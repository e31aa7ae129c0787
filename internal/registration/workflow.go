// Package registration enrolls contest wallets.
//
// A user runs the register command, which opens a session, and then sends an
// address. The address is validated, checked against the chat's registrations,
// valued at the current SOL price and frozen as the wallet's starting value.
// Every submission ends the session whatever the outcome.
package registration

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

// Outcome is the terminal state of a submission.
type Outcome string

const (
	Registered        Outcome = "registered"
	InvalidAddress    Outcome = "invalid_address"
	WalletTaken       Outcome = "wallet_taken"
	AlreadyRegistered Outcome = "already_registered"
	PriceUnavailable  Outcome = "price_unavailable"
	Failed            Outcome = "failed"
)

// Request is a submitted wallet address.
type Request struct {
	ChatID   int64
	UserID   int64
	Username string
	Address  string
}

// Result describes how a submission ended.
type Result struct {
	Outcome   Outcome
	Wallet    *domain.WalletRegistration // set when Registered
	NativeUSD float64                    // SOL/USD used for the snapshot
}

// Workflow runs wallet registrations.
type Workflow struct {
	wallets  storage.WalletStore
	gateway  oracle.Gateway
	engine   *valuation.Engine
	sessions SessionStore
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewWorkflow creates a new Workflow.
func NewWorkflow(wallets storage.WalletStore, gateway oracle.Gateway, sessions SessionStore, logger *zap.Logger) *Workflow {
	return &Workflow{
		wallets:  wallets,
		gateway:  gateway,
		engine:   valuation.NewEngine(gateway),
		sessions: sessions,
		logger:   logger.Named("Registration"),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Begin opens a registration session for the user, replacing any open one.
func (w *Workflow) Begin(ctx context.Context, chatID, userID int64) error {
	return w.sessions.Open(ctx, chatID, userID)
}

// Pending reports whether the user was asked for an address and has not answered.
// A session store failure is logged and treated as no session.
func (w *Workflow) Pending(ctx context.Context, chatID, userID int64) bool {
	open, err := w.sessions.Exists(ctx, chatID, userID)
	if err != nil {
		w.logger.Warn("Failed to check registration session",
			zap.Int64("chatID", chatID), zap.Int64("userID", userID), zap.Error(err))
		return false
	}
	return open
}

// Submit ends the user's session and tries to register req.Address.
// The returned error is non-nil only for Failed results.
func (w *Workflow) Submit(ctx context.Context, req Request) (Result, error) {
	if _, err := w.sessions.Close(ctx, req.ChatID, req.UserID); err != nil {
		w.logger.Warn("Failed to close registration session",
			zap.Int64("chatID", req.ChatID), zap.Int64("userID", req.UserID), zap.Error(err))
	}

	res, err := w.submit(ctx, req)
	observability.RecordRegistration(string(res.Outcome))
	return res, err
}

func (w *Workflow) submit(ctx context.Context, req Request) (Result, error) {
	address := strings.TrimSpace(req.Address)
	if !solana.IsValidAddress(address) {
		return Result{Outcome: InvalidAddress}, nil
	}

	if outcome, err := w.precheck(ctx, req.ChatID, req.UserID, address); err != nil || outcome != "" {
		return Result{Outcome: outcome}, err
	}

	nativeUSD := w.gateway.NativePriceUSD(ctx)
	if nativeUSD <= 0 {
		return Result{Outcome: PriceUnavailable}, nil
	}

	reg := &domain.WalletRegistration{
		ID:            w.newID(),
		ChatID:        req.ChatID,
		UserID:        req.UserID,
		Username:      req.Username,
		WalletAddress: address,
		StartUSDValue: w.engine.Snapshot(ctx, address, nativeUSD),
		CreatedAt:     w.now().UnixMilli(),
	}

	if err := w.wallets.Insert(ctx, reg); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Lost a race against a concurrent registration; report it as the
			// pre-check would have.
			outcome, cerr := w.precheck(ctx, req.ChatID, req.UserID, address)
			if cerr == nil && outcome != "" {
				return Result{Outcome: outcome, NativeUSD: nativeUSD}, nil
			}
			return Result{Outcome: WalletTaken, NativeUSD: nativeUSD}, nil
		}
		observability.RecordStoreError("insert_wallet")
		return Result{Outcome: Failed, NativeUSD: nativeUSD}, fmt.Errorf("insert wallet: %w", err)
	}

	w.logger.Info("Wallet registered",
		zap.Int64("chatID", reg.ChatID),
		zap.Int64("userID", reg.UserID),
		zap.String("wallet", reg.WalletAddress),
		zap.Float64("startUSD", reg.StartUSDValue))

	return Result{Outcome: Registered, Wallet: reg, NativeUSD: nativeUSD}, nil
}

// precheck returns WalletTaken or AlreadyRegistered when the chat's ledger
// already rejects the registration, or "" when it may proceed.
func (w *Workflow) precheck(ctx context.Context, chatID, userID int64, address string) (Outcome, error) {
	_, err := w.wallets.GetByChatWallet(ctx, chatID, address)
	switch {
	case err == nil:
		return WalletTaken, nil
	case !errors.Is(err, storage.ErrNotFound):
		observability.RecordStoreError("get_wallet")
		return Failed, fmt.Errorf("lookup wallet: %w", err)
	}

	_, err = w.wallets.GetByChatUser(ctx, chatID, userID)
	switch {
	case err == nil:
		return AlreadyRegistered, nil
	case !errors.Is(err, storage.ErrNotFound):
		observability.RecordStoreError("get_wallet")
		return Failed, fmt.Errorf("lookup user wallet: %w", err)
	}

	return "", nil
}
