// Package valuation marks picks and wallets to market in USD.
package valuation

import (
	"context"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/oracle"
)

// Engine values ledger entries against live gateway data.
// All methods take the native price as an argument so that a caller can value
// many entries against a single SOL/USD snapshot.
type Engine struct {
	gateway oracle.Gateway
}

// NewEngine creates a new Engine.
func NewEngine(gateway oracle.Gateway) *Engine {
	return &Engine{gateway: gateway}
}

// CostBasis returns the USD committed by a stake of stakeNative SOL and the number
// of tokens it buys at tokenPriceNative. Both prices must be positive.
func CostBasis(stakeNative, nativeUSD, tokenPriceNative float64) (costUSD, numTokens float64) {
	return stakeNative * nativeUSD, stakeNative / tokenPriceNative
}

// ValuePick marks a pick to market. It returns false when the token has no
// positive price, in which case the pick is left out of the render.
func (e *Engine) ValuePick(ctx context.Context, pick *domain.Pick, nativeUSD float64) (domain.PickValuation, bool) {
	priceNative := e.gateway.TokenPriceInNative(ctx, pick.MintAddress)
	if priceNative <= 0 {
		return domain.PickValuation{}, false
	}

	priceUSD := priceNative * nativeUSD
	value := pick.NumTokens * priceUSD
	return domain.PickValuation{
		Pick:            *pick,
		CurrentPriceUSD: priceUSD,
		CurrentValueUSD: value,
		PnLUSD:          value - pick.CostBasisUSD,
	}, true
}

// ValueWallet marks a registered wallet to market. It never fails: an
// unpriceable holding contributes nothing.
func (e *Engine) ValueWallet(ctx context.Context, wallet *domain.WalletRegistration, nativeUSD float64) domain.WalletValuation {
	netWorth := e.Snapshot(ctx, wallet.WalletAddress, nativeUSD)
	return domain.WalletValuation{
		Wallet:      *wallet,
		NetWorthUSD: netWorth,
		PnLUSD:      netWorth - wallet.StartUSDValue,
	}
}

// Snapshot returns the current USD net worth of address: its SOL balance plus
// every token holding, each at its own SOL price.
func (e *Engine) Snapshot(ctx context.Context, address string, nativeUSD float64) float64 {
	total := e.gateway.NativeBalance(ctx, address) * nativeUSD
	for _, h := range e.gateway.TokenHoldings(ctx, address) {
		priceNative := e.gateway.TokenPriceInNative(ctx, h.Mint)
		if priceNative <= 0 {
			continue
		}
		total += h.Amount * priceNative * nativeUSD
	}
	return total
}
