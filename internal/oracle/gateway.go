// Package oracle answers price, balance and metadata questions about Solana assets.
//
// Every Gateway call degrades instead of failing: an unavailable price or balance
// is reported as 0, unavailable holdings as an empty list and an unknown symbol as
// UnknownSymbol. Callers decide what a zero means for them.
package oracle

import (
	"context"

	"sniper-bowl-bot/internal/domain"
)

// UnknownSymbol is returned when token metadata cannot be resolved.
const UnknownSymbol = "N/A"

// Gateway is the read-only view of market and chain data used by the ledger.
type Gateway interface {
	// NativePriceUSD returns the USD price of one SOL, or 0 if unavailable.
	NativePriceUSD(ctx context.Context) float64

	// TokenPriceInNative returns the price of one token unit in SOL, or 0 if unavailable.
	TokenPriceInNative(ctx context.Context, mint string) float64

	// NativeBalance returns the SOL balance of wallet, or 0 on failure.
	NativeBalance(ctx context.Context, wallet string) float64

	// TokenHoldings returns the non-zero SPL Token and Token-2022 holdings of
	// wallet. A failed program lookup is skipped; nil if every lookup fails.
	TokenHoldings(ctx context.Context, wallet string) []domain.TokenHolding

	// TokenSymbol returns the ticker of mint, or UnknownSymbol on failure.
	TokenSymbol(ctx context.Context, mint string) string
}
