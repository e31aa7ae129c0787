// Package stub provides an in-memory oracle.Gateway for tests.
package stub

import (
	"context"
	"sync"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/oracle"
)

// Gateway implements oracle.Gateway from fixed tables. Missing entries degrade
// exactly like the live service: 0, nil or oracle.UnknownSymbol.
type Gateway struct {
	mu sync.Mutex

	NativeUSD   float64
	TokenPrices map[string]float64
	Balances    map[string]float64
	Holdings    map[string][]domain.TokenHolding
	Symbols     map[string]string

	calls map[string]int
}

var _ oracle.Gateway = (*Gateway)(nil)

// NewGateway creates a stub gateway quoting SOL at nativeUSD.
func NewGateway(nativeUSD float64) *Gateway {
	return &Gateway{
		NativeUSD:   nativeUSD,
		TokenPrices: make(map[string]float64),
		Balances:    make(map[string]float64),
		Holdings:    make(map[string][]domain.TokenHolding),
		Symbols:     make(map[string]string),
		calls:       make(map[string]int),
	}
}

// Calls returns how many times the named method was invoked.
func (g *Gateway) Calls(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[method]
}

// TotalCalls returns the number of gateway calls of any kind.
func (g *Gateway) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

// SetNativeUSD changes the SOL/USD quote.
func (g *Gateway) SetNativeUSD(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.NativeUSD = v
}

// SetTokenPrice sets the SOL price of mint.
func (g *Gateway) SetTokenPrice(mint string, priceNative float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.TokenPrices[mint] = priceNative
}

// SetWallet sets the SOL balance and token holdings of wallet.
func (g *Gateway) SetWallet(wallet string, balance float64, holdings ...domain.TokenHolding) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Balances[wallet] = balance
	g.Holdings[wallet] = holdings
}

// SetSymbol sets the ticker of mint.
func (g *Gateway) SetSymbol(mint, symbol string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Symbols[mint] = symbol
}

func (g *Gateway) NativePriceUSD(_ context.Context) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["NativePriceUSD"]++
	return g.NativeUSD
}

func (g *Gateway) TokenPriceInNative(_ context.Context, mint string) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["TokenPriceInNative"]++
	return g.TokenPrices[mint]
}

func (g *Gateway) NativeBalance(_ context.Context, wallet string) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["NativeBalance"]++
	return g.Balances[wallet]
}

func (g *Gateway) TokenHoldings(_ context.Context, wallet string) []domain.TokenHolding {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["TokenHoldings"]++
	holdings := g.Holdings[wallet]
	if holdings == nil {
		return nil
	}
	out := make([]domain.TokenHolding, len(holdings))
	copy(out, holdings)
	return out
}

func (g *Gateway) TokenSymbol(_ context.Context, mint string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["TokenSymbol"]++
	if s, ok := g.Symbols[mint]; ok {
		return s
	}
	return oracle.UnknownSymbol
}
