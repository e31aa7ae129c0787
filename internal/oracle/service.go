package oracle

import (
	"context"
	"math"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/observability"
	"sniper-bowl-bot/internal/solana"
)

// DefaultSymbolTTL is how long resolved token symbols are kept.
const DefaultSymbolTTL = time.Hour

// Gateway call names used in logs and metrics.
const (
	callNativePrice   = "native_price"
	callTokenPrice    = "token_price"
	callNativeBalance = "native_balance"
	callTokenHoldings = "token_holdings"
	callTokenSymbol   = "token_symbol"
)

// Service implements Gateway over a PriceSource and a Solana RPC client.
// Prices and balances are always fetched live; only symbols are cached.
type Service struct {
	prices  PriceSource
	rpc     solana.RPCClient
	symbols *cache.Cache
	logger  *zap.Logger
}

var _ Gateway = (*Service)(nil)

// NewService creates a new Service. symbolTTL <= 0 selects DefaultSymbolTTL.
func NewService(prices PriceSource, rpc solana.RPCClient, symbolTTL time.Duration, logger *zap.Logger) *Service {
	if symbolTTL <= 0 {
		symbolTTL = DefaultSymbolTTL
	}
	return &Service{
		prices:  prices,
		rpc:     rpc,
		symbols: cache.New(symbolTTL, 2*symbolTTL),
		logger:  logger.Named("Oracle"),
	}
}

// NativePriceUSD returns the USD price of one SOL, or 0 if unavailable.
func (s *Service) NativePriceUSD(ctx context.Context) float64 {
	start := time.Now()
	price, err := s.prices.NativePriceUSD(ctx)
	return s.price(callNativePrice, start, price, err, zap.Skip())
}

// TokenPriceInNative returns the price of one token unit in SOL, or 0 if unavailable.
func (s *Service) TokenPriceInNative(ctx context.Context, mint string) float64 {
	start := time.Now()
	price, err := s.prices.TokenPriceInNative(ctx, mint)
	return s.price(callTokenPrice, start, price, err, zap.String("mint", mint))
}

func (s *Service) price(call string, start time.Time, price float64, err error, field zap.Field) float64 {
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.logger.Warn("Price unavailable", zap.String("call", call), field, zap.Error(err))
		observability.RecordOracleCall(call, observability.OutcomeDegraded, elapsed)
		return 0
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		s.logger.Warn("Price out of range", zap.String("call", call), field, zap.Float64("price", price))
		observability.RecordOracleCall(call, observability.OutcomeDegraded, elapsed)
		return 0
	}
	observability.RecordOracleCall(call, observability.OutcomeOK, elapsed)
	return price
}

// NativeBalance returns the SOL balance of wallet, or 0 on failure.
func (s *Service) NativeBalance(ctx context.Context, wallet string) float64 {
	start := time.Now()
	lamports, err := s.rpc.GetBalance(ctx, wallet)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.logger.Warn("Balance unavailable", zap.String("wallet", wallet), zap.Error(err))
		observability.RecordOracleCall(callNativeBalance, observability.OutcomeDegraded, elapsed)
		return 0
	}
	observability.RecordOracleCall(callNativeBalance, observability.OutcomeOK, elapsed)
	return float64(lamports) / solana.LamportsPerSOL
}

// TokenHoldings returns the non-zero holdings of wallet across the SPL Token
// and Token-2022 programs, one entry per mint in the order the node reported
// them. A program whose lookup fails contributes nothing; nil if both fail.
func (s *Service) TokenHoldings(ctx context.Context, wallet string) []domain.TokenHolding {
	var (
		holdings []domain.TokenHolding
		index    = make(map[string]int)
		failed   int
	)
	for _, program := range solana.TokenProgramIDs {
		start := time.Now()
		accounts, err := s.rpc.GetTokenAccountsByOwner(ctx, wallet, program)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			s.logger.Warn("Holdings unavailable",
				zap.String("wallet", wallet),
				zap.String("program", program),
				zap.Error(err),
			)
			observability.RecordOracleCall(callTokenHoldings, observability.OutcomeDegraded, elapsed)
			failed++
			continue
		}
		observability.RecordOracleCall(callTokenHoldings, observability.OutcomeOK, elapsed)

		for _, acc := range accounts {
			if acc.UIAmount <= 0 {
				continue
			}
			// A wallet may hold several accounts for the same mint.
			if i, ok := index[acc.Mint]; ok {
				holdings[i].Amount += acc.UIAmount
				continue
			}
			index[acc.Mint] = len(holdings)
			holdings = append(holdings, domain.TokenHolding{Mint: acc.Mint, Amount: acc.UIAmount})
		}
	}
	if failed == len(solana.TokenProgramIDs) {
		return nil
	}
	if holdings == nil {
		holdings = []domain.TokenHolding{}
	}
	return holdings
}

// TokenSymbol returns the ticker of mint, or UnknownSymbol on failure.
// Failures are not cached.
func (s *Service) TokenSymbol(ctx context.Context, mint string) string {
	if v, ok := s.symbols.Get(mint); ok {
		return v.(string)
	}

	start := time.Now()
	symbol, err := s.prices.TokenSymbol(ctx, mint)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.logger.Warn("Symbol unavailable", zap.String("mint", mint), zap.Error(err))
		observability.RecordOracleCall(callTokenSymbol, observability.OutcomeDegraded, elapsed)
		return UnknownSymbol
	}
	observability.RecordOracleCall(callTokenSymbol, observability.OutcomeOK, elapsed)

	s.symbols.Set(mint, symbol, cache.DefaultExpiration)
	return symbol
}
