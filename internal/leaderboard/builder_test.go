package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sniper-bowl-bot/internal/domain"
	"sniper-bowl-bot/internal/oracle/stub"
	"sniper-bowl-bot/internal/storage/memory"
)

const chat int64 = -100

type fixture struct {
	picks   *memory.PickStore
	wallets *memory.WalletStore
	tape    *memory.PriceObservationStore
	gateway *stub.Gateway
	builder *Builder
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		picks:   memory.NewPickStore(),
		wallets: memory.NewWalletStore(),
		tape:    memory.NewPriceObservationStore(),
		gateway: stub.NewGateway(100),
	}
	f.builder = NewBuilder(f.picks, f.wallets, f.gateway, f.tape, cfg, zap.NewNop())
	f.builder.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return f
}

func (f *fixture) addPick(t *testing.T, user int64, mint string, cost, tokens float64) {
	t.Helper()
	require.NoError(t, f.picks.Insert(context.Background(), &domain.Pick{
		ID: mint, ChatID: chat, UserID: user, Username: "u", MintAddress: mint,
		CostBasisUSD: cost, NumTokens: tokens,
	}))
}

func (f *fixture) addWallet(t *testing.T, user int64, wallet string, start float64) {
	t.Helper()
	require.NoError(t, f.wallets.Insert(context.Background(), &domain.WalletRegistration{
		ID: wallet, ChatID: chat, UserID: user, Username: fmt.Sprintf("user%d", user), WalletAddress: wallet,
		StartUSDValue: start,
	}))
}

func mints(entries []domain.PickValuation) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Pick.MintAddress
	}
	return out
}

func wallets(entries []domain.WalletValuation) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Wallet.WalletAddress
	}
	return out
}

func TestPicks_SortedByPnLDescending(t *testing.T) {
	f := newFixture(t, Config{})
	f.addPick(t, 1, "Loser", 50, 100)  // 100 * 0.001 * 100 = 10 -> -40
	f.addPick(t, 1, "Winner", 50, 100) // 100 * 0.01 * 100 = 100 -> +50
	f.addPick(t, 1, "Flat", 50, 100)   // 100 * 0.005 * 100 = 50 -> 0
	f.addPick(t, 2, "Other", 50, 100)  // other user
	f.gateway.SetTokenPrice("Loser", 0.001)
	f.gateway.SetTokenPrice("Winner", 0.01)
	f.gateway.SetTokenPrice("Flat", 0.005)
	f.gateway.SetTokenPrice("Other", 1)
	f.gateway.SetSymbol("Winner", "WIN")

	board, err := f.builder.Picks(context.Background(), chat, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Winner", "Flat", "Loser"}, mints(board.Entries))
	assert.InDelta(t, 50.0, board.Entries[0].PnLUSD, 1e-9)
	assert.InDelta(t, -40.0, board.Entries[2].PnLUSD, 1e-9)
	assert.Equal(t, "WIN", board.Entries[0].Symbol)
	assert.Equal(t, "N/A", board.Entries[1].Symbol)
	assert.Equal(t, 3, board.Total)
	assert.Equal(t, 0, board.Skipped)
	assert.Equal(t, 100.0, board.NativeUSD)
}

func TestPicks_TiesKeepLedgerOrder(t *testing.T) {
	f := newFixture(t, Config{})
	for _, m := range []string{"C", "A", "B", "D"} {
		f.addPick(t, 1, m, 10, 10)
		f.gateway.SetTokenPrice(m, 0.01)
	}
	f.gateway.SetTokenPrice("D", 0.02)

	board, err := f.builder.Picks(context.Background(), chat, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "C", "A", "B"}, mints(board.Entries))
}

func TestPicks_SkipsUnpriced(t *testing.T) {
	f := newFixture(t, Config{})
	f.addPick(t, 1, "Priced", 50, 100)
	f.addPick(t, 1, "Dead", 50, 100)
	f.gateway.SetTokenPrice("Priced", 0.001)

	board, err := f.builder.Picks(context.Background(), chat, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Priced"}, mints(board.Entries))
	assert.Equal(t, 1, board.Skipped)
	assert.Equal(t, 1, f.gateway.Calls("TokenSymbol"))
}

func TestPicks_NoPricedEntries(t *testing.T) {
	f := newFixture(t, Config{})
	f.addPick(t, 1, "Dead", 50, 100)

	_, err := f.builder.Picks(context.Background(), chat, 1)
	assert.ErrorIs(t, err, ErrNoPricedEntries)
	assert.NotErrorIs(t, err, ErrNoEntries)
}

func TestPicks_NoEntries(t *testing.T) {
	f := newFixture(t, Config{})
	f.addPick(t, 2, "Someone", 50, 100)

	_, err := f.builder.Picks(context.Background(), chat, 1)
	assert.ErrorIs(t, err, ErrNoEntries)
	assert.Equal(t, 0, f.gateway.TotalCalls())
}

func TestPicks_PriceUnavailable(t *testing.T) {
	f := newFixture(t, Config{})
	f.addPick(t, 1, "A", 50, 100)
	f.gateway.SetTokenPrice("A", 0.01)
	f.gateway.SetNativeUSD(0)

	_, err := f.builder.Picks(context.Background(), chat, 1)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
	assert.Equal(t, 0, f.gateway.Calls("TokenPriceInNative"))

	obs, err := f.tape.GetByChat(context.Background(), chat, 0, 1<<62)
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestPicks_TopN(t *testing.T) {
	f := newFixture(t, Config{TopN: 3})
	for i := 0; i < 5; i++ {
		m := fmt.Sprintf("M%d", i)
		f.addPick(t, 1, m, 10, 10)
		f.gateway.SetTokenPrice(m, float64(i+1)*0.01)
	}

	board, err := f.builder.Picks(context.Background(), chat, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"M4", "M3", "M2"}, mints(board.Entries))
	assert.Equal(t, 5, board.Total)
	assert.Equal(t, 3, f.gateway.Calls("TokenSymbol"))
}

func TestPicks_NativePriceFetchedOnce(t *testing.T) {
	f := newFixture(t, Config{Concurrency: 2})
	for i := 0; i < 8; i++ {
		m := fmt.Sprintf("M%d", i)
		f.addPick(t, 1, m, 10, 10)
		f.gateway.SetTokenPrice(m, 0.01)
	}

	_, err := f.builder.Picks(context.Background(), chat, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.gateway.Calls("NativePriceUSD"))
	assert.Equal(t, 8, f.gateway.Calls("TokenPriceInNative"))
}

func TestPicks_Idempotent(t *testing.T) {
	f := newFixture(t, Config{})
	for i, m := range []string{"A", "B", "C"} {
		f.addPick(t, 1, m, 10, 10)
		f.gateway.SetTokenPrice(m, float64(3-i)*0.01)
	}

	first, err := f.builder.Picks(context.Background(), chat, 1)
	require.NoError(t, err)
	second, err := f.builder.Picks(context.Background(), chat, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Renders never mutate the ledger.
	stored, err := f.picks.GetByChatMint(context.Background(), chat, "A")
	require.NoError(t, err)
	assert.Equal(t, 10.0, stored.CostBasisUSD)
	assert.Equal(t, 10.0, stored.NumTokens)
}

func TestPicks_RecordsPriceTape(t *testing.T) {
	f := newFixture(t, Config{})
	f.addPick(t, 1, "A", 10, 10)
	f.gateway.SetTokenPrice("A", 0.02)

	_, err := f.builder.Picks(context.Background(), chat, 1)
	require.NoError(t, err)

	obs, err := f.tape.GetByChat(context.Background(), chat, 0, 1<<62)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, domain.ObservationNative, obs[0].Kind)
	assert.Equal(t, 100.0, obs[0].NativeUSD)
	assert.Equal(t, domain.ObservationToken, obs[1].Kind)
	assert.Equal(t, "A", obs[1].Mint)
	assert.InDelta(t, 0.02, obs[1].PriceNative, 1e-12)
}

type failingTape struct{}

func (failingTape) InsertBulk(context.Context, []*domain.PriceObservation) error {
	return errors.New("clickhouse down")
}

func (failingTape) GetByChat(context.Context, int64, int64, int64) ([]*domain.PriceObservation, error) {
	return nil, nil
}

func TestPicks_TapeFailureDoesNotFailRender(t *testing.T) {
	f := newFixture(t, Config{})
	f.builder.tape = failingTape{}
	f.addPick(t, 1, "A", 10, 10)
	f.gateway.SetTokenPrice("A", 0.02)

	board, err := f.builder.Picks(context.Background(), chat, 1)
	require.NoError(t, err)
	assert.Len(t, board.Entries, 1)
}

func TestWallets_ZeroRegistrationsMakesNoCalls(t *testing.T) {
	f := newFixture(t, Config{})
	started := false

	_, err := f.builder.Wallets(context.Background(), chat, func() { started = true })
	assert.ErrorIs(t, err, ErrNoEntries)
	assert.False(t, started)
	assert.Equal(t, 0, f.gateway.TotalCalls())
}

func TestWallets_RankedWithFailedHolding(t *testing.T) {
	f := newFixture(t, Config{})
	f.addWallet(t, 1, "WalletA", 50)
	f.addWallet(t, 2, "WalletB", 50)
	f.gateway.SetWallet("WalletA", 0.5, domain.TokenHolding{Mint: "Dead", Amount: 1e6})
	f.gateway.SetWallet("WalletB", 1, domain.TokenHolding{Mint: "Live", Amount: 100})
	f.gateway.SetTokenPrice("Live", 0.01)

	started := 0
	board, err := f.builder.Wallets(context.Background(), chat, func() { started++ })
	require.NoError(t, err)

	assert.Equal(t, 1, started)
	assert.Equal(t, []string{"WalletB", "WalletA"}, wallets(board.Entries))
	assert.InDelta(t, 200.0, board.Entries[0].NetWorthUSD, 1e-9)
	assert.InDelta(t, 150.0, board.Entries[0].PnLUSD, 1e-9)
	assert.InDelta(t, 50.0, board.Entries[1].NetWorthUSD, 1e-9)
	assert.InDelta(t, 0.0, board.Entries[1].PnLUSD, 1e-9)
}

func TestWallets_PriceUnavailable(t *testing.T) {
	f := newFixture(t, Config{})
	f.addWallet(t, 1, "WalletA", 50)
	f.gateway.SetNativeUSD(0)
	started := false

	_, err := f.builder.Wallets(context.Background(), chat, func() { started = true })
	assert.ErrorIs(t, err, ErrPriceUnavailable)
	assert.False(t, started)
	assert.Equal(t, 0, f.gateway.Calls("NativeBalance"))
}

func TestWallets_TiesAndTopN(t *testing.T) {
	f := newFixture(t, Config{TopN: 2})
	f.addWallet(t, 1, "W1", 0)
	f.addWallet(t, 2, "W2", 0)
	f.addWallet(t, 3, "W3", 0)
	for _, w := range []string{"W1", "W2", "W3"} {
		f.gateway.SetWallet(w, 1)
	}

	board, err := f.builder.Wallets(context.Background(), chat, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"W1", "W2"}, wallets(board.Entries))
	assert.Equal(t, 3, board.Total)
}

func TestBuilder_CancelledContext(t *testing.T) {
	f := newFixture(t, Config{})
	f.addWallet(t, 1, "W1", 0)
	f.gateway.SetWallet("W1", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.builder.Wallets(ctx, chat, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
