package bot

import (
	"context"
	"crypto/ed25519"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sniper-bowl-bot/internal/intake"
	"sniper-bowl-bot/internal/leaderboard"
	"sniper-bowl-bot/internal/oracle/stub"
	"sniper-bowl-bot/internal/registration"
	"sniper-bowl-bot/internal/share"
	"sniper-bowl-bot/internal/storage/memory"
)

const chat int64 = -100

type sent struct {
	ChatID int64
	Reply  Reply
}

type fakeReplier struct {
	mu      sync.Mutex
	replies []sent
}

func (f *fakeReplier) Reply(_ context.Context, chatID int64, r Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, sent{ChatID: chatID, Reply: r})
	return nil
}

func (f *fakeReplier) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.replies))
	for i, s := range f.replies {
		out[i] = s.Reply.Text
	}
	return out
}

func (f *fakeReplier) last(t *testing.T) Reply {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.replies)
	return f.replies[len(f.replies)-1].Reply
}

type fixture struct {
	picks   *memory.PickStore
	wallets *memory.WalletStore
	gateway *stub.Gateway
	replier *fakeReplier
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		picks:   memory.NewPickStore(),
		wallets: memory.NewWalletStore(),
		gateway: stub.NewGateway(150),
		replier: &fakeReplier{},
	}
	logger := zap.NewNop()
	boards := leaderboard.NewBuilder(f.picks, f.wallets, f.gateway, nil, leaderboard.Config{}, logger)
	reg := registration.NewWorkflow(f.wallets, f.gateway, registration.NewMemorySessionStore(0), logger)
	in := intake.New(f.picks, f.gateway, intake.DefaultFixedStakeNative, logger)
	f.handler = NewHandler(boards, reg, in, f.picks, f.gateway, f.replier, logger)
	return f
}

func (f *fixture) send(user int64, username, text string) {
	f.handler.Dispatch(context.Background(), Message{ChatID: chat, UserID: user, Username: username, Text: text})
}

func newAddress(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return base58.Encode(pub)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text      string
		name      string
		args      string
		isCommand bool
	}{
		{"/start", "start", "", true},
		{"/my_calls@SniperBowlBot", "my_calls", "", true},
		{"/register_wallet  Abc ", "register_wallet", "Abc", true},
		{"/Help", "help", "", true},
		{"gm", "", "", false},
		{"/", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		name, args, ok := parseCommand(tt.text)
		assert.Equal(t, tt.isCommand, ok, tt.text)
		assert.Equal(t, tt.name, name, tt.text)
		assert.Equal(t, tt.args, args, tt.text)
	}
}

func TestDispatch_StaticCommands(t *testing.T) {
	f := newFixture(t)

	f.send(1, "alice", "/start")
	assert.Equal(t, Reply{Text: welcomeText, ParseMode: ParseModeMarkdown}, f.replier.last(t))

	f.send(1, "alice", "/help")
	assert.Equal(t, Reply{Text: helpText, ParseMode: ParseModeMarkdownV2}, f.replier.last(t))

	f.send(1, "alice", "/rules")
	assert.Equal(t, Reply{Text: rulesText, ParseMode: ParseModeMarkdownV2}, f.replier.last(t))
}

func TestDispatch_UnknownCommandIgnored(t *testing.T) {
	f := newFixture(t)
	f.send(1, "alice", "/moon")
	assert.Empty(t, f.replier.texts())
	assert.Zero(t, f.gateway.TotalCalls())
}

func TestDispatch_OnDispatchHook(t *testing.T) {
	f := newFixture(t)
	var handled []time.Time
	f.handler.OnDispatch(func(at time.Time) { handled = append(handled, at) })

	f.send(1, "alice", "/help")
	f.send(1, "alice", "gm")
	f.send(1, "alice", "/unknown")
	assert.Len(t, handled, 2)
}

func TestText_ConversationIgnored(t *testing.T) {
	f := newFixture(t)
	f.send(1, "alice", "gm frens")
	assert.Empty(t, f.replier.texts())
	assert.Zero(t, f.gateway.TotalCalls())
}

func TestText_PickAddedThenAlreadyShilled(t *testing.T) {
	f := newFixture(t)
	mint := newAddress(t)
	f.gateway.SetTokenPrice(mint, 0.0001)

	f.send(1, "alice", mint)
	added := f.replier.last(t).Text
	assert.Contains(t, added, "Added your pick for CA: "+mint)
	assert.Contains(t, added, "Invested: 0.5 SOL (~$75.00)")
	assert.Contains(t, added, "Received ~5000.0000 tokens")

	f.send(2, "bob", mint)
	assert.Equal(t, "🎯 This CA was already shilled here: "+mint, f.replier.last(t).Text)
	assert.Equal(t, 1, f.picks.Len())
}

func TestText_TokenUnpriced(t *testing.T) {
	f := newFixture(t)
	f.send(1, "alice", newAddress(t))
	assert.Equal(t, msgIntakeUnpriced, f.replier.last(t).Text)
	assert.Zero(t, f.picks.Len())
}

func TestMyCalls(t *testing.T) {
	f := newFixture(t)

	f.send(1, "alice", "/my_calls")
	assert.Equal(t, msgNoPicks, f.replier.last(t).Text)

	mint := newAddress(t)
	f.gateway.SetTokenPrice(mint, 0.0001)
	f.gateway.SetSymbol(mint, "BONK_2")
	f.send(1, "alice", mint)

	f.gateway.SetTokenPrice(mint, 0.000128)
	f.send(1, "alice", "/my_calls")

	board := f.replier.last(t)
	assert.Equal(t, ParseModeMarkdown, board.ParseMode)
	assert.Contains(t, board.Text, "1. BONK\\_2\n")
	assert.Contains(t, board.Text, " Mint:`"+mint+"`\n")
	assert.Contains(t, board.Text, " PnL: +$21.00\n")
	assert.Contains(t, board.Text, " Entry(0.5 SOL in USD): $75.00\n")
}

func TestMyCalls_PriceUnavailable(t *testing.T) {
	f := newFixture(t)
	mint := newAddress(t)
	f.gateway.SetTokenPrice(mint, 0.0001)
	f.send(1, "alice", mint)

	f.gateway.SetNativeUSD(0)
	f.send(1, "alice", "/my_calls")
	assert.Equal(t, msgBoardNoPrice, f.replier.last(t).Text)
}

func TestMyCalls_NoPricedPicks(t *testing.T) {
	f := newFixture(t)
	mint := newAddress(t)
	f.gateway.SetTokenPrice(mint, 0.0001)
	f.send(1, "alice", mint)

	f.gateway.SetTokenPrice(mint, 0)
	f.send(1, "alice", "/my_calls")
	assert.Equal(t, msgNoPricedPicks, f.replier.last(t).Text)
}

func TestRegisterWallet_TwoStep(t *testing.T) {
	f := newFixture(t)
	wallet := newAddress(t)
	f.gateway.SetWallet(wallet, 1)

	f.send(1, "alice", "/register_wallet")
	assert.Equal(t, msgAskWallet, f.replier.last(t).Text)

	f.send(1, "alice", wallet)
	assert.Equal(t, msgRegistered, f.replier.last(t).Text)

	reg, err := f.wallets.GetByChatUser(context.Background(), chat, 1)
	require.NoError(t, err)
	assert.Equal(t, wallet, reg.WalletAddress)
	assert.InDelta(t, 150.0, reg.StartUSDValue, 1e-9)

	// The session is consumed, so the same text is now treated as a pick.
	f.send(1, "alice", wallet)
	assert.Equal(t, msgIntakeUnpriced, f.replier.last(t).Text)
}

func TestRegisterWallet_InlineAddress(t *testing.T) {
	f := newFixture(t)
	wallet := newAddress(t)

	f.send(1, "alice", "/register_wallet "+wallet)
	assert.Equal(t, msgRegistered, f.replier.last(t).Text)

	f.send(2, "bob", "/register_wallet "+wallet)
	assert.Equal(t, msgWalletTaken, f.replier.last(t).Text)

	f.send(1, "alice", "/register_wallet "+newAddress(t))
	assert.Equal(t, msgAlreadyRegistered, f.replier.last(t).Text)

	f.send(3, "carol", "/register_wallet not-a-wallet")
	assert.Equal(t, msgInvalidAddress, f.replier.last(t).Text)
	assert.Equal(t, 1, f.wallets.Len())
}

func TestRegisterWallet_AnonymousUsername(t *testing.T) {
	f := newFixture(t)
	f.send(1, "", "/register_wallet "+newAddress(t))

	reg, err := f.wallets.GetByChatUser(context.Background(), chat, 1)
	require.NoError(t, err)
	assert.Equal(t, AnonymousName, reg.Username)
}

func TestSniperLeaderboard(t *testing.T) {
	f := newFixture(t)

	f.send(1, "alice", "/sniper_leaderboard")
	assert.Equal(t, []string{msgNoWallets}, f.replier.texts())

	w1, w2 := newAddress(t), newAddress(t)
	f.send(1, "alice_x", "/register_wallet "+w1)
	f.send(2, "bob", "/register_wallet "+w2)
	f.gateway.SetWallet(w2, 2)

	f.replier = &fakeReplier{}
	f.handler.replier = f.replier
	f.send(1, "alice_x", "/sniper_leaderboard")

	texts := f.replier.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, msgTallying, texts[0])
	board := texts[1]
	assert.True(t, strings.HasPrefix(board, "🏆 *Sniper Bowl Leaderboard:* 🏆\n\n1. bob"))
	assert.Contains(t, board, "   Net Worth: $300.00\n   PnL: +$300.00\n")
	assert.Contains(t, board, "2. alice\\_x (Wallet: `"+w1+"`)")
}

func TestSniperLeaderboard_PriceUnavailable(t *testing.T) {
	f := newFixture(t)
	f.send(1, "alice", "/register_wallet "+newAddress(t))

	f.gateway.SetNativeUSD(0)
	f.send(1, "alice", "/sniper_leaderboard")
	assert.Equal(t, msgBoardNoPrice, f.replier.last(t).Text)
	assert.NotContains(t, f.replier.texts(), msgTallying)
}

func TestShare(t *testing.T) {
	f := newFixture(t)

	f.send(1, "alice", "/share")
	assert.Equal(t, msgShareNoPicks, f.replier.last(t).Text)

	winner, loser := newAddress(t), newAddress(t)
	f.gateway.SetTokenPrice(winner, 0.0001)
	f.gateway.SetTokenPrice(loser, 0.0001)
	f.gateway.SetSymbol(winner, "WIN")
	f.send(1, "alice", winner)
	f.send(1, "alice", loser)

	f.gateway.SetTokenPrice(winner, 0.0003)
	f.gateway.SetTokenPrice(loser, 0)
	f.send(1, "alice", "/share")

	r := f.replier.last(t)
	assert.Equal(t, ParseModeMarkdown, r.ParseMode)
	assert.True(t, r.DisablePreview)

	start := strings.Index(r.Text, "(")
	require.Positive(t, start)
	link := strings.TrimSuffix(r.Text[start+1:], ")")
	require.True(t, strings.HasPrefix(link, share.IntentURL))

	text, err := url.QueryUnescape(strings.TrimPrefix(link, share.IntentURL))
	require.NoError(t, err)
	assert.Equal(t, "alice's Picks:\n\nWIN => +$150.00\nN/A => -$75.00\n\nTotal PnL: +$75.00\nShared via #Sniperbowlbot", text)
}

func TestShare_PriceUnavailable(t *testing.T) {
	f := newFixture(t)
	mint := newAddress(t)
	f.gateway.SetTokenPrice(mint, 0.0001)
	f.send(1, "alice", mint)

	f.gateway.SetNativeUSD(0)
	f.send(1, "alice", "/share")
	assert.Equal(t, msgShareNoPrice, f.replier.last(t).Text)
}
