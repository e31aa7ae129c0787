// Package bot maps chat commands and messages onto the contest ledger.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sniper-bowl-bot/internal/intake"
	"sniper-bowl-bot/internal/leaderboard"
	"sniper-bowl-bot/internal/observability"
	"sniper-bowl-bot/internal/oracle"
	"sniper-bowl-bot/internal/registration"
	"sniper-bowl-bot/internal/share"
	"sniper-bowl-bot/internal/storage"
	"sniper-bowl-bot/internal/valuation"
)

// AnonymousName is shown for users without a username.
const AnonymousName = "Anonymous"

// Message is an inbound chat message.
type Message struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

func (m Message) displayName() string {
	if m.Username == "" {
		return AnonymousName
	}
	return m.Username
}

// Reply is an outbound chat message.
type Reply struct {
	Text           string
	ParseMode      string
	DisablePreview bool
}

// Replier delivers replies to a chat.
type Replier interface {
	Reply(ctx context.Context, chatID int64, r Reply) error
}

// Command is a bot command advertised to the chat platform.
type Command struct {
	Name        string
	Description string
}

// Commands lists the supported commands in menu order.
var Commands = []Command{
	{"start", "Start the bot and get welcome message"},
	{"help", "Show help message with all commands"},
	{"rules", "Show rules of usage Sniper Bowl"},
	{"my_calls", "Show shilled CA leaderboard"},
	{"register_wallet", "Register wallet for Sniper Bowl"},
	{"sniper_leaderboard", "Show Sniper Bowl leaderboard"},
	{"share", "Share your picks on Twitter"},
}

// Handler serves one chat message at a time and is safe for concurrent use.
type Handler struct {
	boards       *leaderboard.Builder
	registration *registration.Workflow
	intake       *intake.Intake
	picks        storage.PickStore
	gateway      oracle.Gateway
	engine       *valuation.Engine
	replier      Replier
	logger       *zap.Logger
	onDispatch   func(at time.Time)
}

// NewHandler creates a new Handler.
func NewHandler(
	boards *leaderboard.Builder,
	reg *registration.Workflow,
	in *intake.Intake,
	picks storage.PickStore,
	gateway oracle.Gateway,
	replier Replier,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		boards:       boards,
		registration: reg,
		intake:       in,
		picks:        picks,
		gateway:      gateway,
		engine:       valuation.NewEngine(gateway),
		replier:      replier,
		logger:       logger.Named("Bot"),
	}
}

// OnDispatch registers fn to be called after every handled message.
func (h *Handler) OnDispatch(fn func(at time.Time)) {
	h.onDispatch = fn
}

// Dispatch routes msg to its command handler, or to Text for non-command input.
// Unknown commands are ignored.
func (h *Handler) Dispatch(ctx context.Context, msg Message) {
	name, args, isCommand := parseCommand(msg.Text)

	var err error
	switch {
	case !isCommand:
		name = "text"
		err = h.Text(ctx, msg)
	case name == "start":
		err = h.Start(ctx, msg)
	case name == "help":
		err = h.Help(ctx, msg)
	case name == "rules":
		err = h.Rules(ctx, msg)
	case name == "my_calls":
		err = h.MyCalls(ctx, msg)
	case name == "register_wallet":
		err = h.RegisterWallet(ctx, msg, args)
	case name == "sniper_leaderboard":
		err = h.SniperLeaderboard(ctx, msg)
	case name == "share":
		err = h.Share(ctx, msg)
	default:
		return
	}

	now := time.Now()
	observability.RecordCommand(name, now.Unix())
	if h.onDispatch != nil {
		h.onDispatch(now)
	}
	if err != nil {
		h.logger.Error("Failed to handle message",
			zap.String("command", name),
			zap.Int64("chatID", msg.ChatID),
			zap.Int64("userID", msg.UserID),
			zap.Error(err))
	}
}

// parseCommand splits "/cmd@bot args" into ("cmd", "args", true).
func parseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) error {
	return h.replier.Reply(ctx, chatID, Reply{Text: text})
}

func (h *Handler) replyMarkdown(ctx context.Context, chatID int64, text, mode string) error {
	return h.replier.Reply(ctx, chatID, Reply{Text: text, ParseMode: mode})
}

// Start sends the welcome message.
func (h *Handler) Start(ctx context.Context, msg Message) error {
	return h.replyMarkdown(ctx, msg.ChatID, welcomeText, ParseModeMarkdown)
}

// Help sends the command overview.
func (h *Handler) Help(ctx context.Context, msg Message) error {
	return h.replyMarkdown(ctx, msg.ChatID, helpText, ParseModeMarkdownV2)
}

// Rules sends the contest rules.
func (h *Handler) Rules(ctx context.Context, msg Message) error {
	return h.replyMarkdown(ctx, msg.ChatID, rulesText, ParseModeMarkdownV2)
}

// MyCalls sends the sender's pick leaderboard.
func (h *Handler) MyCalls(ctx context.Context, msg Message) error {
	board, err := h.boards.Picks(ctx, msg.ChatID, msg.UserID)
	switch {
	case err == nil:
		return h.replyMarkdown(ctx, msg.ChatID, formatPickBoard(board, h.intake.Stake()), ParseModeMarkdown)
	case errors.Is(err, leaderboard.ErrNoEntries):
		return h.reply(ctx, msg.ChatID, msgNoPicks)
	case errors.Is(err, leaderboard.ErrPriceUnavailable):
		return h.reply(ctx, msg.ChatID, msgBoardNoPrice)
	case errors.Is(err, leaderboard.ErrNoPricedEntries):
		return h.reply(ctx, msg.ChatID, msgNoPricedPicks)
	default:
		h.logger.Error("Pick leaderboard failed", zap.Int64("chatID", msg.ChatID), zap.Error(err))
		return h.reply(ctx, msg.ChatID, msgBoardFailed)
	}
}

// RegisterWallet starts a registration. With an address argument the
// registration is submitted immediately; otherwise the user is asked for one.
func (h *Handler) RegisterWallet(ctx context.Context, msg Message, args string) error {
	if args != "" {
		return h.submitRegistration(ctx, msg, args)
	}
	if err := h.registration.Begin(ctx, msg.ChatID, msg.UserID); err != nil {
		h.logger.Error("Failed to open registration session", zap.Int64("chatID", msg.ChatID), zap.Error(err))
		return h.reply(ctx, msg.ChatID, msgRegisterFailed)
	}
	return h.reply(ctx, msg.ChatID, msgAskWallet)
}

func (h *Handler) submitRegistration(ctx context.Context, msg Message, address string) error {
	res, err := h.registration.Submit(ctx, registration.Request{
		ChatID:   msg.ChatID,
		UserID:   msg.UserID,
		Username: msg.displayName(),
		Address:  address,
	})
	if err != nil {
		h.logger.Error("Wallet registration failed", zap.Int64("chatID", msg.ChatID), zap.Error(err))
	}

	switch res.Outcome {
	case registration.Registered:
		return h.reply(ctx, msg.ChatID, msgRegistered)
	case registration.InvalidAddress:
		return h.reply(ctx, msg.ChatID, msgInvalidAddress)
	case registration.WalletTaken:
		return h.reply(ctx, msg.ChatID, msgWalletTaken)
	case registration.AlreadyRegistered:
		return h.reply(ctx, msg.ChatID, msgAlreadyRegistered)
	case registration.PriceUnavailable:
		return h.reply(ctx, msg.ChatID, msgRegisterNoPrice)
	default:
		return h.reply(ctx, msg.ChatID, msgRegisterFailed)
	}
}

// SniperLeaderboard sends the chat's wallet leaderboard, preceded by an
// acknowledgment once valuation starts.
func (h *Handler) SniperLeaderboard(ctx context.Context, msg Message) error {
	onStart := func() {
		if err := h.reply(ctx, msg.ChatID, msgTallying); err != nil {
			h.logger.Warn("Failed to send acknowledgment", zap.Int64("chatID", msg.ChatID), zap.Error(err))
		}
	}

	board, err := h.boards.Wallets(ctx, msg.ChatID, onStart)
	switch {
	case err == nil:
		return h.replyMarkdown(ctx, msg.ChatID, formatWalletBoard(board), ParseModeMarkdown)
	case errors.Is(err, leaderboard.ErrNoEntries):
		return h.reply(ctx, msg.ChatID, msgNoWallets)
	case errors.Is(err, leaderboard.ErrPriceUnavailable):
		return h.reply(ctx, msg.ChatID, msgBoardNoPrice)
	default:
		h.logger.Error("Wallet leaderboard failed", zap.Int64("chatID", msg.ChatID), zap.Error(err))
		return h.reply(ctx, msg.ChatID, msgBoardFailed)
	}
}

// Share sends a tweet link summarizing every pick of the sender in the chat.
// An unpriced pick counts as a total loss of its cost basis.
func (h *Handler) Share(ctx context.Context, msg Message) error {
	picks, err := h.picks.GetByChatUser(ctx, msg.ChatID, msg.UserID)
	if err != nil {
		observability.RecordStoreError("load_picks")
		h.logger.Error("Failed to load picks", zap.Int64("chatID", msg.ChatID), zap.Error(err))
		return h.reply(ctx, msg.ChatID, msgBoardFailed)
	}
	if len(picks) == 0 {
		return h.reply(ctx, msg.ChatID, msgShareNoPicks)
	}

	nativeUSD := h.gateway.NativePriceUSD(ctx)
	if nativeUSD <= 0 {
		return h.reply(ctx, msg.ChatID, msgShareNoPrice)
	}

	lines := make([]share.Line, 0, len(picks))
	var total float64
	for _, p := range picks {
		pnl := -p.CostBasisUSD
		if v, ok := h.engine.ValuePick(ctx, p, nativeUSD); ok {
			pnl = v.PnLUSD
		}
		total += pnl
		lines = append(lines, share.Line{Symbol: h.gateway.TokenSymbol(ctx, p.MintAddress), PnLUSD: pnl})
	}

	link := share.TweetURL(share.Summary(msg.displayName(), lines, total))
	return h.replier.Reply(ctx, msg.ChatID, Reply{
		Text:           fmt.Sprintf(msgShareFmt, link),
		ParseMode:      ParseModeMarkdown,
		DisablePreview: true,
	})
}

// Text handles non-command input: a pending registration takes the message as
// its address, anything else goes to pick intake.
func (h *Handler) Text(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	if h.registration.Pending(ctx, msg.ChatID, msg.UserID) {
		return h.submitRegistration(ctx, msg, msg.Text)
	}

	res, err := h.intake.Handle(ctx, intake.Request{
		ChatID:   msg.ChatID,
		UserID:   msg.UserID,
		Username: msg.displayName(),
		Text:     msg.Text,
	})
	if err != nil {
		h.logger.Error("Pick intake failed", zap.Int64("chatID", msg.ChatID), zap.String("mint", res.Mint), zap.Error(err))
	}

	switch res.Outcome {
	case intake.Ignored:
		return nil
	case intake.AlreadyShilled:
		return h.reply(ctx, msg.ChatID, fmt.Sprintf(msgIntakeShilledFmt, res.Mint))
	case intake.PriceUnavailable:
		return h.reply(ctx, msg.ChatID, msgIntakeNoPrice)
	case intake.TokenUnpriced:
		return h.reply(ctx, msg.ChatID, msgIntakeUnpriced)
	case intake.Added:
		return h.reply(ctx, msg.ChatID, fmt.Sprintf(msgIntakeAddedFmt,
			res.Mint, formatStake(res.Stake), res.Pick.CostBasisUSD, res.Pick.NumTokens))
	default:
		return h.reply(ctx, msg.ChatID, msgIntakeFailed)
	}
}
