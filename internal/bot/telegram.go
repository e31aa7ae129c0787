package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// DefaultPollTimeout is the long-poll timeout in seconds.
const DefaultPollTimeout = 60

// Telegram is a Replier backed by the Telegram Bot API.
type Telegram struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
	logger      *zap.Logger
}

var _ Replier = (*Telegram)(nil)

// NewTelegram authenticates token against the Bot API.
func NewTelegram(token string, debug bool, pollTimeout int, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	api.Debug = debug

	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}

	logger = logger.Named("Telegram")
	logger.Info("Authorized", zap.String("username", api.Self.UserName))

	return &Telegram{api: api, pollTimeout: pollTimeout, logger: logger}, nil
}

// Reply sends r to chatID.
func (t *Telegram) Reply(_ context.Context, chatID int64, r Reply) error {
	msg := tgbotapi.NewMessage(chatID, r.Text)
	msg.ParseMode = r.ParseMode
	msg.DisableWebPagePreview = r.DisablePreview
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// RegisterCommands publishes the command menu.
func (t *Telegram) RegisterCommands() error {
	commands := make([]tgbotapi.BotCommand, 0, len(Commands))
	for _, c := range Commands {
		commands = append(commands, tgbotapi.BotCommand{Command: c.Name, Description: c.Description})
	}
	if _, err := t.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("set commands: %w", err)
	}
	return nil
}

// Run long-polls for updates and dispatches each message on its own goroutine
// until ctx is cancelled. It returns after in-flight messages finish.
func (t *Telegram) Run(ctx context.Context, h *Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout
	updates := t.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	t.logger.Info("Polling for updates", zap.Int("timeout", t.pollTimeout))

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.logger.Info("Stopped polling")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, ok := toMessage(update)
			if !ok {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.Dispatch(context.WithoutCancel(ctx), msg)
			}()
		}
	}
}

func toMessage(update tgbotapi.Update) (Message, bool) {
	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil {
		return Message{}, false
	}
	return Message{
		ChatID:   m.Chat.ID,
		UserID:   m.From.ID,
		Username: m.From.UserName,
		Text:     m.Text,
	}, true
}
