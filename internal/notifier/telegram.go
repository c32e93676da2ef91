package notifier

import (
	"context"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/dinari-africa/dinari-ledger/pkg/logger"
)

// TelegramNotifier delivers operator alerts to a single configured chat.
type TelegramNotifier struct {
	logger *logger.Logger
	bot    *bot.Bot

	chatID string
}

func NewTelegramNotifier(logger *logger.Logger, token, chatID string) (*TelegramNotifier, error) {
	provider := &TelegramNotifier{
		logger: logger,
		chatID: chatID,
	}
	opts := []bot.Option{
		bot.WithDefaultHandler(provider.handler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, err
	}
	go b.Start(context.Background())
	provider.bot = b

	return provider, nil
}

func (t *TelegramNotifier) SendNotification(message string) {
	params := &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   message,
	}
	_, err := t.bot.SendMessage(context.Background(), params)
	if err != nil {
		t.logger.Error("Failed to send notification: ", err)
	}
}

// handler answers /start with the chat ID so the operator can configure
// TELEGRAM_CHAT_ID without digging through the Bot API.
func (t *TelegramNotifier) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	t.logger.Debug("Telegram update: ", update.Message.From.Username, " ", update.Message.Text)
	if update.Message.Text == "/start" {
		params := &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Dinari ledger alert bot. Set TELEGRAM_CHAT_ID to this chat to receive alerts.",
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			t.logger.Error("Failed to reply to /start: ", err)
		}
	}
}
