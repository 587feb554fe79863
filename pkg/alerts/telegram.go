package alerts

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier posts alerts to a Telegram chat through a bot.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier authenticates the bot token against the Bot API.
// An empty endpoint uses the public Telegram API.
func NewTelegramNotifier(token string, chatID int64, endpoint string) (*TelegramNotifier, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

func (t *TelegramNotifier) Send(ctx context.Context, alert Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, alert.Subject+"\n\n"+alert.Body)
	msg.DisableWebPagePreview = true

	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram alert: %w", err)
	}
	return nil
}
