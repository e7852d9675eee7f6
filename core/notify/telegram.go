package notify

import (
	"context"
	"fmt"
	"html"
	"strconv"

	"github.com/mymmrac/telego"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramSender sends alerts as HTML messages through a bot.
type TelegramSender struct {
	bot messageSender
}

// NewTelegramSender creates a bot-backed sender.
func NewTelegramSender(token string) (*TelegramSender, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, err
	}
	return &TelegramSender{bot: bot}, nil
}

// Send implements Sender. destination is the numeric chat id.
func (t *TelegramSender) Send(ctx context.Context, destination string, alert Alert) error {
	chatID, err := strconv.ParseInt(destination, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", destination, err)
	}

	_, err = t.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      telegramText(alert),
		ParseMode: "HTML",
	})
	return err
}

func telegramText(alert Alert) string {
	text := "<b>" + html.EscapeString(alert.Title) + "</b>"
	if alert.Description != "" {
		text += "\n" + html.EscapeString(alert.Description)
	}
	return text
}
