package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutriplan/internal/notification"
)

// Pusher sends high priority notifications to a Telegram alert chat.
type Pusher struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewPusher authorizes the bot token against the Telegram API.
func NewPusher(token string, chatID int64) (*Pusher, error) {
	return newPusher(token, tgbotapi.APIEndpoint, chatID, &http.Client{Timeout: 10 * time.Second})
}

func newPusher(token, endpoint string, chatID int64, client *http.Client) (*Pusher, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram alert chat id not set")
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	return &Pusher{api: api, chatID: chatID}, nil
}

// BotName returns the authorized bot's username.
func (p *Pusher) BotName() string {
	return p.api.Self.UserName
}

// Push sends n as a plain text message.
func (p *Pusher) Push(ctx context.Context, n notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(p.chatID, formatAlert(n))
	msg.DisableWebPagePreview = true
	if _, err := p.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}
	return nil
}

func formatAlert(n notification.Notification) string {
	return fmt.Sprintf("⚠️ %s\n\n%s\n\nrecipient: %s", n.Title, n.Message, n.UserID)
}
