package notify

import (
	"context"
	"fmt"

	"kahwadash/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier posts order lifecycle updates to the managers chat.
// Optional feature: callers pass a nil Notifier when no bot is configured.
type TelegramNotifier struct {
	sender domain.TelegramSender
	chatID int64
	logger zerolog.Logger
}

func NewTelegramNotifier(sender domain.TelegramSender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "notify").Logger()
	}

	return &TelegramNotifier{
		sender: sender,
		chatID: chatID,
		logger: base,
	}
}

func (n *TelegramNotifier) OrderStatusChanged(ctx context.Context, orderShortID, status string) error {
	text := fmt.Sprintf("Order #%s is now %s", orderShortID, status)
	msg := tgbotapi.NewMessage(n.chatID, text)

	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("send status notification: %w", err)
	}

	n.logger.Debug().Str("order", orderShortID).Str("status", status).Msg("status notification sent")
	return nil
}
