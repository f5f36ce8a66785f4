package domain

import (
	"context"

	"kahwadash/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// OrderService is the remote order service consumed over HTTP. It owns all
// durable menu and order state; this application never writes anywhere else.
type OrderService interface {
	GetMenu(ctx context.Context) ([]models.MenuItem, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateStock(ctx context.Context, itemID string, stock int) error
	UpdateOrderStatus(ctx context.Context, orderID string, status string) error
}

// SessionStore keeps the manager session secret between requests. It stands
// in for the browser-local storage of the reference behavior and is injected
// so tests can fake it.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, secret string) error
	Clear(ctx context.Context, sessionID string) error
}

// Notifier announces order lifecycle changes to staff channels. Best effort:
// callers ignore failures beyond logging.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, orderShortID, status string) error
}

// OrdersSheetWriter pushes the current order list to an external spreadsheet.
type OrdersSheetWriter interface {
	UpdateOrdersSheet(ctx context.Context, orders []models.Order) error
}

// TelegramSender is the subset of the bot API the notifier needs.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
