package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a snapshot of a menu item at the time of ordering. The remote
// service embeds the snapshot so a later menu edit does not rewrite history.
type LineItem struct {
	MenuItem LineItemSnapshot `json:"menuItem"`
	Quantity int              `json:"quantity"`
}

type LineItemSnapshot struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Order struct {
	ID            string           `json:"_id"`
	Items         []LineItem       `json:"items"`
	Total         decimal.Decimal  `json:"total"`
	Status        string           `json:"status"`
	PaymentMethod string           `json:"paymentMethod"`
	CashAmount    *decimal.Decimal `json:"cashAmount,omitempty"`
	ChangeAmount  *decimal.Decimal `json:"changeAmount,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// ShortID returns the last 6 characters of the order id, the form printed on
// receipts and shown to staff.
func (o *Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}
