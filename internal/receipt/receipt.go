package receipt

import (
	"time"

	"kahwadash/internal/config"
	"kahwadash/internal/models"

	"github.com/shopspring/decimal"
)

// missingAmount is rendered when a CASH order arrives without a cash or
// change amount. Upstream should always set both; rendering a dash keeps the
// gap visible instead of printing a bogus $0.00.
const missingAmount = "—"

const dateLayout = "1/2/2006, 3:04:05 PM"

type Line struct {
	Quantity int
	Name     string
	Extended string
}

// Receipt is the fully formatted view of one order, ready for a printable
// template. All money fields are preformatted strings; the order total is
// taken as-is from the remote service, never recomputed.
type Receipt struct {
	Brand         config.BrandingConfig
	OrderShortID  string
	Date          string
	PaymentMethod string
	Lines         []Line
	Subtotal      string
	IsCash        bool
	CashReceived  string
	Change        string
	Total         string
}

func Build(order *models.Order, brand config.BrandingConfig) Receipt {
	r := Receipt{
		Brand:         brand,
		OrderShortID:  order.ShortID(),
		Date:          order.CreatedAt.Local().Format(dateLayout),
		PaymentMethod: order.PaymentMethod,
		Subtotal:      money(order.Total),
		Total:         money(order.Total),
		IsCash:        order.PaymentMethod == models.PaymentCash,
	}

	for _, item := range order.Items {
		extended := item.MenuItem.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		r.Lines = append(r.Lines, Line{
			Quantity: item.Quantity,
			Name:     item.MenuItem.Name,
			Extended: money(extended),
		})
	}

	if r.IsCash {
		r.CashReceived = optionalMoney(order.CashAmount)
		r.Change = optionalMoney(order.ChangeAmount)
	}

	return r
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) string {
	if d == nil {
		return missingAmount
	}
	return money(*d)
}

// FormatTimestamp is used by list views that show order creation times.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(dateLayout)
}
