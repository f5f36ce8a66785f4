package export

import (
	"testing"
	"time"

	"kahwadash/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersWorkbook(t *testing.T) {
	orders := []models.Order{
		{
			ID: "65f1c2d3e4a5b6c7d8e9f0a1",
			Items: []models.LineItem{
				{MenuItem: models.LineItemSnapshot{Name: "Tea", Price: decimal.RequireFromString("2.50")}, Quantity: 2},
				{MenuItem: models.LineItemSnapshot{Name: "Kabab", Price: decimal.RequireFromString("9.99")}, Quantity: 1},
			},
			Total:         decimal.RequireFromString("14.99"),
			Status:        models.StatusReady,
			PaymentMethod: models.PaymentCash,
			CreatedAt:     time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC),
		},
	}

	f, err := OrdersWorkbook(orders)
	require.NoError(t, err)
	defer f.Close()

	got := func(cell string) string {
		v, err := f.GetCellValue("Orders", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Order", got("A1"))
	assert.Equal(t, "e9f0a1", got("A2"))
	assert.Equal(t, "2025-03-14 12:30:00", got("B2"))
	assert.Equal(t, "ready", got("C2"))
	assert.Equal(t, "CASH", got("D2"))
	assert.Equal(t, "2x Tea, 1x Kabab", got("E2"))
	assert.Equal(t, "14.99", got("F2"))

	sheets := f.GetSheetList()
	assert.NotContains(t, sheets, "Sheet1")
}

func TestOrdersWorkbookEmpty(t *testing.T) {
	f, err := OrdersWorkbook(nil)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Orders", "A2")
	require.NoError(t, err)
	assert.Empty(t, v)
}
