package export

import (
	"fmt"
	"strings"

	"kahwadash/internal/models"

	"github.com/xuri/excelize/v2"
)

const ordersSheetName = "Orders"

// OrdersWorkbook builds an Excel workbook with one row per order. The caller
// owns the file and must Close it.
func OrdersWorkbook(orders []models.Order) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(ordersSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Order", "Created At", "Status", "Payment", "Items", "Total"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(ordersSheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(ordersSheetName, "A1", lastHeader, headerStyle)

	for i, order := range orders {
		row := i + 2
		setCell(f, 1, row, order.ShortID())
		setCell(f, 2, row, order.CreatedAt.Format("2006-01-02 15:04:05"))
		setCell(f, 3, row, order.Status)
		setCell(f, 4, row, order.PaymentMethod)
		setCell(f, 5, row, itemsSummary(order.Items))
		setCell(f, 6, row, order.Total.StringFixed(2))
	}

	_ = f.SetColWidth(ordersSheetName, "A", "A", 12)
	_ = f.SetColWidth(ordersSheetName, "B", "B", 22)
	_ = f.SetColWidth(ordersSheetName, "E", "E", 40)

	_ = f.DeleteSheet("Sheet1")

	return f, nil
}

func setCell(f *excelize.File, col, row int, value any) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(ordersSheetName, cell, value)
}

func itemsSummary(items []models.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.MenuItem.Name))
	}
	return strings.Join(parts, ", ")
}
