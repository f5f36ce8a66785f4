package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"kahwadash/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const ordersRange = "Orders!A1:G"

// SheetsService pushes the current order list to a Google spreadsheet so the
// owner can slice it outside the dashboard. Service-account credentials only.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewSheetsService(credentialsFile, spreadsheetID string) (*SheetsService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
	}, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, "Orders!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// UpdateOrdersSheet fully rewrites the Orders sheet with the given orders.
func (s *SheetsService) UpdateOrdersSheet(ctx context.Context, orders []models.Order) error {
	values := OrdersSheetValues(orders)

	rangeData := fmt.Sprintf("Orders!A1:G%d", len(values))
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, ordersRange, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("clear orders sheet: %w", err)
	}

	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()

	return err
}

// OrdersSheetValues renders order rows for the spreadsheet, header first.
func OrdersSheetValues(orders []models.Order) [][]interface{} {
	values := [][]interface{}{
		{"Order", "Created At", "Status", "Payment", "Items", "Quantity", "Total"},
	}

	for _, order := range orders {
		var names []string
		qty := 0
		for _, item := range order.Items {
			names = append(names, fmt.Sprintf("%dx %s", item.Quantity, item.MenuItem.Name))
			qty += item.Quantity
		}

		values = append(values, []interface{}{
			order.ShortID(),
			order.CreatedAt.Format("2006-01-02 15:04:05"),
			order.Status,
			order.PaymentMethod,
			strings.Join(names, ", "),
			qty,
			order.Total.StringFixed(2),
		})
	}

	return values
}
