package export

import (
	"context"
	"fmt"
	"time"

	"kahwadash/internal/domain"
	"kahwadash/internal/models"

	"github.com/rs/zerolog"
)

// SheetsExporter pushes orders to the spreadsheet, retrying transient
// failures with backoff. The Sheets API throttles aggressively enough that a
// single attempt is not good enough in practice.
type SheetsExporter struct {
	writer domain.OrdersSheetWriter
	retry  RetryPolicy
	logger zerolog.Logger
}

func NewSheetsExporter(writer domain.OrdersSheetWriter, retry RetryPolicy, logger *zerolog.Logger) *SheetsExporter {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "sheets-export").Logger()
	}

	return &SheetsExporter{
		writer: writer,
		retry:  retry,
		logger: base,
	}
}

func (e *SheetsExporter) ExportOrders(ctx context.Context, orders []models.Order) error {
	var lastErr error
	for attempt := 1; attempt <= e.retry.MaxRetries; attempt++ {
		lastErr = e.writer.UpdateOrdersSheet(ctx, orders)
		if lastErr == nil {
			e.logger.Info().Int("orders", len(orders)).Int("attempt", attempt).Msg("orders exported to sheet")
			return nil
		}

		e.logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("sheet export failed")
		if attempt == e.retry.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.retry.NextDelay(attempt)):
		}
	}

	return fmt.Errorf("export orders after %d attempts: %w", e.retry.MaxRetries, lastErr)
}
