package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kahwadash/internal/metrics"
	"kahwadash/internal/models"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when the remote service reports 404 for a single
// order lookup.
var ErrNotFound = errors.New("order not found")

// Client talks to the remote order service over plain HTTP+JSON. No auth
// headers are attached; the remote service performs no authorization check.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "orderapi").Logger()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     base,
	}
}

func (c *Client) GetMenu(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := c.getJSON(ctx, "/api/menu", &items)
	metrics.IncUpstream("get_menu", err)
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}
	return items, nil
}

func (c *Client) GetOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := c.getJSON(ctx, "/api/orders", &orders)
	metrics.IncUpstream("get_orders", err)
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := c.getJSON(ctx, "/api/orders/"+url.PathEscape(id), &order)
	metrics.IncUpstream("get_order", err)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return &order, nil
}

func (c *Client) UpdateStock(ctx context.Context, itemID string, stock int) error {
	body := map[string]int{"stock": stock}
	err := c.putJSON(ctx, "/api/menu/"+url.PathEscape(itemID), body)
	metrics.IncUpstream("update_stock", err)
	if err != nil {
		return fmt.Errorf("update stock for %s: %w", itemID, err)
	}
	return nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	body := map[string]string{"status": status}
	err := c.putJSON(ctx, "/api/orders/"+url.PathEscape(orderID), body)
	metrics.IncUpstream("update_order_status", err)
	if err != nil {
		return fmt.Errorf("update status for %s: %w", orderID, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) putJSON(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("upstream write")

	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("upstream status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
