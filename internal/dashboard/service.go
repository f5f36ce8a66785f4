package dashboard

import (
	"context"
	"sync"

	"kahwadash/internal/domain"
	"kahwadash/internal/models"

	"github.com/rs/zerolog"
)

// User-visible failure messages. Every failure degrades to one of these; no
// retries and no distinction between network and HTTP-level errors.
const (
	msgLoadFailed         = "Failed to load data"
	msgStockUpdateFailed  = "Failed to update stock"
	msgStatusUpdateFailed = "Failed to update order status"
)

// Service holds the dashboard view state: the menu and order collections as
// last confirmed by the remote service. Mutations write remotely first and
// patch the local copy only after the remote confirms (optimistic after
// confirm, not optimistic UI). Same-entity races are last-write-wins; the
// remote service is the source of truth.
type Service struct {
	client   domain.OrderService
	notifier domain.Notifier
	logger   zerolog.Logger

	mu      sync.RWMutex
	menu    []models.MenuItem
	orders  []models.Order
	loading bool
	lastErr string
}

func NewService(client domain.OrderService, notifier domain.Notifier, logger *zerolog.Logger) *Service {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "dashboard").Logger()
	}

	return &Service{
		client:   client,
		notifier: notifier,
		logger:   base,
		loading:  true,
	}
}

// LoadAll fetches the menu and order lists concurrently and replaces the view
// state only when both succeed. On any failure the previous collections are
// left untouched and the error message is set. The loading flag clears either
// way.
func (s *Service) LoadAll(ctx context.Context) error {
	var (
		menu      []models.MenuItem
		orders    []models.Order
		menuErr   error
		ordersErr error
		wg        sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		menu, menuErr = s.client.GetMenu(ctx)
	}()
	go func() {
		defer wg.Done()
		orders, ordersErr = s.client.GetOrders(ctx)
	}()
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if menuErr != nil || ordersErr != nil {
		err := menuErr
		if err == nil {
			err = ordersErr
		}
		s.lastErr = msgLoadFailed
		s.logger.Error().AnErr("menu_err", menuErr).AnErr("orders_err", ordersErr).Msg("load dashboard data")
		return err
	}

	s.menu = menu
	s.orders = orders
	s.lastErr = ""
	s.logger.Info().Int("menu_items", len(menu)).Int("orders", len(orders)).Msg("dashboard data loaded")
	return nil
}

// UpdateStock writes the new stock count remotely, then mirrors it into the
// one matching local item. All other items and fields stay untouched. On
// failure local state is unchanged and the error message is set.
func (s *Service) UpdateStock(ctx context.Context, itemID string, newStock int) error {
	if err := s.client.UpdateStock(ctx, itemID, newStock); err != nil {
		s.setError(msgStockUpdateFailed)
		s.logger.Error().Err(err).Str("item_id", itemID).Msg("update stock")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.menu {
		if s.menu[i].ID == itemID {
			s.menu[i].Stock = newStock
			break
		}
	}
	s.lastErr = ""
	return nil
}

// UpdateOrderStatus writes the new status remotely, then mirrors it into the
// one matching local order. Status progression is not enforced here; the
// remote service owns the lifecycle.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, newStatus string) error {
	if err := s.client.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
		s.setError(msgStatusUpdateFailed)
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("update order status")
		return err
	}

	var shortID string
	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			s.orders[i].Status = newStatus
			shortID = s.orders[i].ShortID()
			break
		}
	}
	s.lastErr = ""
	s.mu.Unlock()

	if s.notifier != nil && shortID != "" {
		if err := s.notifier.OrderStatusChanged(ctx, shortID, newStatus); err != nil {
			s.logger.Warn().Err(err).Str("order_id", orderID).Msg("notify status change")
		}
	}
	return nil
}

// Snapshot returns copies of the view state for rendering.
func (s *Service) Snapshot() ([]models.MenuItem, []models.Order, bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	menu := make([]models.MenuItem, len(s.menu))
	copy(menu, s.menu)
	orders := make([]models.Order, len(s.orders))
	copy(orders, s.orders)

	return menu, orders, s.loading, s.lastErr
}

// Orders returns a copy of the current order collection.
func (s *Service) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]models.Order, len(s.orders))
	copy(orders, s.orders)
	return orders
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}
