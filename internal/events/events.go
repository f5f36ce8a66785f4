package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	EventOrderStatusChanged = "order_status_changed"
)

// OrderStatusPayload describes the minimal order snapshot for event consumers.
type OrderStatusPayload struct {
	OrderShortID string    `json:"order_short_id"`
	Status       string    `json:"status"`
	ChangedAt    time.Time `json:"changed_at"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// Publisher adapts the bus to the notifier contract so the dashboard stays
// decoupled from whoever consumes status changes.
type Publisher struct {
	bus *EventBus
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) OrderStatusChanged(_ context.Context, shortID, status string) error {
	return p.bus.PublishJSON(EventOrderStatusChanged, OrderStatusPayload{
		OrderShortID: shortID,
		Status:       status,
		ChangedAt:    time.Now(),
	})
}

// DecodeOrderStatus unpacks a status-change event payload.
func DecodeOrderStatus(event *Event) (OrderStatusPayload, error) {
	var payload OrderStatusPayload
	err := json.Unmarshal(event.Payload, &payload)
	return payload, err
}
