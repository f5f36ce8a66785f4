package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()

	var got []OrderStatusPayload
	bus.Subscribe(EventOrderStatusChanged, func(event *Event) error {
		payload, err := DecodeOrderStatus(event)
		require.NoError(t, err)
		got = append(got, payload)
		return nil
	})

	err := bus.PublishJSON(EventOrderStatusChanged, OrderStatusPayload{
		OrderShortID: "e9f0a1",
		Status:       "ready",
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "e9f0a1", got[0].OrderShortID)
	assert.Equal(t, "ready", got[0].Status)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewEventBus()
	assert.NoError(t, bus.PublishJSON(EventOrderStatusChanged, OrderStatusPayload{}))
}

func TestNilBusPublishIsSafe(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventOrderStatusChanged, OrderStatusPayload{}))
}

func TestPublisherImplementsNotifierFlow(t *testing.T) {
	bus := NewEventBus()

	var statuses []string
	bus.Subscribe(EventOrderStatusChanged, func(event *Event) error {
		payload, err := DecodeOrderStatus(event)
		require.NoError(t, err)
		statuses = append(statuses, payload.Status)
		assert.False(t, payload.ChangedAt.IsZero())
		return nil
	})

	pub := NewPublisher(bus)
	require.NoError(t, pub.OrderStatusChanged(context.Background(), "abc123", "completed"))
	assert.Equal(t, []string{"completed"}, statuses)
}

func TestSubscribeMultipleHandlers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	handler := func(event *Event) error {
		calls++
		return nil
	}
	bus.Subscribe(EventOrderStatusChanged, handler)
	bus.Subscribe(EventOrderStatusChanged, handler)

	require.NoError(t, bus.PublishJSON(EventOrderStatusChanged, OrderStatusPayload{}))
	assert.Equal(t, 2, calls)
}
