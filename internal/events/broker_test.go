package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event[Payload]) Event[Payload] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event[Payload]{}
	}
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all := bus.Subscribe(ctx)
	carts := bus.Subscribe(ctx, FilterByType[Payload](CartChanged))

	bus.Publish(SessionCreated, Payload{}, WithSessionID("s1"))
	bus.Publish(CartChanged, Payload{ProductID: "p1", State: "added", Count: 1})

	first := receive(t, all)
	assert.Equal(t, SessionCreated, first.Type)
	assert.Equal(t, "s1", first.SessionID)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, CartChanged, receive(t, all).Type)

	ev := receive(t, carts)
	assert.Equal(t, "p1", ev.Payload.ProductID)
	assert.Equal(t, 1, ev.Payload.Count)
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	ch := bus.Subscribe(ctx)
	require.Equal(t, 1, bus.SubscriberCount())

	cancel()
	assert.Eventually(t, func() bool { return bus.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestHistoryAndShutdown(t *testing.T) {
	bus := NewBrokerWithOptions[Payload](1, 2)
	bus.Publish(ChatMessageSent, Payload{Message: "a"}, WithSessionID("s1"))
	bus.Publish(ChatMessageSent, Payload{Message: "b"}, WithSessionID("s2"))
	bus.Publish(ChatMessageSent, Payload{Message: "c"}, WithSessionID("s1"))

	history := bus.History()
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0].Payload.Message)
	assert.Len(t, bus.History(FilterBySessionID[Payload]("s1")), 1)

	ch := bus.Subscribe(context.Background())
	bus.Shutdown()
	_, ok := <-ch
	assert.False(t, ok)

	bus.Publish(ChatMessageSent, Payload{})
	assert.Len(t, bus.History(), 2)
	bus.Shutdown()
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *Bus
	bus.Publish(CartChanged, Payload{})
	assert.Nil(t, bus.History())
	bus.Shutdown()
}
