package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/providers"
)

func receive(t *testing.T, ch <-chan *entities.QueueEvent) (*entities.QueueEvent, bool) {
	t.Helper()
	select {
	case event, ok := <-ch:
		return event, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting on subscriber channel")
		return nil, false
	}
}

func TestMemoryEventBus_FansOut(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx := context.Background()
	sub1, err := bus.Subscribe(ctx, providers.EventChannelQueueUpdates)
	require.NoError(t, err)
	sub2, err := bus.Subscribe(ctx, providers.EventChannelQueueUpdates)
	require.NoError(t, err)
	other, err := bus.Subscribe(ctx, "other")
	require.NoError(t, err)

	event := entities.NewQueueEvent(&entities.Appointment{ID: "a1"}, entities.QueueEventTypeSubmitted)
	require.NoError(t, bus.Publish(ctx, providers.EventChannelQueueUpdates, event))

	got1, _ := receive(t, sub1)
	got2, _ := receive(t, sub2)
	assert.Equal(t, event.ID, got1.ID)
	assert.Equal(t, event.ID, got2.ID)
	assert.Len(t, other, 0)
}

func TestMemoryEventBus_CancelClosesSubscriber(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := bus.Subscribe(ctx, providers.EventChannelQueueUpdates)
	require.NoError(t, err)

	cancel()

	_, ok := receive(t, sub)
	assert.False(t, ok)
}

func TestMemoryEventBus_Close(t *testing.T) {
	bus := NewMemoryEventBus()
	sub, err := bus.Subscribe(context.Background(), providers.EventChannelQueueUpdates)
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	_, ok := receive(t, sub)
	assert.False(t, ok)

	_, err = bus.Subscribe(context.Background(), providers.EventChannelQueueUpdates)
	assert.ErrorIs(t, err, ErrEventBusClosed)
	assert.ErrorIs(t, bus.Publish(context.Background(), providers.EventChannelQueueUpdates, &entities.QueueEvent{}), ErrEventBusClosed)
}
