package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	received []*BookingEvent
	err      error
}

func (h *stubHandler) HandleEvent(ctx context.Context, event *BookingEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func TestInMemoryEventEmitter_EmitEvent(t *testing.T) {
	t.Parallel()

	newEvent := func() *BookingEvent {
		return NewBookingEvent(EventSeatReserved, uuid.New(), uuid.New(), 2)
	}

	t.Run("delivers to every registered handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		first := &stubHandler{}
		second := &stubHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := newEvent()
		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		require.Len(t, first.received, 1)
		require.Len(t, second.received, 1)
		assert.Equal(t, event.ID, first.received[0].ID)
		assert.Equal(t, EventSeatReserved, first.received[0].Type)
		assert.Equal(t, 2, first.received[0].SeatsRemaining)
	})

	t.Run("a failing handler does not block the rest", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		boom := errors.New("handler exploded")
		failing := &stubHandler{err: boom}
		healthy := &stubHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(healthy)

		err := emitter.EmitEvent(context.Background(), newEvent())
		assert.ErrorIs(t, err, boom)
		assert.Len(t, healthy.received, 1)
	})

	t.Run("no handlers is a no-op", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent()))
	})
}

func TestNewBookingEvent(t *testing.T) {
	t.Parallel()

	routeID, passengerID := uuid.New(), uuid.New()
	event := NewBookingEvent(EventSeatReleased, routeID, passengerID, 4)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, EventSeatReleased, event.Type)
	assert.Equal(t, routeID, event.RouteID)
	assert.Equal(t, passengerID, event.PassengerID)
	assert.Equal(t, 4, event.SeatsRemaining)
	assert.False(t, event.OccurredAt.IsZero())
}
