package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Booking event types
const (
	// EventSeatReserved fires after a seat reservation commits.
	EventSeatReserved = "seat.reserved"

	// EventSeatReleased fires after a booking cancellation commits.
	EventSeatReleased = "seat.released"
)

// BookingEvent describes a committed change to a route's seat ledger.
// Events are emitted only after the enclosing transaction commits, so a
// handler never observes a reservation that was rolled back.
type BookingEvent struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	RouteID        uuid.UUID `json:"route_id"`
	PassengerID    uuid.UUID `json:"passenger_id"`
	SeatsRemaining int       `json:"seats_remaining"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewBookingEvent creates a booking event stamped with a fresh ID and the
// current time.
func NewBookingEvent(eventType string, routeID, passengerID uuid.UUID, seatsRemaining int) *BookingEvent {
	return &BookingEvent{
		ID:             uuid.New(),
		Type:           eventType,
		RouteID:        routeID,
		PassengerID:    passengerID,
		SeatsRemaining: seatsRemaining,
		OccurredAt:     time.Now().UTC(),
	}
}

// EventHandler processes booking events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *BookingEvent) error
}

// EventEmitter dispatches booking events to registered handlers.
type EventEmitter interface {
	// EmitEvent delivers the event to all registered handlers.
	EmitEvent(ctx context.Context, event *BookingEvent) error

	// RegisterHandler adds a handler for future events.
	RegisterHandler(handler EventHandler)
}
