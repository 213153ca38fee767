package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Booking validation errors
var (
	ErrEmptyBookingID   = errors.New("booking ID cannot be empty")
	ErrEmptyBookingRoute = errors.New("booking route ID cannot be empty")
	ErrEmptyPassengerID = errors.New("booking passenger ID cannot be empty")
)

// Booking reserves one seat on a Route for one passenger. At most one
// booking exists per (route, passenger) pair; the store enforces this with
// a uniqueness constraint and the booking engine checks it under the route
// lock before creating a new one.
type Booking struct {
	ID          uuid.UUID `json:"id"`
	RouteID     uuid.UUID `json:"route_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewBooking creates a booking linking the passenger to the route.
func NewBooking(routeID, passengerID uuid.UUID) (*Booking, error) {
	booking := &Booking{
		ID:          uuid.New(),
		RouteID:     routeID,
		PassengerID: passengerID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := booking.Validate(); err != nil {
		return nil, err
	}

	return booking, nil
}

// Validate checks if the Booking has valid data.
func (b *Booking) Validate() error {
	if b.ID == uuid.Nil {
		return ErrEmptyBookingID
	}

	if b.RouteID == uuid.Nil {
		return ErrEmptyBookingRoute
	}

	if b.PassengerID == uuid.Nil {
		return ErrEmptyPassengerID
	}

	return nil
}
