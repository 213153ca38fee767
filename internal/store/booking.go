package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/openride/carpool-api/internal/domain"
)

// BookingStore defines the interface for booking data persistence.
type BookingStore interface {
	// Create saves a new booking to the store.
	// Returns ErrBookingExists if a booking for the same (route, passenger)
	// pair already exists.
	Create(ctx context.Context, booking *domain.Booking) error

	// Delete removes the booking for the given (route, passenger) pair.
	// Returns ErrBookingNotFound if no such booking exists.
	Delete(ctx context.Context, routeID, passengerID uuid.UUID) error

	// Exists reports whether a booking for the given (route, passenger)
	// pair exists.
	Exists(ctx context.Context, routeID, passengerID uuid.UUID) (bool, error)

	// CountByRoute returns the number of bookings for the given route.
	CountByRoute(ctx context.Context, routeID uuid.UUID) (int, error)

	// ListPassengers returns the public view of every passenger holding a
	// booking on the route, in booking order. The roster is recomputed on
	// every read; it is never cached.
	ListPassengers(ctx context.Context, routeID uuid.UUID) ([]*domain.User, error)

	// WithTx returns a new BookingStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) BookingStore
}
