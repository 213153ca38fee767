package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/openride/carpool-api/internal/domain"
)

// RouteStore defines the interface for route data persistence.
type RouteStore interface {
	// Create saves a new route to the store.
	// Returns validation errors from the domain Route if data is invalid.
	Create(ctx context.Context, route *domain.Route) error

	// GetByID retrieves a route by its unique ID.
	// Returns ErrRouteNotFound if the route does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Route, error)

	// GetForUpdate retrieves a route and acquires an exclusive lock on its
	// row using SELECT FOR UPDATE. It must be called within a transaction;
	// the lock is held until the transaction commits or rolls back,
	// serializing concurrent reservations and cancellations on the route.
	// Returns ErrRouteNotFound if the route does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Route, error)

	// Update persists the route's mutable fields (schedule, locations, car
	// model, seat counts, description).
	// Returns ErrRouteNotFound if the route does not exist.
	Update(ctx context.Context, route *domain.Route) error

	// UpdateAvailableSeats sets the available seat counter for a route.
	// Only the booking engine calls this, and only under the route lock.
	// Returns ErrRouteNotFound if the route does not exist.
	UpdateAvailableSeats(ctx context.Context, id uuid.UUID, availableSeats int) error

	// Delete removes a route from the store by its ID.
	// Returns ErrRouteNotFound if the route does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves all routes, newest first.
	List(ctx context.Context) ([]*domain.Route, error)

	// ListByDriver retrieves all routes published by the given driver,
	// newest first.
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*domain.Route, error)

	// ListByPassenger retrieves all routes on which the given passenger
	// holds a booking, newest first.
	ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*domain.Route, error)

	// WithTx returns a new RouteStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) RouteStore
}
