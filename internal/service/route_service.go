package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/platform/logger"
	"github.com/openride/carpool-api/internal/store"
)

// RouteDetails is the full read model for a route: the route itself, its
// driver, and the passengers currently booked on it. The passenger roster is
// recomputed from bookings on every load.
type RouteDetails struct {
	Route      *domain.Route
	Driver     *domain.User
	Passengers []*domain.User
}

// CreateRouteInput carries the client-supplied fields for publishing a
// route. The available seat counter is never client-supplied; it starts at
// TotalSeats.
type CreateRouteInput struct {
	Date          string
	Time          string
	StartLocation string
	Destination   string
	CarModel      string
	TotalSeats    int
	Description   string
}

// UpdateRouteInput carries the mutable route fields for a partial update.
// Nil pointers leave the corresponding field unchanged.
type UpdateRouteInput struct {
	Date          *string
	Time          *string
	StartLocation *string
	Destination   *string
	CarModel      *string
	TotalSeats    *int
	Description   *string
}

// RouteService manages the route lifecycle: publishing, reading, updating
// and deleting routes, with ownership and capacity rules enforced.
type RouteService struct {
	txRunner     store.TxRunner
	userStore    store.UserStore
	routeStore   store.RouteStore
	bookingStore store.BookingStore
	logger       *slog.Logger
}

// NewRouteService creates a new RouteService with the given dependencies.
func NewRouteService(
	txRunner store.TxRunner,
	userStore store.UserStore,
	routeStore store.RouteStore,
	bookingStore store.BookingStore,
	logger *slog.Logger,
) *RouteService {
	if txRunner == nil {
		panic("txRunner cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if routeStore == nil {
		panic("routeStore cannot be nil")
	}
	if bookingStore == nil {
		panic("bookingStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RouteService{
		txRunner:     txRunner,
		userStore:    userStore,
		routeStore:   routeStore,
		bookingStore: bookingStore,
		logger:       logger.With(slog.String("component", "route_service")),
	}
}

// CreateRoute publishes a new route owned by the caller. The caller must
// hold the driver role.
func (s *RouteService) CreateRoute(
	ctx context.Context,
	driverID uuid.UUID,
	input CreateRouteInput,
) (*RouteDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	driver, err := s.userStore.GetByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get caller: %w", err)
	}

	if err := RequireDriver(driver); err != nil {
		log.Warn("route creation denied",
			slog.String("user_id", driverID.String()),
			slog.String("role", string(driver.Role)))
		return nil, err
	}

	route, err := domain.NewRoute(
		driverID,
		input.Date,
		input.Time,
		input.StartLocation,
		input.Destination,
		input.CarModel,
		input.TotalSeats,
		input.Description,
	)
	if err != nil {
		return nil, err
	}

	if err := s.routeStore.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	log.Info("route published",
		slog.String("route_id", route.ID.String()),
		slog.String("driver_id", driverID.String()))

	return &RouteDetails{
		Route:      route,
		Driver:     driver,
		Passengers: []*domain.User{},
	}, nil
}

// GetRoute loads the full details of a single route.
func (s *RouteService) GetRoute(ctx context.Context, routeID uuid.UUID) (*RouteDetails, error) {
	route, err := s.routeStore.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, route, s.userStore, s.bookingStore)
}

// ListRoutes loads the full details of every published route, newest first.
func (s *RouteService) ListRoutes(ctx context.Context) ([]*RouteDetails, error) {
	routes, err := s.routeStore.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.loadDetailsAll(ctx, routes)
}

// ListDriverRoutes loads the routes published by the caller. No role gate:
// a passenger simply owns no routes and gets an empty list.
func (s *RouteService) ListDriverRoutes(ctx context.Context, driverID uuid.UUID) ([]*RouteDetails, error) {
	routes, err := s.routeStore.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return s.loadDetailsAll(ctx, routes)
}

// ListPassengerRoutes loads the routes the caller holds bookings on. No
// role gate: a driver holds no bookings and gets an empty list.
func (s *RouteService) ListPassengerRoutes(ctx context.Context, passengerID uuid.UUID) ([]*RouteDetails, error) {
	routes, err := s.routeStore.ListByPassenger(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	return s.loadDetailsAll(ctx, routes)
}

// UpdateRoute applies a partial update to a route owned by the caller.
//
// Shrinking the seat capacity is only allowed down to the number of seats
// already booked; the available counter is then rederived as total minus
// booked so it stays consistent with the bookings table. The route row is
// locked for the duration so no reservation can slip between the count and
// the write.
func (s *RouteService) UpdateRoute(
	ctx context.Context,
	callerID, routeID uuid.UUID,
	input UpdateRouteInput,
) (*RouteDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	caller, err := s.userStore.GetByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get caller: %w", err)
	}

	var updated *domain.Route
	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		routes := s.routeStore.WithTx(tx)
		bookings := s.bookingStore.WithTx(tx)

		route, err := routes.GetForUpdate(ctx, routeID)
		if err != nil {
			return err
		}

		if err := RequireRouteOwner(caller, route); err != nil {
			return err
		}

		if input.Date != nil {
			route.Date = *input.Date
		}
		if input.Time != nil {
			route.Time = *input.Time
		}
		if input.StartLocation != nil {
			route.StartLocation = *input.StartLocation
		}
		if input.Destination != nil {
			route.Destination = *input.Destination
		}
		if input.CarModel != nil {
			route.CarModel = *input.CarModel
		}
		if input.Description != nil {
			route.Description = *input.Description
		}

		if input.TotalSeats != nil {
			booked, err := bookings.CountByRoute(ctx, routeID)
			if err != nil {
				return fmt.Errorf("failed to count bookings: %w", err)
			}
			if *input.TotalSeats < booked {
				return fmt.Errorf(
					"%w: %d seats requested, %d already booked",
					ErrInsufficientCapacity, *input.TotalSeats, booked,
				)
			}
			route.TotalSeats = *input.TotalSeats
			route.AvailableSeats = *input.TotalSeats - booked
		}

		if err := routes.Update(ctx, route); err != nil {
			return err
		}

		updated = route
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("route updated",
		slog.String("route_id", routeID.String()),
		slog.Int("total_seats", updated.TotalSeats),
		slog.Int("available_seats", updated.AvailableSeats))

	return s.loadDetails(ctx, updated, s.userStore, s.bookingStore)
}

// DeleteRoute removes a route owned by the caller. A route carrying
// bookings is refused; passengers must cancel first.
func (s *RouteService) DeleteRoute(ctx context.Context, callerID, routeID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	caller, err := s.userStore.GetByID(ctx, callerID)
	if err != nil {
		return fmt.Errorf("failed to get caller: %w", err)
	}

	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		routes := s.routeStore.WithTx(tx)
		bookings := s.bookingStore.WithTx(tx)

		route, err := routes.GetForUpdate(ctx, routeID)
		if err != nil {
			return err
		}

		if err := RequireRouteOwner(caller, route); err != nil {
			return err
		}

		booked, err := bookings.CountByRoute(ctx, routeID)
		if err != nil {
			return fmt.Errorf("failed to count bookings: %w", err)
		}
		if booked > 0 {
			return fmt.Errorf("%w: %d bookings held", ErrRouteHasBookings, booked)
		}

		return routes.Delete(ctx, routeID)
	})
	if err != nil {
		return err
	}

	log.Info("route deleted",
		slog.String("route_id", routeID.String()),
		slog.String("driver_id", callerID.String()))
	return nil
}

// loadDetails composes the full read model for a route.
func (s *RouteService) loadDetails(
	ctx context.Context,
	route *domain.Route,
	users store.UserStore,
	bookings store.BookingStore,
) (*RouteDetails, error) {
	driver, err := users.GetByID(ctx, route.DriverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get route driver: %w", err)
	}

	passengers, err := bookings.ListPassengers(ctx, route.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list route passengers: %w", err)
	}

	return &RouteDetails{
		Route:      route,
		Driver:     driver,
		Passengers: passengers,
	}, nil
}

func (s *RouteService) loadDetailsAll(ctx context.Context, routes []*domain.Route) ([]*RouteDetails, error) {
	details := make([]*RouteDetails, 0, len(routes))
	for _, route := range routes {
		d, err := s.loadDetails(ctx, route, s.userStore, s.bookingStore)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}
