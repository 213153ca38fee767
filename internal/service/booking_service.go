package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/events"
	"github.com/openride/carpool-api/internal/platform/logger"
	"github.com/openride/carpool-api/internal/store"
)

// BookingService is the seat reservation engine. Every reservation and
// cancellation runs inside a single transaction that first locks the route
// row, so the available seat counter and the bookings table can never drift
// apart: at rest, available always equals total minus the number of
// bookings.
type BookingService struct {
	txRunner     store.TxRunner
	userStore    store.UserStore
	routeStore   store.RouteStore
	bookingStore store.BookingStore
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewBookingService creates a new BookingService with the given
// dependencies.
func NewBookingService(
	txRunner store.TxRunner,
	userStore store.UserStore,
	routeStore store.RouteStore,
	bookingStore store.BookingStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) *BookingService {
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
	if eventEmitter == nil {
		panic("eventEmitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BookingService{
		txRunner:     txRunner,
		userStore:    userStore,
		routeStore:   routeStore,
		bookingStore: bookingStore,
		eventEmitter: eventEmitter,
		logger:       logger.With(slog.String("component", "booking_service")),
	}
}

// Reserve books one seat on the route for the caller. The caller must hold
// the passenger role.
//
// The flow inside the transaction is lock, recheck, mutate: the route row
// is locked with SELECT FOR UPDATE, the seat count and duplicate-booking
// checks run against the locked row, and only then are the booking row and
// the decremented counter written. A concurrent Reserve on the same route
// blocks on the lock and rereads the committed counter, so the last seat
// can only be taken once.
//
// Returns ErrNoSeatsAvailable when the route is full and ErrAlreadyBooked
// when the caller already holds a booking on it. A full route wins over a
// duplicate booking: re-reserving a full route reports no seats.
//
// The returned view is composed inside the transaction, so it reflects
// exactly this operation's result rather than a later concurrent commit.
func (s *BookingService) Reserve(ctx context.Context, routeID, passengerID uuid.UUID) (*RouteDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	passenger, err := s.userStore.GetByID(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get caller: %w", err)
	}

	if err := RequirePassenger(passenger); err != nil {
		log.Warn("reservation denied",
			slog.String("user_id", passengerID.String()),
			slog.String("role", string(passenger.Role)))
		return nil, err
	}

	var reserved *RouteDetails
	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		routes := s.routeStore.WithTx(tx)
		bookings := s.bookingStore.WithTx(tx)

		route, err := routes.GetForUpdate(ctx, routeID)
		if err != nil {
			return err
		}

		if route.AvailableSeats <= 0 {
			return ErrNoSeatsAvailable
		}

		exists, err := bookings.Exists(ctx, routeID, passengerID)
		if err != nil {
			return fmt.Errorf("failed to check existing booking: %w", err)
		}
		if exists {
			return ErrAlreadyBooked
		}

		booking, err := domain.NewBooking(routeID, passengerID)
		if err != nil {
			return err
		}
		if err := bookings.Create(ctx, booking); err != nil {
			return err
		}

		route.AvailableSeats--
		if err := routes.UpdateAvailableSeats(ctx, routeID, route.AvailableSeats); err != nil {
			return err
		}

		reserved, err = s.describeRoute(ctx, tx, route)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("seat reserved",
		slog.String("route_id", routeID.String()),
		slog.String("passenger_id", passengerID.String()),
		slog.Int("seats_remaining", reserved.Route.AvailableSeats))

	// Emitted only after commit; a rolled-back reservation never produces
	// an event.
	event := events.NewBookingEvent(events.EventSeatReserved, routeID, passengerID, reserved.Route.AvailableSeats)
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit seat reserved event",
			slog.String("error", err.Error()),
			slog.String("route_id", routeID.String()))
	}

	return reserved, nil
}

// Cancel releases the caller's booking on the route. The caller must hold
// the passenger role and a booking on the route.
//
// The same lock-then-mutate discipline as Reserve applies: the route row is
// locked before the booking row is removed and the counter incremented, so
// a cancellation racing a reservation still leaves available equal to total
// minus bookings. The returned view is composed inside the transaction.
func (s *BookingService) Cancel(ctx context.Context, routeID, passengerID uuid.UUID) (*RouteDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	passenger, err := s.userStore.GetByID(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get caller: %w", err)
	}

	if err := RequirePassenger(passenger); err != nil {
		log.Warn("cancellation denied",
			slog.String("user_id", passengerID.String()),
			slog.String("role", string(passenger.Role)))
		return nil, err
	}

	var released *RouteDetails
	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		routes := s.routeStore.WithTx(tx)
		bookings := s.bookingStore.WithTx(tx)

		route, err := routes.GetForUpdate(ctx, routeID)
		if err != nil {
			return err
		}

		if err := bookings.Delete(ctx, routeID, passengerID); err != nil {
			return err
		}

		route.AvailableSeats++
		if err := routes.UpdateAvailableSeats(ctx, routeID, route.AvailableSeats); err != nil {
			return err
		}

		released, err = s.describeRoute(ctx, tx, route)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("seat released",
		slog.String("route_id", routeID.String()),
		slog.String("passenger_id", passengerID.String()),
		slog.Int("seats_remaining", released.Route.AvailableSeats))

	event := events.NewBookingEvent(events.EventSeatReleased, routeID, passengerID, released.Route.AvailableSeats)
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit seat released event",
			slog.String("error", err.Error()),
			slog.String("route_id", routeID.String()))
	}

	return released, nil
}

// describeRoute composes the route view from the stores bound to the same
// transaction that performed the mutation, so the driver and roster match
// the returned seat count.
func (s *BookingService) describeRoute(
	ctx context.Context,
	tx *sql.Tx,
	route *domain.Route,
) (*RouteDetails, error) {
	driver, err := s.userStore.WithTx(tx).GetByID(ctx, route.DriverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get route driver: %w", err)
	}

	passengers, err := s.bookingStore.WithTx(tx).ListPassengers(ctx, route.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list route passengers: %w", err)
	}

	return &RouteDetails{
		Route:      route,
		Driver:     driver,
		Passengers: passengers,
	}, nil
}
