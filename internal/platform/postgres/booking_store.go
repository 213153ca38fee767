package postgres

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

// Unique constraint name from the bookings migration. One booking per
// passenger per route.
const bookingsRoutePassengerKey = "bookings_route_id_passenger_id_key"

// PostgresBookingStore implements the store.BookingStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBookingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBookingStore creates a new PostgreSQL implementation of the
// BookingStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresBookingStore(db store.DBTX, logger *slog.Logger) *PostgresBookingStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookingStore{
		db:     db,
		logger: logger.With(slog.String("component", "booking_store")),
	}
}

// Ensure PostgresBookingStore implements store.BookingStore interface
var _ store.BookingStore = (*PostgresBookingStore)(nil)

// Create implements store.BookingStore.Create
// Returns store.ErrBookingExists if the passenger already holds a booking
// on the route.
func (s *PostgresBookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := booking.Validate(); err != nil {
		log.Warn("booking validation failed during create",
			slog.String("error", err.Error()),
			slog.String("booking_id", booking.ID.String()))
		return err
	}

	query := `
		INSERT INTO bookings (id, route_id, passenger_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		booking.ID,
		booking.RouteID,
		booking.PassengerID,
		booking.CreatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err, bookingsRoutePassengerKey) {
			log.Debug("passenger already booked on route",
				slog.String("route_id", booking.RouteID.String()),
				slog.String("passenger_id", booking.PassengerID.String()))
			return fmt.Errorf("%w: %v", store.ErrBookingExists, err)
		}

		log.Error("failed to create booking",
			slog.String("error", err.Error()),
			slog.String("booking_id", booking.ID.String()),
			slog.String("route_id", booking.RouteID.String()))
		return MapError(err)
	}

	log.Info("booking created successfully",
		slog.String("booking_id", booking.ID.String()),
		slog.String("route_id", booking.RouteID.String()),
		slog.String("passenger_id", booking.PassengerID.String()))
	return nil
}

// Delete implements store.BookingStore.Delete
// Returns store.ErrBookingNotFound if the passenger has no booking on
// the route.
func (s *PostgresBookingStore) Delete(ctx context.Context, routeID, passengerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM bookings WHERE route_id = $1 AND passenger_id = $2`
	result, err := s.db.ExecContext(ctx, query, routeID, passengerID)
	if err != nil {
		log.Error("failed to delete booking",
			slog.String("error", err.Error()),
			slog.String("route_id", routeID.String()),
			slog.String("passenger_id", passengerID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrBookingNotFound); err != nil {
		return err
	}

	log.Info("booking deleted successfully",
		slog.String("route_id", routeID.String()),
		slog.String("passenger_id", passengerID.String()))
	return nil
}

// Exists implements store.BookingStore.Exists
func (s *PostgresBookingStore) Exists(ctx context.Context, routeID, passengerID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE route_id = $1 AND passenger_id = $2)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, routeID, passengerID).Scan(&exists); err != nil {
		log.Error("failed to check booking existence",
			slog.String("error", err.Error()),
			slog.String("route_id", routeID.String()),
			slog.String("passenger_id", passengerID.String()))
		return false, MapError(err)
	}

	return exists, nil
}

// CountByRoute implements store.BookingStore.CountByRoute
func (s *PostgresBookingStore) CountByRoute(ctx context.Context, routeID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE route_id = $1`, routeID).Scan(&count)
	if err != nil {
		log.Error("failed to count bookings",
			slog.String("error", err.Error()),
			slog.String("route_id", routeID.String()))
		return 0, MapError(err)
	}

	return count, nil
}

// ListPassengers implements store.BookingStore.ListPassengers
// Results are ordered by booking time, earliest first.
func (s *PostgresBookingStore) ListPassengers(ctx context.Context, routeID uuid.UUID) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT u.id, u.login_id, u.nickname, u.email, u.role, u.profile_image, u.created_at, u.updated_at
		FROM users u
		JOIN bookings b ON b.passenger_id = u.id
		WHERE b.route_id = $1
		ORDER BY b.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, routeID)
	if err != nil {
		log.Error("failed to query route passengers",
			slog.String("error", err.Error()),
			slog.String("route_id", routeID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	passengers := []*domain.User{}
	for rows.Next() {
		var user domain.User
		var role string
		err := rows.Scan(
			&user.ID,
			&user.LoginID,
			&user.Nickname,
			&user.Email,
			&role,
			&user.ProfileImage,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan passenger row",
				slog.String("error", err.Error()))
			return nil, err
		}
		user.Role = domain.Role(role)
		passengers = append(passengers, &user)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return passengers, nil
}

// WithTx implements store.BookingStore.WithTx
func (s *PostgresBookingStore) WithTx(tx *sql.Tx) store.BookingStore {
	return &PostgresBookingStore{
		db:     tx,
		logger: s.logger,
	}
}
