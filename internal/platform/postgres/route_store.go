package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/platform/logger"
	"github.com/openride/carpool-api/internal/store"
)

// routeColumns is the canonical select list for route queries. Date and time
// are rendered as text so the wire format stays stable regardless of session
// settings.
const routeColumns = `
	id, driver_id, to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI'),
	start_location, destination, car_model, total_seats, available_seats,
	description, created_at
`

// PostgresRouteStore implements the store.RouteStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRouteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRouteStore creates a new PostgreSQL implementation of the
// RouteStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresRouteStore(db store.DBTX, logger *slog.Logger) *PostgresRouteStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRouteStore{
		db:     db,
		logger: logger.With(slog.String("component", "route_store")),
	}
}

// Ensure PostgresRouteStore implements store.RouteStore interface
var _ store.RouteStore = (*PostgresRouteStore)(nil)

// Create implements store.RouteStore.Create
func (s *PostgresRouteStore) Create(ctx context.Context, route *domain.Route) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := route.Validate(); err != nil {
		log.Warn("route validation failed during create",
			slog.String("error", err.Error()),
			slog.String("route_id", route.ID.String()))
		return err
	}

	query := `
		INSERT INTO routes (id, driver_id, date, time, start_location, destination,
			car_model, total_seats, available_seats, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		route.ID,
		route.DriverID,
		route.Date,
		route.Time,
		route.StartLocation,
		route.Destination,
		route.CarModel,
		route.TotalSeats,
		route.AvailableSeats,
		route.Description,
		route.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create route",
			slog.String("error", err.Error()),
			slog.String("route_id", route.ID.String()),
			slog.String("driver_id", route.DriverID.String()))
		return MapError(err)
	}

	log.Info("route created successfully",
		slog.String("route_id", route.ID.String()),
		slog.String("driver_id", route.DriverID.String()),
		slog.Int("total_seats", route.TotalSeats))
	return nil
}

// GetByID implements store.RouteStore.GetByID
// Returns store.ErrRouteNotFound if the route does not exist.
func (s *PostgresRouteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`
	return s.scanRoute(ctx, query, id)
}

// GetForUpdate implements store.RouteStore.GetForUpdate
// It locks the route row for the remainder of the enclosing transaction,
// serializing all seat mutations on this route. Concurrent callers block
// here until the holder commits or rolls back, then observe the committed
// seat count. This is what keeps the counter from going negative under
// racing reservations.
func (s *PostgresRouteStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1 FOR UPDATE`
	return s.scanRoute(ctx, query, id)
}

// scanRoute runs a single-row route query and maps the result.
func (s *PostgresRouteStore) scanRoute(ctx context.Context, query string, id uuid.UUID) (*domain.Route, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var route domain.Route
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&route.ID,
		&route.DriverID,
		&route.Date,
		&route.Time,
		&route.StartLocation,
		&route.Destination,
		&route.CarModel,
		&route.TotalSeats,
		&route.AvailableSeats,
		&route.Description,
		&route.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRouteNotFound
		}
		log.Error("failed to get route",
			slog.String("error", err.Error()),
			slog.String("route_id", id.String()))
		return nil, MapError(err)
	}

	return &route, nil
}

// Update implements store.RouteStore.Update
// Returns store.ErrRouteNotFound if the route does not exist.
func (s *PostgresRouteStore) Update(ctx context.Context, route *domain.Route) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := route.Validate(); err != nil {
		log.Warn("route validation failed during update",
			slog.String("error", err.Error()),
			slog.String("route_id", route.ID.String()))
		return err
	}

	query := `
		UPDATE routes
		SET date = $1, time = $2, start_location = $3, destination = $4,
			car_model = $5, total_seats = $6, available_seats = $7, description = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		route.Date,
		route.Time,
		route.StartLocation,
		route.Destination,
		route.CarModel,
		route.TotalSeats,
		route.AvailableSeats,
		route.Description,
		route.ID,
	)

	if err != nil {
		log.Error("failed to update route",
			slog.String("error", err.Error()),
			slog.String("route_id", route.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrRouteNotFound); err != nil {
		return err
	}

	log.Info("route updated successfully",
		slog.String("route_id", route.ID.String()),
		slog.Int("total_seats", route.TotalSeats),
		slog.Int("available_seats", route.AvailableSeats))
	return nil
}

// UpdateAvailableSeats implements store.RouteStore.UpdateAvailableSeats
// Returns store.ErrRouteNotFound if the route does not exist.
func (s *PostgresRouteStore) UpdateAvailableSeats(ctx context.Context, id uuid.UUID, availableSeats int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE routes SET available_seats = $1 WHERE id = $2`
	result, err := s.db.ExecContext(ctx, query, availableSeats, id)
	if err != nil {
		log.Error("failed to update available seats",
			slog.String("error", err.Error()),
			slog.String("route_id", id.String()),
			slog.Int("available_seats", availableSeats))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrRouteNotFound)
}

// Delete implements store.RouteStore.Delete
// Returns store.ErrRouteNotFound if the route does not exist.
func (s *PostgresRouteStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete route",
			slog.String("error", err.Error()),
			slog.String("route_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrRouteNotFound); err != nil {
		return err
	}

	log.Info("route deleted successfully",
		slog.String("route_id", id.String()))
	return nil
}

// List implements store.RouteStore.List
func (s *PostgresRouteStore) List(ctx context.Context) ([]*domain.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes ORDER BY created_at DESC`
	return s.scanRoutes(ctx, query)
}

// ListByDriver implements store.RouteStore.ListByDriver
func (s *PostgresRouteStore) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*domain.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE driver_id = $1 ORDER BY created_at DESC`
	return s.scanRoutes(ctx, query, driverID)
}

// ListByPassenger implements store.RouteStore.ListByPassenger
func (s *PostgresRouteStore) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*domain.Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes
		WHERE id IN (SELECT route_id FROM bookings WHERE passenger_id = $1)
		ORDER BY created_at DESC
	`
	return s.scanRoutes(ctx, query, passengerID)
}

// scanRoutes runs a multi-row route query and maps the results.
func (s *PostgresRouteStore) scanRoutes(ctx context.Context, query string, args ...any) ([]*domain.Route, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query routes",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	routes := []*domain.Route{}
	for rows.Next() {
		var route domain.Route
		err := rows.Scan(
			&route.ID,
			&route.DriverID,
			&route.Date,
			&route.Time,
			&route.StartLocation,
			&route.Destination,
			&route.CarModel,
			&route.TotalSeats,
			&route.AvailableSeats,
			&route.Description,
			&route.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan route row",
				slog.String("error", err.Error()))
			return nil, err
		}
		routes = append(routes, &route)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return routes, nil
}

// WithTx implements store.RouteStore.WithTx
func (s *PostgresRouteStore) WithTx(tx *sql.Tx) store.RouteStore {
	return &PostgresRouteStore{
		db:     tx,
		logger: s.logger,
	}
}
