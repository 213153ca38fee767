package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/openride/carpool-api/internal/config"
	"github.com/openride/carpool-api/internal/events"
	"github.com/openride/carpool-api/internal/platform/postgres"
	"github.com/openride/carpool-api/internal/service"
	"github.com/openride/carpool-api/internal/service/auth"
	"github.com/openride/carpool-api/internal/store"
)

// bookingEventLogger is an event handler that writes every committed seat
// change to the structured log. It is the default subscriber; notification
// or analytics handlers register the same way.
type bookingEventLogger struct {
	logger *slog.Logger
}

// HandleEvent implements events.EventHandler.
func (h *bookingEventLogger) HandleEvent(ctx context.Context, event *events.BookingEvent) error {
	h.logger.Info("booking event",
		"event_id", event.ID,
		"event_type", event.Type,
		"route_id", event.RouteID,
		"passenger_id", event.PassengerID,
		"seats_remaining", event.SeatsRemaining)
	return nil
}

// application holds the wired dependency graph of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore    store.UserStore
	routeStore   store.RouteStore
	bookingStore store.BookingStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	routeService   *service.RouteService
	bookingService *service.BookingService
}

// newApplication wires stores, services and the event pipeline around the
// given database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	routeStore := postgres.NewPostgresRouteStore(db, logger)
	bookingStore := postgres.NewPostgresBookingStore(db, logger)

	txRunner := store.NewTxRunner(db)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	eventEmitter := events.NewInMemoryEventEmitter(logger)
	eventEmitter.RegisterHandler(&bookingEventLogger{
		logger: logger.With(slog.String("component", "booking_event_logger")),
	})

	routeService := service.NewRouteService(txRunner, userStore, routeStore, bookingStore, logger)
	bookingService := service.NewBookingService(
		txRunner,
		userStore,
		routeStore,
		bookingStore,
		eventEmitter,
		logger,
	)

	return &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		userStore:        userStore,
		routeStore:       routeStore,
		bookingStore:     bookingStore,
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		routeService:     routeService,
		bookingService:   bookingService,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
}
