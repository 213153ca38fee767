package service_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/events"
	"github.com/openride/carpool-api/internal/mocks"
	"github.com/openride/carpool-api/internal/service"
	"github.com/openride/carpool-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recordingHandler collects booking events for assertions.
type recordingHandler struct {
	mu     sync.Mutex
	events []*events.BookingEvent
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *events.BookingEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) recorded() []*events.BookingEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*events.BookingEvent(nil), h.events...)
}

type bookingFixture struct {
	mem       *mocks.MemStore
	svc       *service.BookingService
	handler   *recordingHandler
	driver    *domain.User
	route     *domain.Route
	passenger *domain.User
}

func newBookingFixture(t *testing.T, totalSeats int) *bookingFixture {
	t.Helper()

	mem := mocks.NewMemStore()
	logger := testLogger()

	emitter := events.NewInMemoryEventEmitter(logger)
	handler := &recordingHandler{}
	emitter.RegisterHandler(handler)

	svc := service.NewBookingService(
		mem.TxRunner(),
		mem.UserStore(),
		mem.RouteStore(),
		mem.BookingStore(),
		emitter,
		logger,
	)

	driver := newTestUser(t, mem, domain.RoleDriver, "driver-main")
	passenger := newTestUser(t, mem, domain.RolePassenger, "passenger-main")
	route := newTestRoute(t, mem, driver.ID, totalSeats)

	return &bookingFixture{
		mem:       mem,
		svc:       svc,
		handler:   handler,
		driver:    driver,
		route:     route,
		passenger: passenger,
	}
}

func newTestUser(t *testing.T, mem *mocks.MemStore, role domain.Role, loginID string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(loginID, "nick-"+loginID, loginID+"@example.com", role, "", "password123")
	require.NoError(t, err)
	require.NoError(t, mem.UserStore().Create(context.Background(), user))
	return user
}

func newTestRoute(t *testing.T, mem *mocks.MemStore, driverID uuid.UUID, totalSeats int) *domain.Route {
	t.Helper()

	route, err := domain.NewRoute(
		driverID,
		"2026-09-15", "08:30",
		"Campus North Gate", "Central Station",
		"Ioniq 5",
		totalSeats,
		"weekday commute",
	)
	require.NoError(t, err)
	require.NoError(t, mem.RouteStore().Create(context.Background(), route))
	return route
}

func TestBookingService_Reserve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reserves a seat and emits an event", func(t *testing.T) {
		f := newBookingFixture(t, 3)

		details, err := f.svc.Reserve(ctx, f.route.ID, f.passenger.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, details.Route.AvailableSeats)
		assert.Equal(t, f.driver.ID, details.Driver.ID)
		require.Len(t, details.Passengers, 1)
		assert.Equal(t, f.passenger.ID, details.Passengers[0].ID)

		exists, err := f.mem.BookingStore().Exists(ctx, f.route.ID, f.passenger.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		recorded := f.handler.recorded()
		require.Len(t, recorded, 1)
		assert.Equal(t, events.EventSeatReserved, recorded[0].Type)
		assert.Equal(t, f.route.ID, recorded[0].RouteID)
		assert.Equal(t, 2, recorded[0].SeatsRemaining)
	})

	t.Run("rejects a duplicate booking and leaves the count unchanged", func(t *testing.T) {
		f := newBookingFixture(t, 3)

		_, err := f.svc.Reserve(ctx, f.route.ID, f.passenger.ID)
		require.NoError(t, err)

		_, err = f.svc.Reserve(ctx, f.route.ID, f.passenger.ID)
		assert.ErrorIs(t, err, service.ErrAlreadyBooked)

		route, err := f.mem.RouteStore().GetByID(ctx, f.route.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, route.AvailableSeats)
	})

	t.Run("rejects a reservation on a full route", func(t *testing.T) {
		f := newBookingFixture(t, 1)

		_, err := f.svc.Reserve(ctx, f.route.ID, f.passenger.ID)
		require.NoError(t, err)

		second := newTestUser(t, f.mem, domain.RolePassenger, "passenger-late")
		_, err = f.svc.Reserve(ctx, f.route.ID, second.ID)
		assert.ErrorIs(t, err, service.ErrNoSeatsAvailable)

		route, err := f.mem.RouteStore().GetByID(ctx, f.route.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, route.AvailableSeats)
	})

	t.Run("reports a full route before a duplicate booking", func(t *testing.T) {
		f := newBookingFixture(t, 1)

		_, err := f.svc.Reserve(ctx, f.route.ID, f.passenger.ID)
		require.NoError(t, err)

		// The holder of the last seat retrying on the now-full route is
		// told the route is full, not that they already booked it.
		_, err = f.svc.Reserve(ctx, f.route.ID, f.passenger.ID)
		assert.ErrorIs(t, err, service.ErrNoSeatsAvailable)

		count, err := f.mem.BookingStore().CountByRoute(ctx, f.route.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("rejects a driver-role caller", func(t *testing.T) {
		f := newBookingFixture(t, 3)

		_, err := f.svc.Reserve(ctx, f.route.ID, f.driver.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
		assert.Empty(t, f.handler.recorded())
	})

	t.Run("rejects an unknown route", func(t *testing.T) {
		f := newBookingFixture(t, 3)

		_, err := f.svc.Reserve(ctx, uuid.New(), f.passenger.ID)
		assert.ErrorIs(t, err, store.ErrRouteNotFound)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("restores the seat count exactly", func(t *testing.T) {
		f := newBookingFixture(t, 3)

		reserved, err := f.svc.Reserve(ctx, f.route.ID, f.passenger.ID)
		require.NoError(t, err)
		require.Equal(t, 2, reserved.Route.AvailableSeats)

		released, err := f.svc.Cancel(ctx, f.route.ID, f.passenger.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, released.Route.AvailableSeats)
		assert.Empty(t, released.Passengers)

		exists, err := f.mem.BookingStore().Exists(ctx, f.route.ID, f.passenger.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		recorded := f.handler.recorded()
		require.Len(t, recorded, 2)
		assert.Equal(t, events.EventSeatReleased, recorded[1].Type)
	})

	t.Run("rejects cancelling a booking that does not exist", func(t *testing.T) {
		f := newBookingFixture(t, 3)

		_, err := f.svc.Cancel(ctx, f.route.ID, f.passenger.ID)
		assert.ErrorIs(t, err, store.ErrBookingNotFound)

		route, err := f.mem.RouteStore().GetByID(ctx, f.route.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, route.AvailableSeats)
	})

	t.Run("rejects a driver-role caller", func(t *testing.T) {
		f := newBookingFixture(t, 3)

		_, err := f.svc.Cancel(ctx, f.route.ID, f.driver.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

// TestBookingService_ConcurrentReserves launches more concurrent
// reservations than there are seats and verifies exactly the available
// number succeed, the rest fail with ErrNoSeatsAvailable, and the counter
// lands on zero with no overbooking.
func TestBookingService_ConcurrentReserves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	const seats = 3
	const callers = 10

	f := newBookingFixture(t, seats)

	passengers := make([]*domain.User, callers)
	for i := range passengers {
		passengers[i] = newTestUser(t, f.mem, domain.RolePassenger, fmt.Sprintf("rider-%02d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range passengers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Reserve(ctx, f.route.ID, passengers[i].ID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, service.ErrNoSeatsAvailable)
		}
	}
	assert.Equal(t, seats, successes)

	route, err := f.mem.RouteStore().GetByID(ctx, f.route.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, route.AvailableSeats)

	count, err := f.mem.BookingStore().CountByRoute(ctx, f.route.ID)
	require.NoError(t, err)
	assert.Equal(t, seats, count)
	assert.Equal(t, route.TotalSeats-count, route.AvailableSeats)
}
