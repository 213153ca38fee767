package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/store"
)

// MemStore is an in-memory implementation of the user, route and booking
// stores plus a matching TxRunner. It reproduces the locking semantics the
// services rely on: GetForUpdate takes a per-route mutex that is held until
// the enclosing RunInTransaction call returns, so concurrent reservations
// on the same route serialize exactly as they do against PostgreSQL. It
// exists to let service-level tests, including the concurrent reservation
// test, run without a live database.
type MemStore struct {
	mu sync.Mutex

	users    map[uuid.UUID]*domain.User
	logins   map[string]uuid.UUID
	routes   map[uuid.UUID]*domain.Route
	bookings map[uuid.UUID][]*domain.Booking // per route, in booking order

	routeLocks map[uuid.UUID]*sync.Mutex
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		users:      make(map[uuid.UUID]*domain.User),
		logins:     make(map[string]uuid.UUID),
		routes:     make(map[uuid.UUID]*domain.Route),
		bookings:   make(map[uuid.UUID][]*domain.Booking),
		routeLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// txLocks tracks the route locks held by one in-flight transaction.
type txLocks struct {
	mu    sync.Mutex
	locks []*sync.Mutex
}

type txLocksKey struct{}

// TxRunner returns a store.TxRunner whose transactions hold route locks
// acquired via GetForUpdate until the transaction function returns.
func (m *MemStore) TxRunner() store.TxRunner {
	return &memTxRunner{store: m}
}

type memTxRunner struct {
	store *MemStore
}

func (r *memTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	held := &txLocks{}
	ctx = context.WithValue(ctx, txLocksKey{}, held)

	defer func() {
		held.mu.Lock()
		defer held.mu.Unlock()
		for i := len(held.locks) - 1; i >= 0; i-- {
			held.locks[i].Unlock()
		}
		held.locks = nil
	}()

	return fn(ctx, nil)
}

// lockRoute acquires the per-route mutex and registers it with the
// transaction in the context. Calls outside a transaction lock nothing,
// matching FOR UPDATE outside BEGIN.
func (m *MemStore) lockRoute(ctx context.Context, id uuid.UUID) {
	held, ok := ctx.Value(txLocksKey{}).(*txLocks)
	if !ok {
		return
	}

	m.mu.Lock()
	lock, exists := m.routeLocks[id]
	if !exists {
		lock = &sync.Mutex{}
		m.routeLocks[id] = lock
	}
	m.mu.Unlock()

	lock.Lock()

	held.mu.Lock()
	held.locks = append(held.locks, lock)
	held.mu.Unlock()
}

// ---- store.UserStore ----

// UserStore returns the user store view of the MemStore.
func (m *MemStore) UserStore() store.UserStore { return (*memUserStore)(m) }

type memUserStore MemStore

func (s *memUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.logins[user.LoginID]; exists {
		return store.ErrLoginIDExists
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hashed)
		user.Password = ""
	}

	stored := *user
	m.users[user.ID] = &stored
	m.logins[user.LoginID] = user.ID
	return nil
}

func (s *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memUserStore) GetByLoginID(ctx context.Context, loginID string) (*domain.User, error) {
	m := (*MemStore)(s)
	m.mu.Lock()
	id, ok := m.logins[loginID]
	m.mu.Unlock()
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *memUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

// ---- store.RouteStore ----

// RouteStore returns the route store view of the MemStore.
func (m *MemStore) RouteStore() store.RouteStore { return (*memRouteStore)(m) }

type memRouteStore MemStore

func (s *memRouteStore) Create(ctx context.Context, route *domain.Route) error {
	if err := route.Validate(); err != nil {
		return err
	}

	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *route
	m.routes[route.ID] = &stored
	return nil
}

func (s *memRouteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Route, error) {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	route, ok := m.routes[id]
	if !ok {
		return nil, store.ErrRouteNotFound
	}
	copied := *route
	return &copied, nil
}

func (s *memRouteStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Route, error) {
	m := (*MemStore)(s)
	m.lockRoute(ctx, id)
	return s.GetByID(ctx, id)
}

func (s *memRouteStore) Update(ctx context.Context, route *domain.Route) error {
	if err := route.Validate(); err != nil {
		return err
	}

	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[route.ID]; !ok {
		return store.ErrRouteNotFound
	}
	stored := *route
	m.routes[route.ID] = &stored
	return nil
}

func (s *memRouteStore) UpdateAvailableSeats(ctx context.Context, id uuid.UUID, availableSeats int) error {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	route, ok := m.routes[id]
	if !ok {
		return store.ErrRouteNotFound
	}
	route.AvailableSeats = availableSeats
	return nil
}

func (s *memRouteStore) Delete(ctx context.Context, id uuid.UUID) error {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[id]; !ok {
		return store.ErrRouteNotFound
	}
	delete(m.routes, id)
	delete(m.bookings, id)
	return nil
}

func (s *memRouteStore) List(ctx context.Context) ([]*domain.Route, error) {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := make([]*domain.Route, 0, len(m.routes))
	for _, route := range m.routes {
		copied := *route
		routes = append(routes, &copied)
	}
	return routes, nil
}

func (s *memRouteStore) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*domain.Route, error) {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := []*domain.Route{}
	for _, route := range m.routes {
		if route.DriverID == driverID {
			copied := *route
			routes = append(routes, &copied)
		}
	}
	return routes, nil
}

func (s *memRouteStore) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*domain.Route, error) {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := []*domain.Route{}
	for routeID, list := range m.bookings {
		for _, booking := range list {
			if booking.PassengerID == passengerID {
				if route, ok := m.routes[routeID]; ok {
					copied := *route
					routes = append(routes, &copied)
				}
				break
			}
		}
	}
	return routes, nil
}

func (s *memRouteStore) WithTx(tx *sql.Tx) store.RouteStore { return s }

// ---- store.BookingStore ----

// BookingStore returns the booking store view of the MemStore.
func (m *MemStore) BookingStore() store.BookingStore { return (*memBookingStore)(m) }

type memBookingStore MemStore

func (s *memBookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	if err := booking.Validate(); err != nil {
		return err
	}

	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.bookings[booking.RouteID] {
		if existing.PassengerID == booking.PassengerID {
			return store.ErrBookingExists
		}
	}

	stored := *booking
	m.bookings[booking.RouteID] = append(m.bookings[booking.RouteID], &stored)
	return nil
}

func (s *memBookingStore) Delete(ctx context.Context, routeID, passengerID uuid.UUID) error {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.bookings[routeID]
	for i, booking := range list {
		if booking.PassengerID == passengerID {
			m.bookings[routeID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return store.ErrBookingNotFound
}

func (s *memBookingStore) Exists(ctx context.Context, routeID, passengerID uuid.UUID) (bool, error) {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, booking := range m.bookings[routeID] {
		if booking.PassengerID == passengerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memBookingStore) CountByRoute(ctx context.Context, routeID uuid.UUID) (int, error) {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings[routeID]), nil
}

func (s *memBookingStore) ListPassengers(ctx context.Context, routeID uuid.UUID) ([]*domain.User, error) {
	m := (*MemStore)(s)
	m.mu.Lock()
	defer m.mu.Unlock()

	passengers := []*domain.User{}
	for _, booking := range m.bookings[routeID] {
		if user, ok := m.users[booking.PassengerID]; ok {
			copied := *user
			passengers = append(passengers, &copied)
		}
	}
	return passengers, nil
}

func (s *memBookingStore) WithTx(tx *sql.Tx) store.BookingStore { return s }

// Interface checks
var (
	_ store.UserStore    = (*memUserStore)(nil)
	_ store.RouteStore   = (*memRouteStore)(nil)
	_ store.BookingStore = (*memBookingStore)(nil)
	_ store.TxRunner     = (*memTxRunner)(nil)
)
