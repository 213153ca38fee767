package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g. ErrUserNotFound, ErrRouteNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or violates a database constraint. Check the wrapped
	// error for specifics.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConcurrencyConflict is returned when a transaction repeatedly loses
	// to concurrent transactions (serialization failure or deadlock). The
	// operation did not take effect and the caller may safely retry.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrRouteNotFound indicates that the requested route does not exist.
	ErrRouteNotFound = fmt.Errorf("%w: route", ErrNotFound)

	// ErrBookingNotFound indicates that the requested booking does not exist.
	ErrBookingNotFound = fmt.Errorf("%w: booking", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrLoginIDExists indicates that a user with the given login ID already
	// exists.
	ErrLoginIDExists = fmt.Errorf("%w: login ID", ErrDuplicate)

	// ErrEmailExists indicates that a user with the given email already
	// exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrBookingExists indicates a booking for the same (route, passenger)
	// pair already exists. The booking engine normally detects this under
	// the route lock before inserting; the unique constraint is the
	// backstop.
	ErrBookingExists = fmt.Errorf("%w: booking", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
