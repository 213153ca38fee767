// Package service implements the application's business logic on top of the
// store interfaces.
package service

import "errors"

// Service error definitions
var (
	// ErrPermissionDenied indicates the caller's role or ownership does not
	// allow the requested operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoSeatsAvailable indicates a reservation was attempted on a route
	// with no open seats.
	ErrNoSeatsAvailable = errors.New("no seats available")

	// ErrAlreadyBooked indicates the passenger already holds a booking on
	// the route.
	ErrAlreadyBooked = errors.New("already booked on this route")

	// ErrRouteHasBookings indicates a route cannot be deleted while
	// passengers hold bookings on it.
	ErrRouteHasBookings = errors.New("route has active bookings")

	// ErrInsufficientCapacity indicates a seat capacity update would drop
	// total seats below the number of bookings already held.
	ErrInsufficientCapacity = errors.New("total seats cannot be less than booked seats")
)
