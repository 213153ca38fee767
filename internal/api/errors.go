package api

import (
	"errors"
	"net/http"

	"github.com/openride/carpool-api/internal/api/shared"
	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/service"
	"github.com/openride/carpool-api/internal/service/auth"
	"github.com/openride/carpool-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden

	// Not found errors. Booking-not-found is a domain rule rejection of a
	// cancel request, not a missing resource, and maps to 400 below.
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrRouteNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrLoginIDExists),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrConcurrencyConflict):
		return http.StatusConflict

	// Domain rule violations
	case errors.Is(err, service.ErrNoSeatsAvailable),
		errors.Is(err, service.ErrAlreadyBooked),
		errors.Is(err, service.ErrInsufficientCapacity),
		errors.Is(err, service.ErrRouteHasBookings),
		errors.Is(err, store.ErrBookingNotFound):
		return http.StatusBadRequest

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	// Authorization errors
	case errors.Is(err, service.ErrPermissionDenied):
		return "Permission denied"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrRouteNotFound):
		return "Route not found"

	// Conflict errors
	case errors.Is(err, store.ErrLoginIDExists):
		return "Login ID already exists"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrConcurrencyConflict):
		return "Operation conflicted with a concurrent request, please retry"

	// Domain rule violations
	case errors.Is(err, service.ErrNoSeatsAvailable):
		return "No seats available"

	case errors.Is(err, service.ErrAlreadyBooked):
		return "You already booked this route"

	case errors.Is(err, store.ErrBookingNotFound):
		return "Booking not found"

	case errors.Is(err, service.ErrInsufficientCapacity):
		return "Total seats cannot be less than booked seats"

	case errors.Is(err, service.ErrRouteHasBookings):
		return "Cannot delete a route with active bookings"

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status code and safe message and writes
// the response. Field-level validation errors keep their field detail; the
// optional defaultMsg overrides the mapped message when non-empty and the
// error is otherwise unmapped.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)

	var message string
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		status = http.StatusBadRequest
		message = "Invalid " + validationErr.Field + ": " + validationErr.Message
	} else {
		message = GetSafeErrorMessage(err)
		if message == "An unexpected error occurred" && defaultMsg != "" {
			message = defaultMsg
		}
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
