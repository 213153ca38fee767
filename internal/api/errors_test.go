package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/service"
	"github.com/openride/carpool-api/internal/service/auth"
	"github.com/openride/carpool-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid refresh token", auth.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"permission denied", service.ErrPermissionDenied, http.StatusForbidden},
		{
			"wrapped permission denied",
			fmt.Errorf("%w: not the route owner", service.ErrPermissionDenied),
			http.StatusForbidden,
		},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"route not found", store.ErrRouteNotFound, http.StatusNotFound},
		{"login taken", store.ErrLoginIDExists, http.StatusConflict},
		{"email taken", store.ErrEmailExists, http.StatusConflict},
		{"concurrency conflict", store.ErrConcurrencyConflict, http.StatusConflict},
		{"no seats", service.ErrNoSeatsAvailable, http.StatusBadRequest},
		{"already booked", service.ErrAlreadyBooked, http.StatusBadRequest},
		{"booking not found", store.ErrBookingNotFound, http.StatusBadRequest},
		{"insufficient capacity", service.ErrInsufficientCapacity, http.StatusBadRequest},
		{"route has bookings", service.ErrRouteHasBookings, http.StatusBadRequest},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "No seats available", GetSafeErrorMessage(service.ErrNoSeatsAvailable))
	assert.Equal(t, "You already booked this route", GetSafeErrorMessage(service.ErrAlreadyBooked))
	assert.Equal(t, "Booking not found", GetSafeErrorMessage(store.ErrBookingNotFound))
	assert.Equal(
		t,
		"Cannot delete a route with active bookings",
		GetSafeErrorMessage(service.ErrRouteHasBookings),
	)

	// Internal details never leak.
	leaky := errors.New("pq: connection refused host=10.0.0.5 password=hunter2")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(leaky))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
