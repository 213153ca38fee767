// Package api implements the HTTP surface of the carpool service.
package api

import (
	"github.com/google/uuid"

	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/service"
)

// RegisterRequest is the request body for user registration. The wire names
// are camelCase; "type" carries the account role.
type RegisterRequest struct {
	LoginID      string `json:"loginId"      validate:"required,min=3,max=64"`
	Nickname     string `json:"nickname"     validate:"required,max=64"`
	Email        string `json:"email"        validate:"required,email"`
	Type         string `json:"type"         validate:"required,oneof=driver passenger"`
	ProfileImage string `json:"profileImage" validate:"omitempty,max=512"`
	Password     string `json:"password"     validate:"required,min=8,max=72"`
	Password2    string `json:"password2"    validate:"required"`
}

// TokenRequest is the request body for credential-based token issuance.
type TokenRequest struct {
	LoginID  string `json:"loginId"  validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the request body for refreshing an access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the public view of an account. It never carries password
// material.
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	LoginID      string    `json:"loginId"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email"`
	Type         string    `json:"type"`
	ProfileImage string    `json:"profileImage,omitempty"`
}

// CreateRouteRequest is the request body for publishing a route. The
// available seat count is never client-supplied.
type CreateRouteRequest struct {
	Date          string `json:"date"          validate:"required,datetime=2006-01-02"`
	Time          string `json:"time"          validate:"required,datetime=15:04"`
	StartLocation string `json:"startLocation" validate:"required,max=255"`
	Destination   string `json:"destination"   validate:"required,max=255"`
	CarModel      string `json:"carModel"      validate:"required,max=128"`
	TotalSeats    int    `json:"totalSeats"    validate:"required,gt=0"`
	Description   string `json:"description"   validate:"max=2000"`
}

// UpdateRouteRequest is the request body for a partial route update.
// Omitted fields are left unchanged.
type UpdateRouteRequest struct {
	Date          *string `json:"date"          validate:"omitempty,datetime=2006-01-02"`
	Time          *string `json:"time"          validate:"omitempty,datetime=15:04"`
	StartLocation *string `json:"startLocation" validate:"omitempty,max=255"`
	Destination   *string `json:"destination"   validate:"omitempty,max=255"`
	CarModel      *string `json:"carModel"      validate:"omitempty,max=128"`
	TotalSeats    *int    `json:"totalSeats"    validate:"omitempty,gt=0"`
	Description   *string `json:"description"   validate:"omitempty,max=2000"`
}

// RouteResponse is the full read model for a route: the route fields, the
// driver's display data, and the current passenger roster.
type RouteResponse struct {
	ID               uuid.UUID      `json:"id"`
	DriverID         uuid.UUID      `json:"driverId"`
	DriverName       string         `json:"driverName"`
	DriverAvatar     string         `json:"driverAvatar,omitempty"`
	Date             string         `json:"date"`
	Time             string         `json:"time"`
	StartLocation    string         `json:"startLocation"`
	Destination      string         `json:"destination"`
	CarModel         string         `json:"carModel"`
	TotalSeats       int            `json:"totalSeats"`
	AvailableSeats   int            `json:"availableSeats"`
	Description      string         `json:"description"`
	Passengers       []uuid.UUID    `json:"passengers"`
	PassengerDetails []UserResponse `json:"passengerDetails"`
}

// HealthResponse is the body of the liveness probe.
type HealthResponse struct {
	Status string `json:"status"`
}

// newUserResponse maps a domain user to its public view.
func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		LoginID:      user.LoginID,
		Nickname:     user.Nickname,
		Email:        user.Email,
		Type:         string(user.Role),
		ProfileImage: user.ProfileImage,
	}
}

// newRouteResponse maps route details to the wire representation.
func newRouteResponse(details *service.RouteDetails) RouteResponse {
	passengers := make([]uuid.UUID, 0, len(details.Passengers))
	passengerDetails := make([]UserResponse, 0, len(details.Passengers))
	for _, p := range details.Passengers {
		passengers = append(passengers, p.ID)
		passengerDetails = append(passengerDetails, newUserResponse(p))
	}

	return RouteResponse{
		ID:               details.Route.ID,
		DriverID:         details.Route.DriverID,
		DriverName:       details.Driver.Nickname,
		DriverAvatar:     details.Driver.ProfileImage,
		Date:             details.Route.Date,
		Time:             details.Route.Time,
		StartLocation:    details.Route.StartLocation,
		Destination:      details.Route.Destination,
		CarModel:         details.Route.CarModel,
		TotalSeats:       details.Route.TotalSeats,
		AvailableSeats:   details.Route.AvailableSeats,
		Description:      details.Route.Description,
		Passengers:       passengers,
		PassengerDetails: passengerDetails,
	}
}

func newRouteResponseList(details []*service.RouteDetails) []RouteResponse {
	responses := make([]RouteResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, newRouteResponse(d))
	}
	return responses
}
