package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Route validation errors
var (
	ErrEmptyRouteID       = errors.New("route ID cannot be empty")
	ErrEmptyDriverID      = errors.New("driver ID cannot be empty")
	ErrInvalidDate        = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTime        = errors.New("time must be in HH:MM format")
	ErrEmptyStartLocation = errors.New("start location cannot be empty")
	ErrEmptyDestination   = errors.New("destination cannot be empty")
	ErrEmptyCarModel      = errors.New("car model cannot be empty")
	ErrInvalidTotalSeats  = errors.New("total seats must be positive")
	ErrSeatCountOutOfRange = errors.New(
		"available seats must be between zero and total seats",
	)
)

// Route is a published carpool offer with a fixed seat capacity. It is owned
// by exactly one driver; ownership never changes after creation.
//
// AvailableSeats is the synchronized counter at the heart of the booking
// engine. At rest it always equals TotalSeats minus the number of bookings
// for the route; it is only ever mutated under the route's row lock.
type Route struct {
	ID             uuid.UUID `json:"id"`
	DriverID       uuid.UUID `json:"driver_id"`
	Date           string    `json:"date"` // YYYY-MM-DD
	Time           string    `json:"time"` // HH:MM
	StartLocation  string    `json:"start_location"`
	Destination    string    `json:"destination"`
	CarModel       string    `json:"car_model"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewRoute creates a route owned by the given driver. A freshly published
// route starts fully open: AvailableSeats is initialized to TotalSeats and
// is never client-supplied.
func NewRoute(
	driverID uuid.UUID,
	date, timeOfDay, startLocation, destination, carModel string,
	totalSeats int,
	description string,
) (*Route, error) {
	route := &Route{
		ID:             uuid.New(),
		DriverID:       driverID,
		Date:           date,
		Time:           timeOfDay,
		StartLocation:  startLocation,
		Destination:    destination,
		CarModel:       carModel,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		Description:    description,
		CreatedAt:      time.Now().UTC(),
	}

	if err := route.Validate(); err != nil {
		return nil, err
	}

	return route, nil
}

// Validate checks if the Route has valid data.
// Returns an error if any field fails validation.
func (r *Route) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRouteID
	}

	if r.DriverID == uuid.Nil {
		return ErrEmptyDriverID
	}

	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return ErrInvalidDate
	}

	if _, err := time.Parse("15:04", r.Time); err != nil {
		return ErrInvalidTime
	}

	if r.StartLocation == "" {
		return ErrEmptyStartLocation
	}

	if r.Destination == "" {
		return ErrEmptyDestination
	}

	if r.CarModel == "" {
		return ErrEmptyCarModel
	}

	if r.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}

	if r.AvailableSeats < 0 || r.AvailableSeats > r.TotalSeats {
		return ErrSeatCountOutOfRange
	}

	return nil
}
