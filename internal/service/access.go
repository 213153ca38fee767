package service

import (
	"fmt"

	"github.com/openride/carpool-api/internal/domain"
)

// RequireDriver returns ErrPermissionDenied unless the user holds the
// driver role.
func RequireDriver(user *domain.User) error {
	if user.Role != domain.RoleDriver {
		return fmt.Errorf("%w: driver role required", ErrPermissionDenied)
	}
	return nil
}

// RequirePassenger returns ErrPermissionDenied unless the user holds the
// passenger role.
func RequirePassenger(user *domain.User) error {
	if user.Role != domain.RolePassenger {
		return fmt.Errorf("%w: passenger role required", ErrPermissionDenied)
	}
	return nil
}

// RequireRouteOwner returns ErrPermissionDenied unless the user is the
// driver who published the route.
func RequireRouteOwner(user *domain.User, route *domain.Route) error {
	if route.DriverID != user.ID {
		return fmt.Errorf("%w: not the route owner", ErrPermissionDenied)
	}
	return nil
}
