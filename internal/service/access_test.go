package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openride/carpool-api/internal/domain"
	"github.com/openride/carpool-api/internal/service"
)

func TestAccessPolicy(t *testing.T) {
	t.Parallel()

	driver := &domain.User{ID: uuid.New(), Role: domain.RoleDriver}
	passenger := &domain.User{ID: uuid.New(), Role: domain.RolePassenger}

	t.Run("RequireDriver", func(t *testing.T) {
		assert.NoError(t, service.RequireDriver(driver))
		assert.ErrorIs(t, service.RequireDriver(passenger), service.ErrPermissionDenied)
	})

	t.Run("RequirePassenger", func(t *testing.T) {
		assert.NoError(t, service.RequirePassenger(passenger))
		assert.ErrorIs(t, service.RequirePassenger(driver), service.ErrPermissionDenied)
	})

	t.Run("RequireRouteOwner", func(t *testing.T) {
		route := &domain.Route{ID: uuid.New(), DriverID: driver.ID}
		assert.NoError(t, service.RequireRouteOwner(driver, route))

		other := &domain.User{ID: uuid.New(), Role: domain.RoleDriver}
		assert.ErrorIs(t, service.RequireRouteOwner(other, route), service.ErrPermissionDenied)
	})
}
