package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openride/carpool-api/internal/api"
	apiMiddleware "github.com/openride/carpool-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	routeHandler := api.NewRouteHandler(app.routeService, app.bookingService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	// Authentication endpoints
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/token", authHandler.Token)
	r.Post("/auth/token/refresh", authHandler.RefreshToken)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/auth/me", authHandler.Me)
	})

	// Route endpoints. Reads are public, mutations require authentication.
	r.Route("/routes", func(r chi.Router) {
		r.Get("/", routeHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/", routeHandler.Create)
			r.Get("/my-routes", routeHandler.MyRoutes)
			r.Get("/my-bookings", routeHandler.MyBookings)
			r.Patch("/{id}", routeHandler.Update)
			r.Put("/{id}", routeHandler.Update)
			r.Delete("/{id}", routeHandler.Delete)
			r.Post("/{id}/book", routeHandler.Book)
			r.Delete("/{id}/book", routeHandler.CancelBooking)
		})

		r.Get("/{id}", routeHandler.Get)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.RespondWithJSON(w, r, http.StatusOK, api.HealthResponse{Status: "ok"})
	})

	return r
}
