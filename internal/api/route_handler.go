package api

import (
	"net/http"

	"github.com/openride/carpool-api/internal/service"
)

// RouteHandler handles route and booking API requests.
type RouteHandler struct {
	routeService   *service.RouteService
	bookingService *service.BookingService
}

// NewRouteHandler creates a new RouteHandler with the given dependencies.
func NewRouteHandler(
	routeService *service.RouteService,
	bookingService *service.BookingService,
) *RouteHandler {
	return &RouteHandler{
		routeService:   routeService,
		bookingService: bookingService,
	}
}

// List handles GET /routes. Public.
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.routeService.ListRoutes(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list routes")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, newRouteResponseList(details))
}

// Get handles GET /routes/{id}. Public.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	routeID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	details, err := h.routeService.GetRoute(r.Context(), routeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load route")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, newRouteResponse(details))
}

// Create handles POST /routes. Driver only.
func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateRouteRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := ValidateRequest(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	details, err := h.routeService.CreateRoute(r.Context(), userID, service.CreateRouteInput{
		Date:          req.Date,
		Time:          req.Time,
		StartLocation: req.StartLocation,
		Destination:   req.Destination,
		CarModel:      req.CarModel,
		TotalSeats:    req.TotalSeats,
		Description:   req.Description,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create route")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, newRouteResponse(details))
}

// Update handles PATCH /routes/{id}. Owning driver only.
func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	routeID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateRouteRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := ValidateRequest(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	details, err := h.routeService.UpdateRoute(r.Context(), userID, routeID, service.UpdateRouteInput{
		Date:          req.Date,
		Time:          req.Time,
		StartLocation: req.StartLocation,
		Destination:   req.Destination,
		CarModel:      req.CarModel,
		TotalSeats:    req.TotalSeats,
		Description:   req.Description,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update route")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, newRouteResponse(details))
}

// Delete handles DELETE /routes/{id}. Owning driver only.
func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	routeID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.routeService.DeleteRoute(r.Context(), userID, routeID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete route")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MyRoutes handles GET /routes/my-routes. Authenticated drivers.
func (h *RouteHandler) MyRoutes(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	details, err := h.routeService.ListDriverRoutes(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list routes")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, newRouteResponseList(details))
}

// MyBookings handles GET /routes/my-bookings. Authenticated passengers.
func (h *RouteHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	details, err := h.routeService.ListPassengerRoutes(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list bookings")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, newRouteResponseList(details))
}

// Book handles POST /routes/{id}/book. Passenger only.
func (h *RouteHandler) Book(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	routeID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	details, err := h.bookingService.Reserve(r.Context(), routeID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to book route")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, newRouteResponse(details))
}

// CancelBooking handles DELETE /routes/{id}/book. Passenger only.
func (h *RouteHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	routeID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	details, err := h.bookingService.Cancel(r.Context(), routeID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel booking")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, newRouteResponse(details))
}
