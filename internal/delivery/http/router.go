package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	verifier domain.TokenVerifier,
	eventController *controllers.EventController,
	admissionController *controllers.AdmissionController,
	guestController *controllers.GuestController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	// Events
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", auth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", optionalAuth(eventController.GetEventDetails))
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(admissionController.Join))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", auth(admissionController.Leave))
	mux.HandleFunc("GET /events/{eventID}/registrations/me", auth(admissionController.RegistrationStatus))

	// Manual guests (organizer only, enforced in the service)
	mux.HandleFunc("POST /events/{eventID}/guests", auth(guestController.AddGuest))
	mux.HandleFunc("GET /events/{eventID}/guests", auth(guestController.ListGuests))
	mux.HandleFunc("PATCH /events/{eventID}/guests/{guestID}", auth(guestController.UpdateGuest))
	mux.HandleFunc("DELETE /events/{eventID}/guests/{guestID}", auth(guestController.RemoveGuest))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
