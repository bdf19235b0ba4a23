package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	checkinController *controllers.CheckinController,
	certificateController *controllers.CertificateController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	organizer := middleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin)
	staff := middleware.RequireRole(domain.RoleOrganizer, domain.RoleTeacher, domain.RoleAdmin)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("POST /events", auth(organizer(eventController.CreateEvent)))
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("PATCH /events/{eventID}", auth(organizer(eventController.UpdateEvent)))
	mux.HandleFunc("POST /events/{eventID}/publish", auth(organizer(eventController.PublishEvent)))
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(organizer(eventController.CancelEvent)))
	mux.HandleFunc("GET /events/{eventID}/stats", auth(eventController.GetEventStats))

	// Registrations and waitlist
	mux.HandleFunc("POST /events/{eventID}/register", auth(registrationController.Register))
	mux.HandleFunc("POST /registrations/{registrationID}/cancel", auth(registrationController.CancelRegistration))
	mux.HandleFunc("GET /registrations/{registrationID}/qrcode", auth(registrationController.GetQRCode))
	mux.HandleFunc("GET /users/me/registrations", auth(registrationController.ListMyRegistrations))
	mux.HandleFunc("GET /events/{eventID}/registrations", auth(registrationController.ListEventRegistrations))
	mux.HandleFunc("GET /events/{eventID}/waitlist", auth(registrationController.ListEventWaitlist))

	// Check-in
	mux.HandleFunc("POST /checkin", auth(staff(checkinController.CheckIn)))

	// Certificates
	mux.HandleFunc("POST /certificates/issue", auth(staff(certificateController.IssueCertificate)))
	mux.HandleFunc("POST /events/{eventID}/certificates", auth(staff(certificateController.IssueCertificatesForEvent)))
	mux.HandleFunc("GET /events/{eventID}/certificates", auth(staff(certificateController.ListEventCertificates)))
	mux.HandleFunc("GET /users/me/certificates", auth(certificateController.ListMyCertificates))
	mux.HandleFunc("GET /certificates/verify/{code}", certificateController.VerifyCertificate)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
