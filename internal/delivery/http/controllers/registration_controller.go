package controllers

import (
	"log/slog"
	"net/http"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

type RegistrationController struct {
	Logger       *slog.Logger
	Orchestrator domain.RegistrationOrchestrator
	Ledger       domain.RegistrationLedger
	Waitlist     domain.WaitlistQueue
	Events       domain.EventService
	QR           domain.QRCodeRenderer
}

func NewRegistrationController(
	logger *slog.Logger,
	orchestrator domain.RegistrationOrchestrator,
	ledger domain.RegistrationLedger,
	waitlist domain.WaitlistQueue,
	events domain.EventService,
	qr domain.QRCodeRenderer,
) *RegistrationController {
	return &RegistrationController{
		Logger:       logger,
		Orchestrator: orchestrator,
		Ledger:       ledger,
		Waitlist:     waitlist,
		Events:       events,
		QR:           qr,
	}
}

// RegisterSuccessResponse is the success envelope for POST /events/{eventID}/register (201).
type RegisterSuccessResponse struct {
	Data  *domain.RegisterResult `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// Register godoc
// @Summary Register for an event
// @Description Registers the caller for the event. When the event is full the caller joins the waitlist and the response carries status "waitlisted" with the queue position; otherwise it carries the registration with its check-in token and QR code URL.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 201 {object} controllers.RegisterSuccessResponse "data contains the registration outcome"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (event not open)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (duplicate registration)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/register [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	result, err := c.Orchestrator.Register(r.Context(), eventID, userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// CancelSuccessResponse is the success envelope for POST /registrations/{registrationID}/cancel (200).
type CancelSuccessResponse struct {
	Data  *domain.CancelResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CancelRegistration godoc
// @Summary Cancel a registration
// @Description Cancels the registration and, when the waitlist is non-empty, promotes its head into the freed slot. Only the registration holder or an admin may cancel.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Success 200 {object} controllers.CancelSuccessResponse "data contains the cancelled and promoted registrations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already cancelled)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrationID}/cancel [post]
func (c *RegistrationController) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Ledger.Get(r.Context(), registrationID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if reg.PersonID != userID && !middleware.HasRole(r.Context(), domain.RoleAdmin) {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not your registration")
		return
	}
	result, err := c.Orchestrator.Cancel(r.Context(), registrationID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// QRCodeResponse is the payload for GET /registrations/{registrationID}/qrcode.
type QRCodeResponse struct {
	QRCodeURL      string  `json:"qr_code_url"`
	TokenExpiresAt *string `json:"token_expires_at,omitempty"`
}

// QRCodeSuccessResponse is the success envelope for GET /registrations/{registrationID}/qrcode (200).
type QRCodeSuccessResponse struct {
	Data  QRCodeResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetQRCode godoc
// @Summary Get the check-in QR code for a registration
// @Description Returns the QR image URL for the registration's current check-in token. Fails with 404 once the token was consumed.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Success 200 {object} controllers.QRCodeSuccessResponse "data contains the QR code URL"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrationID}/qrcode [get]
func (c *RegistrationController) GetQRCode(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Ledger.Get(r.Context(), registrationID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if reg.PersonID != userID && !middleware.HasRole(r.Context(), domain.RoleAdmin) {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not your registration")
		return
	}
	if reg.CheckinToken == nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no active check-in token")
		return
	}
	resp := QRCodeResponse{QRCodeURL: c.QR.URL(*reg.CheckinToken)}
	if reg.TokenExpiresAt != nil {
		s := reg.TokenExpiresAt.Format("2006-01-02T15:04:05Z07:00")
		resp.TokenExpiresAt = &s
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// RegistrationListSuccessResponse is the success envelope for registration listings (200).
type RegistrationListSuccessResponse struct {
	Data  []*domain.Registration `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ListMyRegistrations godoc
// @Summary List the caller's registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.RegistrationListSuccessResponse "data contains the registrations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/registrations [get]
func (c *RegistrationController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Ledger.ListByPerson(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// ListEventRegistrations godoc
// @Summary List registrations for an event
// @Description Operator view. Only the event organizer or an admin may list.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.RegistrationListSuccessResponse "data contains the registrations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [get]
func (c *RegistrationController) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := c.authorizeOperator(w, r)
	if !ok {
		return
	}
	regs, err := c.Ledger.ListByEvent(r.Context(), eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// WaitlistSuccessResponse is the success envelope for GET /events/{eventID}/waitlist (200).
type WaitlistSuccessResponse struct {
	Data  []*domain.WaitlistEntry `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ListEventWaitlist godoc
// @Summary List the waitlist for an event
// @Description Operator view, ordered by position. Only the event organizer or an admin may list.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.WaitlistSuccessResponse "data contains the waitlist entries"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/waitlist [get]
func (c *RegistrationController) ListEventWaitlist(w http.ResponseWriter, r *http.Request) {
	eventID, ok := c.authorizeOperator(w, r)
	if !ok {
		return
	}
	entries, err := c.Waitlist.ListByEvent(r.Context(), eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// authorizeOperator resolves the eventID path value and ensures the caller is
// the event's organizer or an admin. Writes the error response itself and
// returns ok=false when the caller may not proceed.
func (c *RegistrationController) authorizeOperator(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	event, err := c.Events.GetEvent(r.Context(), eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return "", false
	}
	if event.OrganizerID != userID && !middleware.HasRole(r.Context(), domain.RoleAdmin) {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not the event organizer")
		return "", false
	}
	return eventID, true
}
