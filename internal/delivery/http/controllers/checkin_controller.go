package controllers

import (
	"log/slog"
	"net/http"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

type CheckinController struct {
	Logger       *slog.Logger
	Orchestrator domain.RegistrationOrchestrator
}

func NewCheckinController(logger *slog.Logger, orchestrator domain.RegistrationOrchestrator) *CheckinController {
	return &CheckinController{Logger: logger, Orchestrator: orchestrator}
}

// CheckinSuccessResponse is the success envelope for POST /checkin (200).
type CheckinSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CheckIn godoc
// @Summary Check in with a token
// @Description Consumes the single-use check-in token (from the QR code) and marks the registration attended. A token works exactly once; an expired token is rejected without being cleared.
// @Tags checkin
// @Produce json
// @Security BearerAuth
// @Param token query string true "Check-in token"
// @Success 200 {object} controllers.CheckinSuccessResponse "data contains the attended registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown token)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (token already used)"
// @Failure 410 {object} helpers.APIResponse "error.code: gone (token expired)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkin [post]
func (c *CheckinController) CheckIn(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing token")
		return
	}
	reg, err := c.Orchestrator.CheckIn(r.Context(), token)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}
