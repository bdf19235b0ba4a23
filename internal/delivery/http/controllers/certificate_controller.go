package controllers

import (
	"log/slog"
	"net/http"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

type CertificateController struct {
	Logger       *slog.Logger
	Orchestrator domain.RegistrationOrchestrator
	Issuer       domain.CertificateIssuer
}

func NewCertificateController(
	logger *slog.Logger,
	orchestrator domain.RegistrationOrchestrator,
	issuer domain.CertificateIssuer,
) *CertificateController {
	return &CertificateController{Logger: logger, Orchestrator: orchestrator, Issuer: issuer}
}

// tierForRequest resolves the certificate tier for the caller. An explicit
// elevated request requires the teacher or admin role; empty means presence.
func tierForRequest(r *http.Request, requested string) (domain.CertificateTier, bool) {
	switch requested {
	case "", string(domain.TierPresence):
		return domain.TierPresence, true
	case string(domain.TierElevated):
		if middleware.HasRole(r.Context(), domain.RoleTeacher) || middleware.HasRole(r.Context(), domain.RoleAdmin) {
			return domain.TierElevated, true
		}
		return "", false
	default:
		return domain.CertificateTier(requested), true
	}
}

// IssueCertificateRequest is the request body for POST /certificates/issue.
type IssueCertificateRequest struct {
	RegistrationID string `json:"registration_id"`
	Tier           string `json:"tier,omitempty"`
}

// Validate implements Validator.
func (i IssueCertificateRequest) Validate() []string {
	var errs []string
	if i.RegistrationID == "" {
		errs = append(errs, "registration_id is required")
	}
	return errs
}

// CertificateSuccessResponse is the success envelope for endpoints returning a certificate.
type CertificateSuccessResponse struct {
	Data  *domain.Certificate `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// IssueCertificate godoc
// @Summary Issue a certificate
// @Description Issues a certificate for an attended registration. Tier defaults to presence; elevated requires the teacher or admin role. At most one certificate exists per registration.
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param issue body IssueCertificateRequest true "Registration and tier"
// @Success 201 {object} controllers.CertificateSuccessResponse "data contains the certificate"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (tier not allowed)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not attended or already issued)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /certificates/issue [post]
func (c *CertificateController) IssueCertificate(w http.ResponseWriter, r *http.Request) {
	var req IssueCertificateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	tier, allowed := tierForRequest(r, req.Tier)
	if !allowed {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "elevated tier requires teacher or admin role")
		return
	}
	cert, err := c.Orchestrator.IssueCertificate(r.Context(), req.RegistrationID, userID, tier)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, cert)
}

// IssueBulkRequest is the request body for POST /events/{eventID}/certificates.
type IssueBulkRequest struct {
	Tier string `json:"tier,omitempty"`
}

// IssueBulkResponse is the success payload for POST /events/{eventID}/certificates.
type IssueBulkResponse struct {
	Issued int `json:"issued"`
}

// IssueBulkSuccessResponse is the success envelope for POST /events/{eventID}/certificates (200).
type IssueBulkSuccessResponse struct {
	Data  IssueBulkResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// IssueCertificatesForEvent godoc
// @Summary Issue certificates for all attendees of an event
// @Description Issues a certificate to every attended registration that has none yet; existing certificates are skipped. Returns the count of newly issued certificates.
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param issue body IssueBulkRequest false "Tier (defaults to presence)"
// @Success 200 {object} controllers.IssueBulkSuccessResponse "data contains the issued count"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (tier not allowed)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/certificates [post]
func (c *CertificateController) IssueCertificatesForEvent(w http.ResponseWriter, r *http.Request) {
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
	var req IssueBulkRequest
	if r.Body != nil && r.ContentLength != 0 {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}
	tier, allowed := tierForRequest(r, req.Tier)
	if !allowed {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "elevated tier requires teacher or admin role")
		return
	}
	issued, err := c.Orchestrator.IssueCertificatesForEvent(r.Context(), eventID, userID, tier)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, IssueBulkResponse{Issued: issued})
}

// VerifyCertificate godoc
// @Summary Verify a certificate by code
// @Description Public lookup of a certificate by its verification code. No authentication required.
// @Tags certificates
// @Produce json
// @Param code path string true "Verification code"
// @Success 200 {object} controllers.CertificateSuccessResponse "data contains the certificate"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /certificates/verify/{code} [get]
func (c *CertificateController) VerifyCertificate(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing code")
		return
	}
	cert, err := c.Issuer.VerifyByCode(r.Context(), code)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, cert)
}

// CertificateListSuccessResponse is the success envelope for certificate listings (200).
type CertificateListSuccessResponse struct {
	Data  []*domain.Certificate `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListMyCertificates godoc
// @Summary List the caller's certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.CertificateListSuccessResponse "data contains the certificates"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/certificates [get]
func (c *CertificateController) ListMyCertificates(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	certs, err := c.Issuer.ListByPerson(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, certs)
}

// ListEventCertificates godoc
// @Summary List certificates issued for an event
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.CertificateListSuccessResponse "data contains the certificates"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/certificates [get]
func (c *CertificateController) ListEventCertificates(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	certs, err := c.Issuer.ListByEvent(r.Context(), eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, certs)
}
