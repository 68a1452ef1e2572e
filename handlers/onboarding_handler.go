package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/schoolms-api/services"
	"github.com/upb/schoolms-api/utils"
)

// OnboardingService is the part of services.OnboardingService used over HTTP
type OnboardingService interface {
	EmailAvailable(ctx context.Context, email string) (bool, error)
	RegisterSchool(ctx context.Context, in services.RegisterSchoolInput) (*services.OnboardingResult, error)
}

// RegisterSchoolRequest is a self-service school signup
type RegisterSchoolRequest struct {
	SchoolName     string `json:"schoolName" validate:"required,max=200"`
	SchoolCode     string `json:"schoolCode" validate:"required,school_code"`
	SchoolEmail    string `json:"schoolEmail,omitempty" validate:"omitempty,email"`
	SchoolPhone    string `json:"schoolPhone,omitempty" validate:"omitempty,max=20"`
	SchoolAddress  string `json:"schoolAddress,omitempty" validate:"omitempty,max=500"`
	AdminFirstName string `json:"adminFirstName" validate:"required,max=100"`
	AdminLastName  string `json:"adminLastName" validate:"required,max=100"`
	AdminEmail     string `json:"adminEmail" validate:"required,email"`
	AdminPassword  string `json:"adminPassword" validate:"required,min=8,max=72"`
}

// EmailAvailability answers the signup form's email check
type EmailAvailability struct {
	Email     string `json:"email"`
	Available bool   `json:"available"`
}

// OnboardingHandler serves the public self-service signup
type OnboardingHandler struct {
	onboarding OnboardingService
	logger     *zap.Logger
}

// NewOnboardingHandler creates a new OnboardingHandler
func NewOnboardingHandler(onboarding OnboardingService, logger *zap.Logger) *OnboardingHandler {
	return &OnboardingHandler{
		onboarding: onboarding,
		logger:     logger,
	}
}

// HandleRegisterSchool handles POST /api/self-service/register-school
//
// @Summary Register a school and its administrator
// @Tags self-service
// @Accept json
// @Produce json
// @Param body body RegisterSchoolRequest true "School and administrator"
// @Success 201 {object} services.OnboardingResult
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/self-service/register-school [post]
func (h *OnboardingHandler) HandleRegisterSchool(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	var req RegisterSchoolRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, log)
		return
	}

	result, err := h.onboarding.RegisterSchool(r.Context(), services.RegisterSchoolInput{
		SchoolName:     req.SchoolName,
		SchoolCode:     req.SchoolCode,
		SchoolEmail:    req.SchoolEmail,
		SchoolPhone:    req.SchoolPhone,
		SchoolAddress:  req.SchoolAddress,
		AdminFirstName: req.AdminFirstName,
		AdminLastName:  req.AdminLastName,
		AdminEmail:     req.AdminEmail,
		AdminPassword:  req.AdminPassword,
	})
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}

	if err := utils.WriteCreated(w, result); err != nil {
		log.Error("failed to write response", zap.Error(err))
	}
}

// HandleCheckEmail handles GET /api/self-service/check-email?email=
//
// @Summary Check whether an administrator email is free
// @Tags self-service
// @Produce json
// @Param email query string true "Email"
// @Success 200 {object} EmailAvailability
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/self-service/check-email [get]
func (h *OnboardingHandler) HandleCheckEmail(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	email := r.URL.Query().Get("email")
	if err := utils.ValidateVar(email, "required,email"); err != nil {
		_ = utils.WriteBadRequest(w, "A valid email query parameter is required", nil)
		return
	}

	available, err := h.onboarding.EmailAvailable(r.Context(), email)
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}

	writeOK(w, log, EmailAvailability{Email: email, Available: available})
}
