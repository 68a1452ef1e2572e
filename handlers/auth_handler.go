package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/middleware"
	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/services"
	"github.com/upb/schoolms-api/utils"
)

// AuthService is the part of services.AuthService used over HTTP
type AuthService interface {
	ValidateSchool(ctx context.Context, code string) (*services.SchoolValidation, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResponse, error)
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResponse, error)
}

// ValidateSchoolRequest is step one of the two-step login
type ValidateSchoolRequest struct {
	SchoolCode string `json:"schoolCode" validate:"required"`
}

// LoginRequest is step two of the login. SchoolCode is omitted by platform administrators.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	SchoolCode string `json:"schoolCode,omitempty"`
}

// RegisterRequest creates a school-bound account
type RegisterRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=8,max=72"`
	FirstName string     `json:"firstName" validate:"required,max=100"`
	LastName  string     `json:"lastName" validate:"required,max=100"`
	Phone     string     `json:"phone,omitempty" validate:"omitempty,max=20"`
	Role      string     `json:"role" validate:"required,role"`
	SchoolID  *uuid.UUID `json:"schoolId" validate:"required"`
}

// AuthHandler serves the public login endpoints and the current identity
type AuthHandler struct {
	auth   AuthService
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// HandleValidateSchool handles POST /api/auth/validate-school
//
// @Summary Validate a school code
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ValidateSchoolRequest true "School code"
// @Success 200 {object} services.SchoolValidation
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/auth/validate-school [post]
func (h *AuthHandler) HandleValidateSchool(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	var req ValidateSchoolRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, log)
		return
	}

	result, err := h.auth.ValidateSchool(r.Context(), req.SchoolCode)
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, result); err != nil {
		log.Error("failed to write response", zap.Error(err))
	}
}

// HandleLogin handles POST /api/auth/login
//
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, log)
		return
	}

	resp, err := h.auth.Login(r.Context(), services.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		SchoolCode: req.SchoolCode,
	})
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, resp); err != nil {
		log.Error("failed to write response", zap.Error(err))
	}
}

// HandleRegister handles POST /api/auth/register
//
// @Summary Register a school account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Account"
// @Success 201 {object} services.AuthResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	var req RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, log)
		return
	}

	role, _ := models.ParseRole(req.Role)
	resp, err := h.auth.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      role,
		SchoolID:  req.SchoolID,
	})
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}

	if err := utils.WriteJSON(w, http.StatusCreated, resp); err != nil {
		log.Error("failed to write response", zap.Error(err))
	}
}

// HandleMe handles GET /api/auth/me
//
// @Summary Current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Identity
// @Failure 401 {object} utils.SecurityErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	if identity == nil {
		_ = utils.WriteAuthenticationFailure(w, r)
		return
	}
	writeOK(w, h.logger, identity)
}
