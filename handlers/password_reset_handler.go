package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/schoolms-api/utils"
)

// PasswordResetService is the part of services.PasswordResetService used over HTTP
type PasswordResetService interface {
	Request(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (bool, error)
	Reset(ctx context.Context, token, newPassword string) error
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// MessageResponse carries a human-readable outcome
type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyResponse reports whether a reset token can still be redeemed
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// PasswordResetHandler serves the public password reset flow
type PasswordResetHandler struct {
	resets PasswordResetService
	logger *zap.Logger
}

// NewPasswordResetHandler creates a new PasswordResetHandler
func NewPasswordResetHandler(resets PasswordResetService, logger *zap.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{
		resets: resets,
		logger: logger,
	}
}

// HandleRequest handles POST /api/password-reset/request.
// The answer is the same whether or not the email is registered.
//
// @Summary Request a password reset
// @Tags password-reset
// @Accept json
// @Produce json
// @Param body body PasswordResetRequest true "Account email"
// @Success 202 {object} MessageResponse
// @Router /api/password-reset/request [post]
func (h *PasswordResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	var req PasswordResetRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, log)
		return
	}

	if err := h.resets.Request(r.Context(), req.Email); err != nil {
		HandleServiceError(w, err, log)
		return
	}

	_ = utils.WriteJSON(w, http.StatusAccepted, MessageResponse{
		Message: "If the email is registered, a password reset link has been sent",
	})
}

// HandleVerify handles POST /api/password-reset/verify
//
// @Summary Check a reset token
// @Tags password-reset
// @Accept json
// @Produce json
// @Param body body VerifyResetTokenRequest true "Token"
// @Success 200 {object} VerifyResponse
// @Router /api/password-reset/verify [post]
func (h *PasswordResetHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	var req VerifyResetTokenRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, log)
		return
	}

	valid, err := h.resets.Verify(r.Context(), req.Token)
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, VerifyResponse{Valid: valid})
}

// HandleReset handles POST /api/password-reset/reset
//
// @Summary Set a new password
// @Tags password-reset
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/password-reset/reset [post]
func (h *PasswordResetHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	var req ResetPasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, log)
		return
	}

	if err := h.resets.Reset(r.Context(), req.Token, req.NewPassword); err != nil {
		HandleServiceError(w, err, log)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password reset successfully"})
}
