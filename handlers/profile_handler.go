package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/schoolms-api/middleware"
	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/services"
	"github.com/upb/schoolms-api/utils"
)

// ProfileService is the part of services.ProfileService used over HTTP
type ProfileService interface {
	Get(ctx context.Context, identity models.Identity) (*services.Profile, error)
}

// ProfileHandler serves the caller's own profile on every portal
type ProfileHandler struct {
	profiles ProfileService
	logger   *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// HandleProfile handles GET /api/{portal}/profile
//
// @Summary Portal profile of the caller
// @Tags portals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.Profile
// @Failure 401 {object} utils.SecurityErrorResponse
// @Failure 403 {object} utils.SecurityErrorResponse
// @Router /api/student-portal/profile [get]
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	identity := middleware.CurrentIdentity(r.Context())
	if identity == nil {
		_ = utils.WriteAuthenticationFailure(w, r)
		return
	}

	profile, err := h.profiles.Get(r.Context(), *identity)
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}
	writeOK(w, log, profile)
}
