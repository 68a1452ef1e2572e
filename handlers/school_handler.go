package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/middleware"
	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/services"
)

// SchoolService is the part of services.SchoolService used over HTTP
type SchoolService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.School, error)
	List(ctx context.Context, limit, offset int) ([]*models.School, error)
	Settings(ctx context.Context, id uuid.UUID) (*services.SchoolSettings, error)
}

// SchoolHandler serves school reads for members and platform administrators
type SchoolHandler struct {
	schools SchoolService
	logger  *zap.Logger
}

// NewSchoolHandler creates a new SchoolHandler
func NewSchoolHandler(schools SchoolService, logger *zap.Logger) *SchoolHandler {
	return &SchoolHandler{
		schools: schools,
		logger:  logger,
	}
}

// HandleGet handles GET /api/schools/{schoolId}
//
// @Summary Get a school
// @Tags schools
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Success 200 {object} models.School
// @Failure 403 {object} utils.SecurityErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/schools/{schoolId} [get]
func (h *SchoolHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	id, ok := uuidParam(w, r, middleware.SchoolParam)
	if !ok {
		return
	}

	school, err := h.schools.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}
	writeOK(w, log, school)
}

// HandleSettings handles GET /api/schools/{schoolId}/settings
//
// @Summary School settings
// @Tags schools
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Success 200 {object} services.SchoolSettings
// @Failure 403 {object} utils.SecurityErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/schools/{schoolId}/settings [get]
func (h *SchoolHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	id, ok := uuidParam(w, r, middleware.SchoolParam)
	if !ok {
		return
	}

	settings, err := h.schools.Settings(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}
	writeOK(w, log, settings)
}

// HandleList handles GET /api/platform-admin/schools
//
// @Summary List all schools
// @Tags platform-admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} Page
// @Failure 403 {object} utils.SecurityErrorResponse
// @Router /api/platform-admin/schools [get]
func (h *SchoolHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	limit, offset := services.PageBounds(pagination(r))
	schools, err := h.schools.List(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}
	writeOK(w, log, Page{Items: schools, Limit: limit, Offset: offset})
}
