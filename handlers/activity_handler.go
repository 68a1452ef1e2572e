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

// ActivityLogReader lists a school's activity log
type ActivityLogReader interface {
	ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error)
}

// ActivityHandler serves the activity log to school administrators
type ActivityHandler struct {
	logs   ActivityLogReader
	logger *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(logs ActivityLogReader, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		logs:   logs,
		logger: logger,
	}
}

// HandleListBySchool handles GET /api/activity-logs/school/{schoolId}
//
// @Summary Activity log of a school
// @Tags activity-logs
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} Page
// @Failure 403 {object} utils.SecurityErrorResponse
// @Router /api/activity-logs/school/{schoolId} [get]
func (h *ActivityHandler) HandleListBySchool(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	schoolID, ok := uuidParam(w, r, middleware.SchoolParam)
	if !ok {
		return
	}

	limit, offset := services.PageBounds(pagination(r))
	logs, err := h.logs.ListBySchool(r.Context(), schoolID, limit, offset)
	if err != nil {
		HandleServiceError(w, services.WrapInternal("failed to list activity logs", err), log)
		return
	}
	writeOK(w, log, Page{Items: logs, Limit: limit, Offset: offset})
}
