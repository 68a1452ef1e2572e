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

// StudentService is the part of services.StudentService used over HTTP
type StudentService interface {
	Create(ctx context.Context, actor models.Identity, in services.CreateStudentInput) (*models.Student, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Student, error)
	ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.Student, error)
}

// CreateStudentRequest enrols a student. SchoolID is read only for platform administrators.
type CreateStudentRequest struct {
	SchoolID      *uuid.UUID `json:"schoolId,omitempty"`
	StudentNumber string     `json:"studentNumber" validate:"required,max=50"`
	FirstName     string     `json:"firstName" validate:"required,max=100"`
	LastName      string     `json:"lastName" validate:"required,max=100"`
	Email         string     `json:"email,omitempty" validate:"omitempty,email"`
	ClassName     string     `json:"className,omitempty" validate:"omitempty,max=50"`
}

// StudentHandler serves the tenant-scoped student endpoints
type StudentHandler struct {
	students StudentService
	logger   *zap.Logger
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(students StudentService, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{
		students: students,
		logger:   logger,
	}
}

// HandleCreate handles POST /api/students
//
// @Summary Enrol a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateStudentRequest true "Student"
// @Success 201 {object} models.Student
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.SecurityErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/students [post]
func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	identity := middleware.CurrentIdentity(r.Context())
	if identity == nil {
		_ = utils.WriteAuthenticationFailure(w, r)
		return
	}

	var req CreateStudentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, log)
		return
	}

	student, err := h.students.Create(r.Context(), *identity, services.CreateStudentInput{
		SchoolID:      req.SchoolID,
		StudentNumber: req.StudentNumber,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		ClassName:     req.ClassName,
	})
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}

	if err := utils.WriteCreated(w, student); err != nil {
		log.Error("failed to write response", zap.Error(err))
	}
}

// HandleGet handles GET /api/students/{id}.
// The tenant check runs against the school of the loaded record.
//
// @Summary Get a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} models.Student
// @Failure 403 {object} utils.SecurityErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/students/{id} [get]
func (h *StudentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	student, err := h.students.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}

	if err := middleware.CheckSchoolAccess(r.Context(), &student.SchoolID, true); err != nil {
		log.Warn("cross-school student access refused",
			zap.String("student_id", id.String()),
			zap.String("user_id", middleware.CurrentUserID(r.Context()).String()))
		_ = utils.WriteAuthorizationFailure(w, r, services.GetErrorMessage(err))
		return
	}

	writeOK(w, log, student)
}

// HandleListBySchool handles GET /api/students/school/{schoolId}
//
// @Summary List a school's students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param schoolId path string true "School ID"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} Page
// @Failure 403 {object} utils.SecurityErrorResponse
// @Router /api/students/school/{schoolId} [get]
func (h *StudentHandler) HandleListBySchool(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	schoolID, ok := uuidParam(w, r, middleware.SchoolParam)
	if !ok {
		return
	}

	limit, offset := services.PageBounds(pagination(r))
	students, err := h.students.ListBySchool(r.Context(), schoolID, limit, offset)
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}

	writeOK(w, log, Page{Items: students, Limit: limit, Offset: offset})
}
