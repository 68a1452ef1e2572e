package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

// CreateStudentInput carries a new enrolment
type CreateStudentInput struct {
	SchoolID      *uuid.UUID // honoured only for platform administrators
	StudentNumber string
	FirstName     string
	LastName      string
	Email         string
	ClassName     string
}

// StudentService manages student records within a school
type StudentService struct {
	students repositories.StudentRepository
	schools  repositories.SchoolRepository
	activity ActivityRecorder
	logger   *zap.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(students repositories.StudentRepository, schools repositories.SchoolRepository, activity ActivityRecorder, logger *zap.Logger) *StudentService {
	return &StudentService{
		students: students,
		schools:  schools,
		activity: activity,
		logger:   logger,
	}
}

// Create enrols a student. Callers bound to a school always create in their own school;
// a SUPER_ADMIN must name the school.
func (s *StudentService) Create(ctx context.Context, actor models.Identity, in CreateStudentInput) (*models.Student, error) {
	var schoolID uuid.UUID
	switch {
	case actor.Role == models.RoleSuperAdmin:
		if in.SchoolID == nil {
			return nil, ErrSchoolRequired
		}
		schoolID = *in.SchoolID
	case actor.SchoolID == nil:
		return nil, ErrNoSchool
	default:
		schoolID = *actor.SchoolID
	}

	if _, err := s.schools.GetByID(ctx, schoolID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, WrapInternal("failed to look up school", err)
	}

	student := models.NewStudent(schoolID, in.StudentNumber, in.FirstName, in.LastName)
	student.Email = in.Email
	student.ClassName = in.ClassName

	if err := s.students.Create(ctx, student); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateStudent
		}
		return nil, WrapInternal("failed to create student", err)
	}

	s.logger.Info("student created",
		zap.String("student_id", student.ID.String()),
		zap.String("school_id", schoolID.String()),
		zap.String("actor_id", actor.UserID.String()),
	)

	if s.activity != nil {
		s.activity.RecordCreate(ctx, &actor, &schoolID, "student", student.ID, "Student enrolled")
	}
	return student, nil
}

// Get loads a student. Tenant checks are the caller's concern.
func (s *StudentService) Get(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, WrapInternal("failed to load student", err)
	}
	return student, nil
}

// ListBySchool pages through a school's students
func (s *StudentService) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.Student, error) {
	limit, offset = PageBounds(limit, offset)
	students, err := s.students.ListBySchool(ctx, schoolID, limit, offset)
	if err != nil {
		return nil, WrapInternal("failed to list students", err)
	}
	if students == nil {
		students = []*models.Student{}
	}
	return students, nil
}
