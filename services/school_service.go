package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

// SchoolSettings is the administrator view of a school
type SchoolSettings struct {
	SchoolID       uuid.UUID         `json:"schoolId"`
	Name           string            `json:"name"`
	SchoolCode     string            `json:"schoolCode"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Address        string            `json:"address,omitempty"`
	IsActive       bool              `json:"isActive"`
	AvailableRoles []models.UserRole `json:"availableRoles"`
}

// SchoolService reads schools for tenants and platform administrators
type SchoolService struct {
	schools repositories.SchoolRepository
	logger  *zap.Logger
}

// NewSchoolService creates a new SchoolService
func NewSchoolService(schools repositories.SchoolRepository, logger *zap.Logger) *SchoolService {
	return &SchoolService{schools: schools, logger: logger}
}

// Get loads a school by ID
func (s *SchoolService) Get(ctx context.Context, id uuid.UUID) (*models.School, error) {
	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, WrapInternal("failed to load school", err)
	}
	return school, nil
}

// List pages through every school on the platform
func (s *SchoolService) List(ctx context.Context, limit, offset int) ([]*models.School, error) {
	limit, offset = PageBounds(limit, offset)
	schools, err := s.schools.List(ctx, limit, offset)
	if err != nil {
		return nil, WrapInternal("failed to list schools", err)
	}
	if schools == nil {
		schools = []*models.School{}
	}
	return schools, nil
}

// Settings returns the administrator view of a school
func (s *SchoolService) Settings(ctx context.Context, id uuid.UUID) (*SchoolSettings, error) {
	school, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var roles []models.UserRole
	for _, r := range models.AllRoles() {
		if r != models.RoleSuperAdmin {
			roles = append(roles, r)
		}
	}

	return &SchoolSettings{
		SchoolID:       school.ID,
		Name:           school.Name,
		SchoolCode:     school.SchoolCode,
		Email:          school.Email,
		Phone:          school.Phone,
		Address:        school.Address,
		IsActive:       school.IsActive,
		AvailableRoles: roles,
	}, nil
}
