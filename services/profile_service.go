package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

// Profile is what a portal shows about the signed-in user
type Profile struct {
	User       *models.User    `json:"user"`
	SchoolName string          `json:"schoolName,omitempty"`
	Student    *models.Student `json:"student,omitempty"`
}

// ProfileService assembles portal profiles
type ProfileService struct {
	users    repositories.UserRepository
	schools  repositories.SchoolRepository
	students repositories.StudentRepository
	logger   *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(users repositories.UserRepository, schools repositories.SchoolRepository, students repositories.StudentRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		users:    users,
		schools:  schools,
		students: students,
		logger:   logger,
	}
}

// Get builds the profile of identity. Students also get their enrolment record when one is linked.
func (s *ProfileService) Get(ctx context.Context, identity models.Identity) (*Profile, error) {
	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to load user", err)
	}

	profile := &Profile{User: user}

	if user.SchoolID != nil {
		school, err := s.schools.GetByID(ctx, *user.SchoolID)
		switch {
		case err == nil:
			profile.SchoolName = school.Name
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, WrapInternal("failed to load school", err)
		}
	}

	if user.Role == models.RoleStudent {
		student, err := s.students.GetByUserID(ctx, user.ID)
		switch {
		case err == nil:
			profile.Student = student
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, WrapInternal("failed to load student record", err)
		}
	}

	return profile, nil
}
