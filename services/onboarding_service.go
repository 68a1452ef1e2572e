package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

// RegisterSchoolInput carries a self-service school signup
type RegisterSchoolInput struct {
	SchoolName     string
	SchoolCode     string
	SchoolEmail    string
	SchoolPhone    string
	SchoolAddress  string
	AdminFirstName string
	AdminLastName  string
	AdminEmail     string
	AdminPassword  string
}

// OnboardingResult is the new school plus a logged-in session for its administrator
type OnboardingResult struct {
	School *models.School `json:"school"`
	Auth   *AuthResponse  `json:"auth"`
}

// OnboardingService registers schools together with their first administrator
type OnboardingService struct {
	schools  repositories.SchoolRepository
	users    repositories.UserRepository
	txMgr    repositories.TransactionManager
	tokens   TokenIssuer
	activity ActivityRecorder
	logger   *zap.Logger
}

// NewOnboardingService creates a new OnboardingService
func NewOnboardingService(schools repositories.SchoolRepository, users repositories.UserRepository, txMgr repositories.TransactionManager, tokens TokenIssuer, activity ActivityRecorder, logger *zap.Logger) *OnboardingService {
	return &OnboardingService{
		schools:  schools,
		users:    users,
		txMgr:    txMgr,
		tokens:   tokens,
		activity: activity,
		logger:   logger,
	}
}

// EmailAvailable reports whether email is free for a new administrator
func (s *OnboardingService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, WrapInternal("failed to check email", err)
	}
	return !exists, nil
}

// RegisterSchool creates the school and its SCHOOL_ADMIN in one transaction
func (s *OnboardingService) RegisterSchool(ctx context.Context, in RegisterSchoolInput) (*OnboardingResult, error) {
	hash, err := HashPassword(in.AdminPassword)
	if err != nil {
		return nil, err
	}

	school := models.NewSchool(in.SchoolName, in.SchoolCode)
	school.Email = in.SchoolEmail
	school.Phone = in.SchoolPhone
	school.Address = in.SchoolAddress

	schoolID := school.ID
	admin := models.NewUser(in.AdminEmail, hash, in.AdminFirstName, in.AdminLastName, models.RoleSchoolAdmin, &schoolID)

	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		taken, err := s.schools.ExistsByCode(ctx, school.SchoolCode)
		if err != nil {
			return WrapInternal("failed to check school code", err)
		}
		if taken {
			return ErrDuplicateSchoolCode
		}

		taken, err = s.users.ExistsByEmail(ctx, admin.Email)
		if err != nil {
			return WrapInternal("failed to check email", err)
		}
		if taken {
			return ErrDuplicateEmail
		}

		if err := s.schools.Create(ctx, school); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return ErrDuplicateSchoolCode
			}
			return WrapInternal("failed to create school", err)
		}
		if err := s.users.Create(ctx, admin); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return ErrDuplicateEmail
			}
			return WrapInternal("failed to create administrator", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("school onboarded",
		zap.String("school_id", school.ID.String()),
		zap.String("code", school.SchoolCode),
		zap.String("admin_id", admin.ID.String()),
	)

	if s.activity != nil {
		identity := admin.Identity()
		s.activity.RecordCreate(ctx, &identity, &schoolID, "school", school.ID, "School registered through self-service")
	}

	token, err := s.tokens.Issue(admin.Identity(), 0)
	if err != nil {
		return nil, WrapInternal("failed to issue token", err)
	}

	return &OnboardingResult{
		School: school,
		Auth: &AuthResponse{
			Token:      token,
			TokenType:  TokenTypeBearer,
			UserID:     admin.ID,
			Email:      admin.Email,
			FullName:   admin.FullName(),
			Role:       admin.Role,
			SchoolID:   admin.SchoolID,
			SchoolName: school.Name,
			ExpiresIn:  int64(s.tokens.TTL().Seconds()),
		},
	}, nil
}
