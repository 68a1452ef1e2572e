package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

// TokenTypeBearer is reported in every token response
const TokenTypeBearer = "Bearer"

// availableRoles is what the login screen offers once a school code is accepted
var availableRoles = []string{"admin", "teacher", "student", "parent"}

// SchoolValidation is the outcome of the first login step
type SchoolValidation struct {
	Valid          bool       `json:"valid"`
	SchoolID       *uuid.UUID `json:"schoolId,omitempty"`
	SchoolName     string     `json:"schoolName,omitempty"`
	AvailableRoles []string   `json:"availableRoles,omitempty"`
	Message        string     `json:"message"`
}

// AuthResponse is returned by login, register and school onboarding
type AuthResponse struct {
	Token      string          `json:"token"`
	TokenType  string          `json:"tokenType"`
	UserID     uuid.UUID       `json:"userId"`
	Email      string          `json:"email"`
	FullName   string          `json:"fullName"`
	Role       models.UserRole `json:"role"`
	SchoolID   *uuid.UUID      `json:"schoolId,omitempty"`
	SchoolName string          `json:"schoolName,omitempty"`
	ExpiresIn  int64           `json:"expiresIn"` // seconds
}

// LoginInput carries the second login step
type LoginInput struct {
	Email      string
	Password   string
	SchoolCode string
}

// RegisterInput carries a new account
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      models.UserRole
	SchoolID  *uuid.UUID
}

// AuthService implements school validation, login and registration
type AuthService struct {
	schools  repositories.SchoolRepository
	users    repositories.UserRepository
	tokens   TokenIssuer
	activity ActivityRecorder
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(schools repositories.SchoolRepository, users repositories.UserRepository, tokens TokenIssuer, activity ActivityRecorder, logger *zap.Logger) *AuthService {
	return &AuthService{
		schools:  schools,
		users:    users,
		tokens:   tokens,
		activity: activity,
		logger:   logger,
	}
}

// ValidateSchool resolves a school code. An unknown or inactive code is a negative result, not an error.
func (s *AuthService) ValidateSchool(ctx context.Context, code string) (*SchoolValidation, error) {
	school, err := s.schools.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &SchoolValidation{Valid: false, Message: "Invalid school code"}, nil
		}
		return nil, WrapInternal("failed to look up school", err)
	}
	if !school.IsActive {
		return &SchoolValidation{Valid: false, Message: "School is not active"}, nil
	}

	id := school.ID
	roles := make([]string, len(availableRoles))
	copy(roles, availableRoles)

	return &SchoolValidation{
		Valid:          true,
		SchoolID:       &id,
		SchoolName:     school.Name,
		AvailableRoles: roles,
		Message:        "School found successfully",
	}, nil
}

// Login checks credentials and issues a token.
// Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Info("login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, WrapInternal("failed to load user", err)
	}

	if !CheckPassword(user.PasswordHash, in.Password) {
		s.logger.Warn("login failed: invalid password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	var school *models.School
	if code := strings.TrimSpace(in.SchoolCode); code != "" {
		school, err = s.schools.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrInvalidSchoolCode
			}
			return nil, WrapInternal("failed to look up school", err)
		}
		if user.SchoolID == nil || *user.SchoolID != school.ID {
			return nil, ErrSchoolMismatch
		}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, WrapInternal("failed to update last login", err)
	}

	resp, err := s.respond(ctx, user, school)
	if err != nil {
		return nil, err
	}

	if s.activity != nil {
		s.activity.RecordLogin(ctx, user)
	}
	s.logger.Info("login successful",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return resp, nil
}

// Register creates an account and logs it in.
// SUPER_ADMIN cannot self-register; school-bound roles need an existing school.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if in.Role == models.RoleSuperAdmin {
		return nil, NewDomainError(ErrorTypeForbidden, "platform administrators cannot self-register", nil)
	}
	if in.SchoolID == nil {
		return nil, ErrSchoolRequired
	}

	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, WrapInternal("failed to check email", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	school, err := s.schools.GetByID(ctx, *in.SchoolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, WrapInternal("failed to look up school", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(in.Email, hash, in.FirstName, in.LastName, in.Role, in.SchoolID)
	user.Phone = in.Phone
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, WrapInternal("failed to create user", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("school_id", school.ID.String()),
	)

	if s.activity != nil {
		identity := user.Identity()
		s.activity.RecordCreate(ctx, &identity, user.SchoolID, "user", user.ID, "User registered")
	}

	return s.respond(ctx, user, school)
}

// respond issues the token and fills the response. school may be nil; it is loaded when the user has one.
func (s *AuthService) respond(ctx context.Context, user *models.User, school *models.School) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user.Identity(), 0)
	if err != nil {
		return nil, WrapInternal("failed to issue token", err)
	}

	resp := &AuthResponse{
		Token:     token,
		TokenType: TokenTypeBearer,
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName(),
		Role:      user.Role,
		SchoolID:  user.SchoolID,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}

	if user.SchoolID != nil {
		if school == nil || school.ID != *user.SchoolID {
			school, err = s.schools.GetByID(ctx, *user.SchoolID)
			if err != nil {
				s.logger.Warn("school of user not found", zap.String("school_id", user.SchoolID.String()), zap.Error(err))
				school = nil
			}
		}
		if school != nil {
			resp.SchoolName = school.Name
		}
	}

	return resp, nil
}

// HashPassword hashes a password with bcrypt at the default cost
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", WrapError(ErrorTypeValidation, "password cannot be hashed", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
