package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/services"
)

func TestHandleValidateSchool(t *testing.T) {
	logger := zap.NewNop()
	schoolID := uuid.New()

	t.Run("known school", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		svc.On("ValidateSchool", mock.Anything, "GREEN").Return(&services.SchoolValidation{
			Valid:          true,
			SchoolID:       &schoolID,
			SchoolName:     "Greenfield High",
			AvailableRoles: []string{"admin", "teacher", "student", "parent"},
			Message:        "School validated successfully",
		}, nil)

		w := serve(t, http.MethodPost, "/api/auth/validate-school", "/api/auth/validate-school",
			ValidateSchoolRequest{SchoolCode: "GREEN"}, nil, handler.HandleValidateSchool)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["valid"])
		assert.Equal(t, schoolID.String(), body["schoolId"])
		assert.Equal(t, "Greenfield High", body["schoolName"])
		svc.AssertExpectations(t)
	})

	t.Run("unknown school is not an error", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		svc.On("ValidateSchool", mock.Anything, "NOPE").Return(&services.SchoolValidation{
			Valid:   false,
			Message: "Invalid school code",
		}, nil)

		w := serve(t, http.MethodPost, "/api/auth/validate-school", "/api/auth/validate-school",
			ValidateSchoolRequest{SchoolCode: "NOPE"}, nil, handler.HandleValidateSchool)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["valid"])
		assert.Equal(t, "Invalid school code", body["message"])
	})

	t.Run("missing code", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		w := serve(t, http.MethodPost, "/api/auth/validate-school", "/api/auth/validate-school",
			`{}`, nil, handler.HandleValidateSchool)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["details"], "schoolCode")
		svc.AssertNotCalled(t, "ValidateSchool", mock.Anything, mock.Anything)
	})
}

func TestHandleLogin(t *testing.T) {
	logger := zap.NewNop()

	t.Run("successful login", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)
		userID := uuid.New()

		svc.On("Login", mock.Anything, services.LoginInput{
			Email:      "teacher@greenfield.edu",
			Password:   "s3cret-pass",
			SchoolCode: "GREEN",
		}).Return(&services.AuthResponse{
			Token:     "signed.jwt.value",
			TokenType: services.TokenTypeBearer,
			UserID:    userID,
			Email:     "teacher@greenfield.edu",
			FullName:  "Ada Lovelace",
			Role:      models.RoleClassTeacher,
			ExpiresIn: 86400,
		}, nil)

		w := serve(t, http.MethodPost, "/api/auth/login", "/api/auth/login", LoginRequest{
			Email:      "teacher@greenfield.edu",
			Password:   "s3cret-pass",
			SchoolCode: "GREEN",
		}, nil, handler.HandleLogin)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "signed.jwt.value", body["token"])
		assert.Equal(t, "Bearer", body["tokenType"])
		assert.Equal(t, "CLASS_TEACHER", body["role"])
		assert.Equal(t, float64(86400), body["expiresIn"])
		svc.AssertExpectations(t)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		svc.On("Login", mock.Anything, mock.Anything).Return(nil, services.ErrInvalidCredentials)

		w := serve(t, http.MethodPost, "/api/auth/login", "/api/auth/login", LoginRequest{
			Email:    "teacher@greenfield.edu",
			Password: "wrong",
		}, nil, handler.HandleLogin)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "invalid email or password", body["message"])
	})

	t.Run("malformed email", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		w := serve(t, http.MethodPost, "/api/auth/login", "/api/auth/login", LoginRequest{
			Email:    "not-an-email",
			Password: "whatever",
		}, nil, handler.HandleLogin)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("empty body", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		w := serve(t, http.MethodPost, "/api/auth/login", "/api/auth/login", nil, nil, handler.HandleLogin)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleRegister(t *testing.T) {
	logger := zap.NewNop()
	schoolID := uuid.New()

	valid := RegisterRequest{
		Email:     "parent@greenfield.edu",
		Password:  "longenough",
		FirstName: "Grace",
		LastName:  "Hopper",
		Role:      "parent",
		SchoolID:  &schoolID,
	}

	t.Run("created", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		svc.On("Register", mock.Anything, mock.MatchedBy(func(in services.RegisterInput) bool {
			return in.Role == models.RoleParent && in.SchoolID != nil && *in.SchoolID == schoolID
		})).Return(&services.AuthResponse{
			Token:     "signed.jwt.value",
			TokenType: services.TokenTypeBearer,
			Role:      models.RoleParent,
			SchoolID:  &schoolID,
		}, nil)

		w := serve(t, http.MethodPost, "/api/auth/register", "/api/auth/register", valid, nil, handler.HandleRegister)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "PARENT", body["role"])
		svc.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		svc.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateEmail)

		w := serve(t, http.MethodPost, "/api/auth/register", "/api/auth/register", valid, nil, handler.HandleRegister)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		req := valid
		req.Role = "JANITOR"
		w := serve(t, http.MethodPost, "/api/auth/register", "/api/auth/register", req, nil, handler.HandleRegister)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["details"], "role")
	})

	t.Run("short password", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		req := valid
		req.Password = "short"
		w := serve(t, http.MethodPost, "/api/auth/register", "/api/auth/register", req, nil, handler.HandleRegister)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleMe(t *testing.T) {
	handler := NewAuthHandler(new(MockAuthService), zap.NewNop())

	t.Run("returns the token identity", func(t *testing.T) {
		identity := schoolIdentity(models.RoleSchoolAdmin, uuid.New())

		w := serve(t, http.MethodGet, "/api/auth/me", "/api/auth/me", nil, identity, handler.HandleMe)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, identity.UserID.String(), data["userId"])
		assert.Equal(t, "SCHOOL_ADMIN", data["role"])
		assert.Equal(t, identity.SchoolID.String(), data["schoolId"])
	})

	t.Run("anonymous", func(t *testing.T) {
		w := serve(t, http.MethodGet, "/api/auth/me", "/api/auth/me", nil, nil, handler.HandleMe)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "/api/auth/me", body["path"])
	})
}
