package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/services"
)

func TestHandleRegisterSchool(t *testing.T) {
	logger := zap.NewNop()

	valid := RegisterSchoolRequest{
		SchoolName:     "Greenfield High",
		SchoolCode:     "GREEN-01",
		AdminFirstName: "Ada",
		AdminLastName:  "Lovelace",
		AdminEmail:     "ada@greenfield.edu",
		AdminPassword:  "correct-horse",
	}

	t.Run("created", func(t *testing.T) {
		svc := new(MockOnboardingService)
		handler := NewOnboardingHandler(svc, logger)

		school := models.NewSchool("Greenfield High", "GREEN-01")
		svc.On("RegisterSchool", mock.Anything, mock.MatchedBy(func(in services.RegisterSchoolInput) bool {
			return in.SchoolCode == "GREEN-01" && in.AdminEmail == "ada@greenfield.edu"
		})).Return(&services.OnboardingResult{
			School: school,
			Auth: &services.AuthResponse{
				Token:     "signed.jwt.value",
				TokenType: services.TokenTypeBearer,
				Role:      models.RoleSchoolAdmin,
				SchoolID:  &school.ID,
			},
		}, nil)

		w := serve(t, http.MethodPost, "/api/self-service/register-school", "/api/self-service/register-school",
			valid, nil, handler.HandleRegisterSchool)

		assert.Equal(t, http.StatusCreated, w.Code)
		data := decodeBody(t, w)["data"].(map[string]interface{})
		auth := data["auth"].(map[string]interface{})
		assert.Equal(t, "SCHOOL_ADMIN", auth["role"])
		svc.AssertExpectations(t)
	})

	t.Run("duplicate school code", func(t *testing.T) {
		svc := new(MockOnboardingService)
		handler := NewOnboardingHandler(svc, logger)

		svc.On("RegisterSchool", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateSchoolCode)

		w := serve(t, http.MethodPost, "/api/self-service/register-school", "/api/self-service/register-school",
			valid, nil, handler.HandleRegisterSchool)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("malformed school code", func(t *testing.T) {
		svc := new(MockOnboardingService)
		handler := NewOnboardingHandler(svc, logger)

		req := valid
		req.SchoolCode = "a b"
		w := serve(t, http.MethodPost, "/api/self-service/register-school", "/api/self-service/register-school",
			req, nil, handler.HandleRegisterSchool)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w)["details"], "schoolCode")
	})
}

func TestHandleCheckEmail(t *testing.T) {
	logger := zap.NewNop()

	t.Run("available", func(t *testing.T) {
		svc := new(MockOnboardingService)
		handler := NewOnboardingHandler(svc, logger)

		svc.On("EmailAvailable", mock.Anything, "new@greenfield.edu").Return(true, nil)

		w := serve(t, http.MethodGet, "/api/self-service/check-email", "/api/self-service/check-email?email=new@greenfield.edu",
			nil, nil, handler.HandleCheckEmail)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, true, data["available"])
	})

	t.Run("missing email", func(t *testing.T) {
		svc := new(MockOnboardingService)
		handler := NewOnboardingHandler(svc, logger)

		w := serve(t, http.MethodGet, "/api/self-service/check-email", "/api/self-service/check-email",
			nil, nil, handler.HandleCheckEmail)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "EmailAvailable", mock.Anything, mock.Anything)
	})
}
