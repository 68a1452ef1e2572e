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

func TestHandleProfile(t *testing.T) {
	logger := zap.NewNop()
	schoolID := uuid.New()

	t.Run("student profile", func(t *testing.T) {
		svc := new(MockProfileService)
		handler := NewProfileHandler(svc, logger)
		identity := schoolIdentity(models.RoleStudent, schoolID)

		user := models.NewUser(identity.Email, "hash", "Alan", "Turing", models.RoleStudent, &schoolID)
		user.ID = identity.UserID
		student := models.NewStudent(schoolID, "S-001", "Alan", "Turing")
		student.UserID = &user.ID

		svc.On("Get", mock.Anything, *identity).Return(&services.Profile{
			User:       user,
			SchoolName: "Greenfield High",
			Student:    student,
		}, nil)

		w := serve(t, http.MethodGet, "/api/student-portal/profile", "/api/student-portal/profile",
			nil, identity, handler.HandleProfile)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "Greenfield High", data["schoolName"])
		assert.NotNil(t, data["student"])
		assert.NotContains(t, data["user"], "password_hash")
		svc.AssertExpectations(t)
	})

	t.Run("deleted account", func(t *testing.T) {
		svc := new(MockProfileService)
		handler := NewProfileHandler(svc, logger)

		svc.On("Get", mock.Anything, mock.Anything).Return(nil, services.ErrUserNotFound)

		w := serve(t, http.MethodGet, "/api/parent-portal/profile", "/api/parent-portal/profile",
			nil, schoolIdentity(models.RoleParent, schoolID), handler.HandleProfile)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		handler := NewProfileHandler(new(MockProfileService), logger)

		w := serve(t, http.MethodGet, "/api/parent-portal/profile", "/api/parent-portal/profile",
			nil, nil, handler.HandleProfile)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
