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

func TestHandleCreateStudent(t *testing.T) {
	logger := zap.NewNop()
	schoolID := uuid.New()

	valid := CreateStudentRequest{
		StudentNumber: "S-001",
		FirstName:     "Alan",
		LastName:      "Turing",
		ClassName:     "10-A",
	}

	t.Run("created in the caller's school", func(t *testing.T) {
		svc := new(MockStudentService)
		handler := NewStudentHandler(svc, logger)
		admin := schoolIdentity(models.RoleSchoolAdmin, schoolID)

		student := models.NewStudent(schoolID, "S-001", "Alan", "Turing")
		svc.On("Create", mock.Anything, *admin, services.CreateStudentInput{
			StudentNumber: "S-001",
			FirstName:     "Alan",
			LastName:      "Turing",
			ClassName:     "10-A",
		}).Return(student, nil)

		w := serve(t, http.MethodPost, "/api/students", "/api/students", valid, admin, handler.HandleCreate)

		assert.Equal(t, http.StatusCreated, w.Code)
		data := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, student.ID.String(), data["id"])
		assert.Equal(t, schoolID.String(), data["school_id"])
		svc.AssertExpectations(t)
	})

	t.Run("duplicate student number", func(t *testing.T) {
		svc := new(MockStudentService)
		handler := NewStudentHandler(svc, logger)

		svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateStudent)

		w := serve(t, http.MethodPost, "/api/students", "/api/students", valid,
			schoolIdentity(models.RoleSchoolAdmin, schoolID), handler.HandleCreate)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("super admin without school", func(t *testing.T) {
		svc := new(MockStudentService)
		handler := NewStudentHandler(svc, logger)

		svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, services.ErrSchoolRequired)

		w := serve(t, http.MethodPost, "/api/students", "/api/students", valid, superAdminIdentity(), handler.HandleCreate)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := new(MockStudentService)
		handler := NewStudentHandler(svc, logger)

		w := serve(t, http.MethodPost, "/api/students", "/api/students", valid, nil, handler.HandleCreate)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleGetStudent(t *testing.T) {
	logger := zap.NewNop()
	schoolID := uuid.New()
	student := models.NewStudent(schoolID, "S-001", "Alan", "Turing")

	tests := []struct {
		name           string
		identity       *models.Identity
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "same school teacher",
			identity:       schoolIdentity(models.RoleClassTeacher, schoolID),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "other school admin",
			identity:       schoolIdentity(models.RoleSchoolAdmin, uuid.New()),
			expectedStatus: http.StatusForbidden,
			expectedMsg:    services.MsgSchoolAccessDenied,
		},
		{
			name:           "super admin bypass",
			identity:       superAdminIdentity(),
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockStudentService)
			handler := NewStudentHandler(svc, logger)

			svc.On("Get", mock.Anything, student.ID).Return(student, nil)

			w := serve(t, http.MethodGet, "/api/students/{id}", "/api/students/"+student.ID.String(),
				nil, tt.identity, handler.HandleGet)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, decodeBody(t, w)["message"])
			}
		})
	}

	t.Run("not found", func(t *testing.T) {
		svc := new(MockStudentService)
		handler := NewStudentHandler(svc, logger)
		missing := uuid.New()

		svc.On("Get", mock.Anything, missing).Return(nil, services.ErrStudentNotFound)

		w := serve(t, http.MethodGet, "/api/students/{id}", "/api/students/"+missing.String(),
			nil, schoolIdentity(models.RoleSchoolAdmin, schoolID), handler.HandleGet)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := new(MockStudentService)
		handler := NewStudentHandler(svc, logger)

		w := serve(t, http.MethodGet, "/api/students/{id}", "/api/students/not-a-uuid",
			nil, schoolIdentity(models.RoleSchoolAdmin, schoolID), handler.HandleGet)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleListStudentsBySchool(t *testing.T) {
	logger := zap.NewNop()
	schoolID := uuid.New()

	svc := new(MockStudentService)
	handler := NewStudentHandler(svc, logger)

	students := []*models.Student{
		models.NewStudent(schoolID, "S-001", "Alan", "Turing"),
		models.NewStudent(schoolID, "S-002", "Grace", "Hopper"),
	}
	svc.On("ListBySchool", mock.Anything, schoolID, 200, 10).Return(students, nil)

	w := serve(t, http.MethodGet, "/api/students/school/{schoolId}",
		"/api/students/school/"+schoolID.String()+"?limit=500&offset=10",
		nil, schoolIdentity(models.RoleSchoolAdmin, schoolID), handler.HandleListBySchool)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Len(t, data["items"], 2)
	assert.Equal(t, float64(200), data["limit"])
	assert.Equal(t, float64(10), data["offset"])
	svc.AssertExpectations(t)
}
