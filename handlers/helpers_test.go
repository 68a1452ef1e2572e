package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/middleware"
	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/services"
	"github.com/upb/schoolms-api/token"
)

const testSigningSecret = "handler-test-signing-secret-0123456789"

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(token.Config{
		Secret: testSigningSecret,
		Issuer: "schoolms",
		TTL:    time.Hour,
	})
	require.NoError(t, err)
	return codec
}

// serve routes one request through chi and the Authenticator, so route params
// and the caller identity reach the handler the same way they do in production
func serve(t *testing.T, method, pattern, target string, body interface{}, identity *models.Identity, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	codec := newTestCodec(t)
	router := chi.NewRouter()
	router.Use(middleware.NewAuthenticator(codec, nil, zap.NewNop()).Authenticate)
	router.Method(method, pattern, h)

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if identity != nil {
		signed, err := codec.Issue(*identity, 0)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+signed)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func schoolIdentity(role models.UserRole, schoolID uuid.UUID) *models.Identity {
	return &models.Identity{
		UserID:   uuid.New(),
		Email:    "staff@greenfield.edu",
		Role:     role,
		SchoolID: &schoolID,
	}
}

func superAdminIdentity() *models.Identity {
	return &models.Identity{
		UserID: uuid.New(),
		Email:  "root@schoolms.io",
		Role:   models.RoleSuperAdmin,
	}
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ValidateSchool(ctx context.Context, code string) (*services.SchoolValidation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SchoolValidation), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, in services.LoginInput) (*services.AuthResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*services.AuthResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResponse), args.Error(1)
}

type MockPasswordResetService struct {
	mock.Mock
}

func (m *MockPasswordResetService) Request(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockPasswordResetService) Verify(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

type MockOnboardingService struct {
	mock.Mock
}

func (m *MockOnboardingService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockOnboardingService) RegisterSchool(ctx context.Context, in services.RegisterSchoolInput) (*services.OnboardingResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.OnboardingResult), args.Error(1)
}

type MockStudentService struct {
	mock.Mock
}

func (m *MockStudentService) Create(ctx context.Context, actor models.Identity, in services.CreateStudentInput) (*models.Student, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentService) Get(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentService) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.Student, error) {
	args := m.Called(ctx, schoolID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Student), args.Error(1)
}

type MockSchoolService struct {
	mock.Mock
}

func (m *MockSchoolService) Get(ctx context.Context, id uuid.UUID) (*models.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.School), args.Error(1)
}

func (m *MockSchoolService) List(ctx context.Context, limit, offset int) ([]*models.School, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.School), args.Error(1)
}

func (m *MockSchoolService) Settings(ctx context.Context, id uuid.UUID) (*services.SchoolSettings, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SchoolSettings), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, identity models.Identity) (*services.Profile, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Profile), args.Error(1)
}

type MockActivityLogReader struct {
	mock.Mock
}

func (m *MockActivityLogReader) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error) {
	args := m.Called(ctx, schoolID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ActivityLog), args.Error(1)
}

type MockPaymentWebhookService struct {
	mock.Mock
}

func (m *MockPaymentWebhookService) Handle(ctx context.Context, body []byte, signature string) (*services.WebhookAck, error) {
	args := m.Called(ctx, body, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.WebhookAck), args.Error(1)
}
