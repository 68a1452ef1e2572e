package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/internal/observability"
	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/token"
)

// MockTokenDecoder is a mock implementation of token.Decoder
type MockTokenDecoder struct {
	mock.Mock
}

func (m *MockTokenDecoder) Decode(tokenString string) (*models.Identity, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func newIdentity(role models.UserRole, schoolID *uuid.UUID) *models.Identity {
	return &models.Identity{
		UserID:   uuid.New(),
		Email:    "user@example.com",
		Role:     role,
		SchoolID: schoolID,
	}
}

func TestAuthenticate(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid token attaches identity", func(t *testing.T) {
		decoder := new(MockTokenDecoder)
		metrics := observability.NewMetrics(prometheus.NewRegistry())
		auth := NewAuthenticator(decoder, metrics, logger)

		schoolID := uuid.New()
		identity := newIdentity(models.RoleSchoolAdmin, &schoolID)
		decoder.On("Decode", "valid-token").Return(identity, nil)

		var seen *models.Identity
		handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = CurrentIdentity(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, identity, seen)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthAttemptsTotal.WithLabelValues(observability.AuthOutcomeAuthenticated)))
		decoder.AssertExpectations(t)
	})

	t.Run("missing header continues anonymously", func(t *testing.T) {
		decoder := new(MockTokenDecoder)
		metrics := observability.NewMetrics(prometheus.NewRegistry())
		auth := NewAuthenticator(decoder, metrics, logger)

		called := false
		handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			assert.Nil(t, CurrentIdentity(r.Context()))
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/students", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthAttemptsTotal.WithLabelValues(observability.AuthOutcomeNoToken)))
		decoder.AssertNotCalled(t, "Decode", mock.Anything)
	})

	t.Run("non bearer scheme is treated as no token", func(t *testing.T) {
		decoder := new(MockTokenDecoder)
		auth := NewAuthenticator(decoder, nil, logger)

		handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, CurrentIdentity(r.Context()))
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		decoder.AssertNotCalled(t, "Decode", mock.Anything)
	})

	t.Run("invalid token continues without identity and never writes", func(t *testing.T) {
		decoder := new(MockTokenDecoder)
		metrics := observability.NewMetrics(prometheus.NewRegistry())
		auth := NewAuthenticator(decoder, metrics, logger)

		decoder.On("Decode", "expired-token").Return(nil, token.ErrTokenExpired)

		called := false
		handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			assert.Nil(t, CurrentIdentity(r.Context()))
			w.WriteHeader(http.StatusTeapot)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Authorization", "Bearer expired-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthAttemptsTotal.WithLabelValues(observability.AuthOutcomeRejected)))
	})

	t.Run("identity does not leak between requests", func(t *testing.T) {
		decoder := new(MockTokenDecoder)
		auth := NewAuthenticator(decoder, nil, logger)
		decoder.On("Decode", "valid-token").Return(newIdentity(models.RoleStudent, nil), nil)

		var identities []*models.Identity
		handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identities = append(identities, CurrentIdentity(r.Context()))
		}))

		first := httptest.NewRequest(http.MethodGet, "/api/student-portal/profile", nil)
		first.Header.Set("Authorization", "Bearer valid-token")
		handler.ServeHTTP(httptest.NewRecorder(), first)
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/student-portal/profile", nil))

		assert.NotNil(t, identities[0])
		assert.Nil(t, identities[1])
	})
}

func TestAuthenticate_WithRealCodec(t *testing.T) {
	codec, err := token.NewCodec(token.Config{Secret: "integration-secret-of-sufficient-size!", Issuer: "schoolms"})
	assert.NoError(t, err)

	schoolID := uuid.New()
	identity := newIdentity(models.RoleClassTeacher, &schoolID)
	signed, err := codec.Issue(*identity, 0)
	assert.NoError(t, err)

	auth := NewAuthenticator(codec, nil, zap.NewNop())
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		assert.Equal(t, identity.UserID, CurrentUserID(ctx))
		assert.Equal(t, models.RoleClassTeacher, CurrentRole(ctx))
		assert.Equal(t, schoolID, *CurrentSchoolID(ctx))
		assert.True(t, IsTeacher(ctx))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/students/school/"+schoolID.String(), nil)
	req.Header.Set("Authorization", "bearer "+signed)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"uppercase scheme", "BEARER abc", "abc"},
		{"extra whitespace", "Bearer   abc  ", "abc"},
		{"missing token", "Bearer", ""},
		{"other scheme", "Token abc", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, extractBearerToken(req))
		})
	}
}
