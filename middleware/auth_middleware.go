package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/upb/schoolms-api/internal/observability"
	"github.com/upb/schoolms-api/token"
)

// Authenticator resolves the bearer token of each request into an identity.
// It never writes a response: requests without a valid token continue anonymously
// and are refused later by the AccessPolicy or a guard if the resource needs a caller.
type Authenticator struct {
	decoder token.Decoder
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuthenticator creates a new Authenticator. metrics may be nil.
func NewAuthenticator(decoder token.Decoder, metrics *observability.Metrics, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		decoder: decoder,
		metrics: metrics,
		logger:  logger,
	}
}

// Authenticate is the per-request middleware
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw := extractBearerToken(r)
		if raw == "" {
			a.metrics.RecordAuthAttempt(observability.AuthOutcomeNoToken)
			next.ServeHTTP(w, r)
			return
		}

		identity, err := a.decoder.Decode(raw)
		if err != nil {
			a.metrics.RecordAuthAttempt(observability.AuthOutcomeRejected)
			a.logger.Warn("token rejected",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		a.metrics.RecordAuthAttempt(observability.AuthOutcomeAuthenticated)
		a.logger.Debug("authentication successful",
			zap.String("request_id", GetRequestIDFromContext(ctx)),
			zap.String("user_id", identity.UserID.String()),
			zap.String("role", string(identity.Role)))

		next.ServeHTTP(w, r.WithContext(withIdentity(ctx, identity)))
	})
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
