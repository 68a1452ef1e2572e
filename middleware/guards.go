package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/internal/observability"
	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/services"
	"github.com/upb/schoolms-api/utils"
)

// SchoolParam is the route and query parameter naming the target school
const SchoolParam = "schoolId"

// CheckRole fails with a forbidden error unless the caller holds one of the roles.
// An empty role set admits any authenticated caller.
func CheckRole(ctx context.Context, required ...models.UserRole) error {
	identity := CurrentIdentity(ctx)
	if identity == nil || identity.Role == "" {
		return services.Forbidden(services.MsgRoleNotFound)
	}
	if len(required) == 0 || roleIn(identity.Role, required) {
		return nil
	}
	return services.Forbidden(fmt.Sprintf("%s. Required roles: %s", services.MsgRoleDenied, formatRoles(required)))
}

// CheckSchoolAccess fails unless the caller belongs to the target school.
// Super-admins pass when allowSuperAdmin is set. A nil target only requires
// the caller to belong to some school.
func CheckSchoolAccess(ctx context.Context, target *uuid.UUID, allowSuperAdmin bool) error {
	if allowSuperAdmin && IsSuperAdmin(ctx) {
		return nil
	}

	schoolID := CurrentSchoolID(ctx)
	if schoolID == nil {
		return services.Forbidden(services.MsgNoSchool)
	}
	if target != nil && *target != *schoolID {
		return services.Forbidden(services.MsgSchoolAccessDenied)
	}
	return nil
}

// SchoolScope enables the school guard for an operation
type SchoolScope struct {
	AllowSuperAdmin bool
}

// OperationRules declares the guards of one operation. Roles are checked first, then School.
type OperationRules struct {
	Roles  []models.UserRole
	School *SchoolScope
}

// Guards wraps handlers with operation-level authorization checks
type Guards struct {
	recorder DenialRecorder
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewGuards creates a new Guards. recorder and metrics may be nil.
func NewGuards(recorder DenialRecorder, metrics *observability.Metrics, logger *zap.Logger) *Guards {
	return &Guards{
		recorder: recorder,
		metrics:  metrics,
		logger:   logger,
	}
}

// Protect runs the role guard and then the school guard before next.
// Refusals are answered with the authorization failure response.
func (g *Guards) Protect(rules OperationRules, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if rules.Roles != nil {
			if err := CheckRole(ctx, rules.Roles...); err != nil {
				g.Deny(w, r, "role", err)
				return
			}
		}

		if rules.School != nil {
			target, ok := TargetSchoolID(r)
			if !ok {
				// malformed target ids never match the caller's school
				malformed := uuid.Nil
				target = &malformed
			}
			if err := CheckSchoolAccess(ctx, target, rules.School.AllowSuperAdmin); err != nil {
				g.Deny(w, r, "school", err)
				return
			}
		}

		next(w, r)
	})
}

// Deny logs, counts and records a refusal and writes the 403 response
func (g *Guards) Deny(w http.ResponseWriter, r *http.Request, guard string, err error) {
	ctx := r.Context()
	message := services.GetErrorMessage(err)

	fields := []zap.Field{
		zap.String("request_id", GetRequestIDFromContext(ctx)),
		zap.String("guard", guard),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("reason", message),
	}
	identity := CurrentIdentity(ctx)
	if identity != nil {
		fields = append(fields,
			zap.String("user_id", identity.UserID.String()),
			zap.String("role", string(identity.Role)))
	}
	g.logger.Warn("access denied", fields...)
	g.metrics.RecordDenial(guard)

	if g.recorder != nil && identity != nil {
		g.recorder.RecordAccessDenied(ctx, *identity, r.Method, r.URL.Path, message)
	}
	_ = utils.WriteAuthorizationFailure(w, r, message)
}

// TargetSchoolID reads the target school from the route parameter, then the query string.
// It returns (nil, true) when neither is present and (nil, false) when the value is not a UUID.
func TargetSchoolID(r *http.Request) (*uuid.UUID, bool) {
	raw := chi.URLParam(r, SchoolParam)
	if raw == "" {
		raw = r.URL.Query().Get(SchoolParam)
	}
	if raw == "" {
		return nil, true
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}
