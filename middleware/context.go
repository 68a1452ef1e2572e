package middleware

import (
	"context"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/upb/schoolms-api/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// identityKey is the context key for the authenticated identity
	identityKey contextKey = "identity"
)

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}

// withIdentity attaches the identity to the context. Only the Authenticator calls it.
func withIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// CurrentIdentity returns the identity authenticated for this request, or nil
func CurrentIdentity(ctx context.Context) *models.Identity {
	if val := ctx.Value(identityKey); val != nil {
		if identity, ok := val.(*models.Identity); ok {
			return identity
		}
	}
	return nil
}

// IsAuthenticated reports whether the request carries an identity
func IsAuthenticated(ctx context.Context) bool {
	return CurrentIdentity(ctx) != nil
}

// CurrentUserID returns the caller's user ID, or uuid.Nil when unauthenticated
func CurrentUserID(ctx context.Context) uuid.UUID {
	if identity := CurrentIdentity(ctx); identity != nil {
		return identity.UserID
	}
	return uuid.Nil
}

// CurrentEmail returns the caller's email
func CurrentEmail(ctx context.Context) string {
	if identity := CurrentIdentity(ctx); identity != nil {
		return identity.Email
	}
	return ""
}

// CurrentRole returns the caller's role
func CurrentRole(ctx context.Context) models.UserRole {
	if identity := CurrentIdentity(ctx); identity != nil {
		return identity.Role
	}
	return ""
}

// CurrentSchoolID returns the caller's school, or nil for platform users and anonymous requests
func CurrentSchoolID(ctx context.Context) *uuid.UUID {
	if identity := CurrentIdentity(ctx); identity != nil {
		return identity.SchoolID
	}
	return nil
}

// HasRole compares the caller's role case-insensitively
func HasRole(ctx context.Context, role models.UserRole) bool {
	current := CurrentRole(ctx)
	return current != "" && strings.EqualFold(string(current), string(role))
}

// HasAnyRole reports whether the caller holds one of the roles
func HasAnyRole(ctx context.Context, roles ...models.UserRole) bool {
	for _, role := range roles {
		if HasRole(ctx, role) {
			return true
		}
	}
	return false
}

func IsSuperAdmin(ctx context.Context) bool {
	return HasRole(ctx, models.RoleSuperAdmin)
}

func IsSchoolAdmin(ctx context.Context) bool {
	return HasRole(ctx, models.RoleSchoolAdmin)
}

// IsTeacher is true for class and subject teachers
func IsTeacher(ctx context.Context) bool {
	return HasAnyRole(ctx, models.RoleClassTeacher, models.RoleSubjectTeacher)
}

func IsParent(ctx context.Context) bool {
	return HasRole(ctx, models.RoleParent)
}

func IsStudent(ctx context.Context) bool {
	return HasRole(ctx, models.RoleStudent)
}
