package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/upb/schoolms-api/models"
)

// TokenIssuer signs bearer tokens for identities
type TokenIssuer interface {
	Issue(identity models.Identity, ttl time.Duration) (string, error)
	TTL() time.Duration
}

// ActivityRecorder queues activity entries. Implementations never block the caller.
type ActivityRecorder interface {
	RecordLogin(ctx context.Context, user *models.User)
	RecordCreate(ctx context.Context, actor *models.Identity, schoolID *uuid.UUID, entityType string, entityID uuid.UUID, description string)
}

// ResetNotifier delivers password reset tokens to users
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user *models.User, token string, expiresAt time.Time) error
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// PageBounds applies the default and maximum page size to a list request
func PageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
