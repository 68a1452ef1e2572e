package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordReset is a single-use reset token. Only the SHA-256 hash of the token is stored.
type PasswordReset struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash string     `json:"-" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the PasswordReset model
func (PasswordReset) TableName() string {
	return "password_resets"
}

// NewPasswordReset creates a reset valid for ttl from now
func NewPasswordReset(userID uuid.UUID, tokenHash string, ttl time.Duration) *PasswordReset {
	now := time.Now()
	return &PasswordReset{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// Usable reports whether the reset can still be redeemed at the given instant
func (p *PasswordReset) Usable(at time.Time) bool {
	return p.UsedAt == nil && at.Before(p.ExpiresAt)
}
