package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/upb/schoolms-api/models"
)

var (
	// ErrMissingClaim is returned when a required claim is missing
	ErrMissingClaim = errors.New("missing required claim")

	// ErrInvalidClaim is returned when a claim has an unexpected value
	ErrInvalidClaim = errors.New("invalid claim")
)

// Claims represents the claims carried by an access token
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	SchoolID string `json:"school_id,omitempty"`
}

func newClaims(identity models.Identity) *Claims {
	claims := &Claims{
		UserID: identity.UserID.String(),
		Email:  identity.Email,
		Role:   string(identity.Role),
	}
	if identity.SchoolID != nil {
		claims.SchoolID = identity.SchoolID.String()
	}
	return claims
}

// toIdentity converts decoded claims into a request identity
func (c *Claims) toIdentity() (*models.Identity, error) {
	if c.UserID == "" {
		return nil, fmt.Errorf("%w: user_id", ErrMissingClaim)
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: user_id is not a UUID", ErrInvalidClaim)
	}

	if c.Role == "" {
		return nil, fmt.Errorf("%w: role", ErrMissingClaim)
	}
	role, ok := models.ParseRole(c.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidClaim, c.Role)
	}

	var schoolID *uuid.UUID
	if c.SchoolID != "" {
		parsed, err := uuid.Parse(c.SchoolID)
		if err != nil {
			return nil, fmt.Errorf("%w: school_id is not a UUID", ErrInvalidClaim)
		}
		schoolID = &parsed
	}

	return &models.Identity{
		UserID:   userID,
		Email:    c.Email,
		Role:     role,
		SchoolID: schoolID,
	}, nil
}
