package models

import (
	"github.com/google/uuid"
)

// Identity is the authenticated caller for the duration of one request.
// A nil SchoolID marks a platform-level user that is not bound to any school.
type Identity struct {
	UserID   uuid.UUID  `json:"userId"`
	Email    string     `json:"email"`
	Role     UserRole   `json:"role"`
	SchoolID *uuid.UUID `json:"schoolId,omitempty"`
}

// InSchool reports whether the identity belongs to the given school
func (i Identity) InSchool(schoolID uuid.UUID) bool {
	return i.SchoolID != nil && *i.SchoolID == schoolID
}
