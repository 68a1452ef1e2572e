package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user on the platform or within a school
type UserRole string

const (
	RoleSuperAdmin     UserRole = "SUPER_ADMIN"
	RoleSchoolAdmin    UserRole = "SCHOOL_ADMIN"
	RoleClassTeacher   UserRole = "CLASS_TEACHER"
	RoleSubjectTeacher UserRole = "SUBJECT_TEACHER"
	RoleStudent        UserRole = "STUDENT"
	RoleParent         UserRole = "PARENT"
	RoleStaff          UserRole = "STAFF"
)

var allRoles = []UserRole{
	RoleSuperAdmin,
	RoleSchoolAdmin,
	RoleClassTeacher,
	RoleSubjectTeacher,
	RoleStudent,
	RoleParent,
	RoleStaff,
}

// AllRoles returns every role known to the platform
func AllRoles() []UserRole {
	out := make([]UserRole, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole resolves a role name case-insensitively
func ParseRole(s string) (UserRole, bool) {
	for _, r := range allRoles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the fixed roles
func (r UserRole) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// User represents an account that can log in
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Phone        string     `json:"phone,omitempty" db:"phone"`
	Role         UserRole   `json:"role" db:"role"`
	SchoolID     *uuid.UUID `json:"school_id,omitempty" db:"school_id"` // nil for platform-level users
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active User instance
func NewUser(email, passwordHash, firstName, lastName string, role UserRole, schoolID *uuid.UUID) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		SchoolID:     schoolID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity returns the request identity carried in tokens issued for this user
func (u *User) Identity() Identity {
	return Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     u.Role,
		SchoolID: u.SchoolID,
	}
}
