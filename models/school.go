package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// School represents a tenant in the multi-tenant system
type School struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	SchoolCode string    `json:"school_code" db:"school_code"` // entered at step one of login
	Email      string    `json:"email,omitempty" db:"email"`
	Phone      string    `json:"phone,omitempty" db:"phone"`
	Address    string    `json:"address,omitempty" db:"address"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the School model
func (School) TableName() string {
	return "schools"
}

// NewSchool creates a new active School instance
func NewSchool(name, schoolCode string) *School {
	now := time.Now()
	return &School{
		ID:         uuid.New(),
		Name:       name,
		SchoolCode: strings.ToUpper(strings.TrimSpace(schoolCode)),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
