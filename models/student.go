package models

import (
	"time"

	"github.com/google/uuid"
)

// Student represents an enrolled student of a school
type Student struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	SchoolID      uuid.UUID  `json:"school_id" db:"school_id"`
	UserID        *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	StudentNumber string     `json:"student_number" db:"student_number"`
	FirstName     string     `json:"first_name" db:"first_name"`
	LastName      string     `json:"last_name" db:"last_name"`
	Email         string     `json:"email,omitempty" db:"email"`
	ClassName     string     `json:"class_name,omitempty" db:"class_name"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Student model
func (Student) TableName() string {
	return "students"
}

// NewStudent creates a new Student instance
func NewStudent(schoolID uuid.UUID, studentNumber, firstName, lastName string) *Student {
	now := time.Now()
	return &Student{
		ID:            uuid.New(),
		SchoolID:      schoolID,
		StudentNumber: studentNumber,
		FirstName:     firstName,
		LastName:      lastName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
