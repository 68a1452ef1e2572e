package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogAction represents the kind of activity being recorded
type LogAction string

const (
	LogActionCreate       LogAction = "create"
	LogActionRead         LogAction = "read"
	LogActionUpdate       LogAction = "update"
	LogActionDelete       LogAction = "delete"
	LogActionLogin        LogAction = "login"
	LogActionLogout       LogAction = "logout"
	LogActionAccessDenied LogAction = "access_denied"
	LogActionPayment      LogAction = "payment"
)

// ActivityLog represents an activity trail entry
type ActivityLog struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SchoolID    *uuid.UUID      `json:"school_id,omitempty" db:"school_id"`
	UserID      *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	Action      LogAction       `json:"action" db:"action"`
	EntityType  string          `json:"entity_type" db:"entity_type"` // user, student, school, route...
	EntityID    *uuid.UUID      `json:"entity_id,omitempty" db:"entity_id"`
	Description string          `json:"description" db:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty" db:"metadata"` // JSONB
	IPAddress   string          `json:"ip_address" db:"ip_address"`
	UserAgent   string          `json:"user_agent" db:"user_agent"`
	RequestID   string          `json:"request_id" db:"request_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// NewActivityLog creates a new ActivityLog instance
func NewActivityLog(action LogAction, entityType, description string) *ActivityLog {
	return &ActivityLog{
		ID:          uuid.New(),
		Action:      action,
		EntityType:  entityType,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// WithSchool sets the school ID; nil is ignored
func (a *ActivityLog) WithSchool(schoolID *uuid.UUID) *ActivityLog {
	if schoolID != nil {
		id := *schoolID
		a.SchoolID = &id
	}
	return a
}

// WithUser sets the user ID
func (a *ActivityLog) WithUser(userID uuid.UUID) *ActivityLog {
	a.UserID = &userID
	return a
}

// WithEntity sets the entity ID
func (a *ActivityLog) WithEntity(entityID uuid.UUID) *ActivityLog {
	a.EntityID = &entityID
	return a
}

// WithMetadata sets the metadata
func (a *ActivityLog) WithMetadata(metadata interface{}) *ActivityLog {
	if data, err := json.Marshal(metadata); err == nil {
		a.Metadata = data
	}
	return a
}

// WithRequest sets request metadata
func (a *ActivityLog) WithRequest(requestID, ipAddress, userAgent string) *ActivityLog {
	a.RequestID = requestID
	a.IPAddress = ipAddress
	a.UserAgent = userAgent
	return a
}
