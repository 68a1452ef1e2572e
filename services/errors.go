package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is. Domain errors match on type.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Messages returned to callers refused by the authorization guards
const (
	MsgRoleNotFound       = "User role not found"
	MsgRoleDenied         = "You don't have permission to access this resource"
	MsgNoSchool           = "User is not associated with any school"
	MsgSchoolAccessDenied = "You don't have permission to access data from this school"
)

// Domain error variables. Do not call WithDetail on these; build a fresh error instead.

var (
	// Not Found Errors
	ErrUserNotFound    = NewDomainError(ErrorTypeNotFound, "user not found", nil)
	ErrSchoolNotFound  = NewDomainError(ErrorTypeNotFound, "school not found", nil)
	ErrStudentNotFound = NewDomainError(ErrorTypeNotFound, "student not found", nil)

	// Validation Errors
	ErrInvalidInput       = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidSchoolCode  = NewDomainError(ErrorTypeValidation, "invalid school code", nil)
	ErrInvalidRole        = NewDomainError(ErrorTypeValidation, "invalid role", nil)
	ErrInvalidResetToken  = NewDomainError(ErrorTypeValidation, "invalid or expired reset token", nil)
	ErrSchoolRequired     = NewDomainError(ErrorTypeValidation, "school is required for this role", nil)
	ErrInvalidPayloadBody = NewDomainError(ErrorTypeValidation, "invalid webhook payload", nil)

	// Authentication Errors
	ErrUnauthorized       = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "invalid email or password", nil)
	ErrAccountInactive    = NewDomainError(ErrorTypeUnauthorized, "account is inactive", nil)
	ErrSchoolMismatch     = NewDomainError(ErrorTypeUnauthorized, "user does not belong to this school", nil)
	ErrInvalidSignature   = NewDomainError(ErrorTypeUnauthorized, "invalid webhook signature", nil)

	// Permission Errors
	ErrForbidden          = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)
	ErrRoleDenied         = NewDomainError(ErrorTypeForbidden, MsgRoleDenied, nil)
	ErrNoSchool           = NewDomainError(ErrorTypeForbidden, MsgNoSchool, nil)
	ErrSchoolAccessDenied = NewDomainError(ErrorTypeForbidden, MsgSchoolAccessDenied, nil)

	// Conflict Errors
	ErrDuplicateEmail      = NewDomainError(ErrorTypeConflict, "email already registered", nil)
	ErrDuplicateSchoolCode = NewDomainError(ErrorTypeConflict, "school code already exists", nil)
	ErrDuplicateStudent    = NewDomainError(ErrorTypeConflict, "student number already exists in this school", nil)

	// Internal Errors
	ErrInternal          = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError     = NewDomainError(ErrorTypeInternal, "database error", nil)
	ErrTransactionFailed = NewDomainError(ErrorTypeInternal, "transaction failed", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorMessage returns the caller-facing message of a domain error, or empty string
func GetErrorMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// Forbidden builds a fresh forbidden error with the given caller-facing message
func Forbidden(message string) *DomainError {
	return NewDomainError(ErrorTypeForbidden, message, nil)
}
