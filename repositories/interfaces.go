package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/upb/schoolms-api/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// The context passed to fn carries the transaction; repositories called with it join the transaction.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// SchoolRepository handles school data operations
type SchoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.School, error)
	// GetByCode matches the school code case-insensitively
	GetByCode(ctx context.Context, code string) (*models.School, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.School, error)
}

// UserRepository handles user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// StudentRepository handles student data operations
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Student, error)
	ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.Student, error)
}

// PasswordResetRepository handles password reset tokens
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	// DeleteByUserID removes any outstanding resets for the user
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// ActivityLogRepository handles activity log entries
type ActivityLogRepository interface {
	Insert(ctx context.Context, log *models.ActivityLog) error
	ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Schools        SchoolRepository
	Users          UserRepository
	Students       StudentRepository
	PasswordResets PasswordResetRepository
	ActivityLogs   ActivityLogRepository
}
