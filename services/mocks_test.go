package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

// fakeTx records how a transaction ended
type fakeTx struct {
	ctx        context.Context
	committed  bool
	rolledback bool
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.rolledback = true
	}
	return nil
}

func (t *fakeTx) Context() context.Context { return t.ctx }

// fakeTxManager mirrors the postgres manager: commit on success, rollback on error
type fakeTxManager struct {
	begun     int
	beginErr  error
	commitErr error
	last      *fakeTx
}

func newFakeTxManager() *fakeTxManager {
	return &fakeTxManager{}
}

func (m *fakeTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.begun++
	m.last = &fakeTx{ctx: context.WithValue(ctx, txKey{}, "tx")}
	return m.last, nil
}

func (m *fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx.Context(), tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if m.commitErr != nil {
		_ = tx.Rollback()
		return m.commitErr
	}
	return tx.Commit()
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockSchoolRepository is a mock implementation of SchoolRepository
type MockSchoolRepository struct {
	mock.Mock
}

func (m *MockSchoolRepository) Create(ctx context.Context, school *models.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *MockSchoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.School, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*models.School), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSchoolRepository) GetByCode(ctx context.Context, code string) (*models.School, error) {
	args := m.Called(ctx, code)
	if s := args.Get(0); s != nil {
		return s.(*models.School), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSchoolRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockSchoolRepository) List(ctx context.Context, limit, offset int) ([]*models.School, error) {
	args := m.Called(ctx, limit, offset)
	if s := args.Get(0); s != nil {
		return s.([]*models.School), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockStudentRepository is a mock implementation of StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) Create(ctx context.Context, student *models.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*models.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStudentRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Student, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.(*models.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStudentRepository) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.Student, error) {
	args := m.Called(ctx, schoolID, limit, offset)
	if s := args.Get(0); s != nil {
		return s.([]*models.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPasswordResetRepository is a mock implementation of PasswordResetRepository
type MockPasswordResetRepository struct {
	mock.Mock
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	args := m.Called(ctx, reset)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	args := m.Called(ctx, tokenHash)
	if r := args.Get(0); r != nil {
		return r.(*models.PasswordReset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockActivityRecorder is a mock implementation of ActivityRecorder
type MockActivityRecorder struct {
	mock.Mock
}

func (m *MockActivityRecorder) RecordLogin(ctx context.Context, user *models.User) {
	m.Called(ctx, user)
}

func (m *MockActivityRecorder) RecordCreate(ctx context.Context, actor *models.Identity, schoolID *uuid.UUID, entityType string, entityID uuid.UUID, description string) {
	m.Called(ctx, actor, schoolID, entityType, entityID, description)
}

// MockResetNotifier is a mock implementation of ResetNotifier
type MockResetNotifier struct {
	mock.Mock
}

func (m *MockResetNotifier) SendPasswordReset(ctx context.Context, user *models.User, token string, expiresAt time.Time) error {
	args := m.Called(ctx, user, token, expiresAt)
	return args.Error(0)
}
