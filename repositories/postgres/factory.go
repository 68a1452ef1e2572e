package postgres

import (
	"context"

	"go.uber.org/zap"

	"github.com/upb/schoolms-api/config"
	"github.com/upb/schoolms-api/repositories"
)

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db         *DB
	activityDB *DB // optional separate DB for activity logs
	logger     *zap.Logger
}

// NewRepositoryFactory opens the configured databases
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	f := &RepositoryFactory{db: db, logger: logger}

	if cfg.ActivityDatabase != nil {
		activityDB, err := NewDB(*cfg.ActivityDatabase, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		f.activityDB = activityDB
	}

	return f, nil
}

// NewRepositoryFactoryFromDB builds a factory around an already open pool
func NewRepositoryFactoryFromDB(db *DB, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{db: db, logger: logger}
}

// InitSchema initializes the main schema and, when configured, the activity database
func (f *RepositoryFactory) InitSchema(ctx context.Context) error {
	if err := f.db.InitSchema(ctx); err != nil {
		return err
	}
	if f.activityDB != nil {
		return f.activityDB.InitActivitySchema(ctx)
	}
	return nil
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	activityDB := f.db
	if f.activityDB != nil {
		activityDB = f.activityDB
	}
	return &repositories.Repositories{
		Schools:        NewSchoolRepository(f.db, f.logger),
		Users:          NewUserRepository(f.db, f.logger),
		Students:       NewStudentRepository(f.db, f.logger),
		PasswordResets: NewPasswordResetRepository(f.db, f.logger),
		ActivityLogs:   NewActivityLogRepository(activityDB, f.logger),
	}
}

// GetTransactionManager returns a transaction manager
func (f *RepositoryFactory) GetTransactionManager() repositories.TransactionManager {
	return NewTransactionManager(f.db, f.logger)
}

// GetDB returns the database connection
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// Close closes the database connection(s)
func (f *RepositoryFactory) Close() error {
	if f.activityDB != nil {
		_ = f.activityDB.Close()
	}
	return f.db.Close()
}
