package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

// PasswordResetRepository implements the repositories.PasswordResetRepository interface
type PasswordResetRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPasswordResetRepository creates a new password reset repository
func NewPasswordResetRepository(db *DB, logger *zap.Logger) repositories.PasswordResetRepository {
	return &PasswordResetRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a reset token hash
func (r *PasswordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	query := `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		reset.ID,
		reset.UserID,
		reset.TokenHash,
		reset.ExpiresAt,
		reset.CreatedAt,
	)
	if err != nil {
		return translateError("failed to create password reset", err)
	}
	return nil
}

// GetByTokenHash looks up a reset by the hash of its token
func (r *PasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_resets
		WHERE token_hash = $1
	`

	reset := &models.PasswordReset{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, tokenHash).Scan(
		&reset.ID,
		&reset.UserID,
		&reset.TokenHash,
		&reset.ExpiresAt,
		&reset.UsedAt,
		&reset.CreatedAt,
	)
	if err != nil {
		return nil, translateError("failed to get password reset", err)
	}
	return reset, nil
}

// MarkUsed consumes a reset. A reset that was already used is reported as not found.
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE password_resets SET used_at = $2 WHERE id = $1 AND used_at IS NULL`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return translateError("failed to mark password reset used", err)
	}
	return requireRow(result, "password reset", id)
}

// DeleteByUserID removes every outstanding reset of the user
func (r *PasswordResetRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM password_resets WHERE user_id = $1 AND used_at IS NULL`

	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, userID); err != nil {
		return translateError("failed to delete password resets", err)
	}
	return nil
}
