package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

const resetTokenBytes = 32

// PasswordResetService issues and redeems single-use password reset tokens
type PasswordResetService struct {
	users    repositories.UserRepository
	resets   repositories.PasswordResetRepository
	txMgr    repositories.TransactionManager
	notifier ResetNotifier
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewPasswordResetService creates a new PasswordResetService. ttl is the token lifetime.
func NewPasswordResetService(users repositories.UserRepository, resets repositories.PasswordResetRepository, txMgr repositories.TransactionManager, notifier ResetNotifier, ttl time.Duration, logger *zap.Logger) *PasswordResetService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PasswordResetService{
		users:    users,
		resets:   resets,
		txMgr:    txMgr,
		notifier: notifier,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Request starts a reset for the account behind email.
// Unknown or inactive accounts succeed silently so callers cannot probe for emails.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return WrapInternal("failed to load user", err)
	}
	if !user.IsActive {
		s.logger.Info("password reset requested for inactive account", zap.String("user_id", user.ID.String()))
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		return WrapInternal("failed to generate reset token", err)
	}

	reset := models.NewPasswordReset(user.ID, hashResetToken(token), s.ttl)
	reset.CreatedAt = s.now()
	reset.ExpiresAt = reset.CreatedAt.Add(s.ttl)

	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		if err := s.resets.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
		return s.resets.Create(ctx, reset)
	})
	if err != nil {
		return WrapInternal("failed to store reset token", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user, token, reset.ExpiresAt); err != nil {
		s.logger.Error("failed to deliver password reset", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return nil
}

// Verify reports whether token can still be redeemed
func (s *PasswordResetService) Verify(ctx context.Context, token string) (bool, error) {
	_, err := s.usableReset(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Reset redeems token and replaces the password. The token cannot be used again.
func (s *PasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		reset, err := s.usableReset(ctx, token)
		if err != nil {
			return err
		}
		if err := s.resets.MarkUsed(ctx, reset.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return WrapInternal("failed to consume reset token", err)
		}
		if err := s.users.UpdatePassword(ctx, reset.UserID, hash); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return WrapInternal("failed to update password", err)
		}

		s.logger.Info("password reset completed", zap.String("user_id", reset.UserID.String()))
		return nil
	})
}

func (s *PasswordResetService) usableReset(ctx context.Context, token string) (*models.PasswordReset, error) {
	if token == "" {
		return nil, ErrInvalidResetToken
	}
	reset, err := s.resets.GetByTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, WrapInternal("failed to load reset token", err)
	}
	if !reset.Usable(s.now()) {
		return nil, ErrInvalidResetToken
	}
	return reset, nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// LogNotifier records reset deliveries in the application log.
// The token itself is only written at debug level.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendPasswordReset logs the delivery
func (n *LogNotifier) SendPasswordReset(_ context.Context, user *models.User, token string, expiresAt time.Time) error {
	n.logger.Info("password reset issued",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.Time("expires_at", expiresAt),
	)
	n.logger.Debug("password reset token", zap.String("user_id", user.ID.String()), zap.String("token", token))
	return nil
}
