package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

// ActivityLogRepository implements the repositories.ActivityLogRepository interface
type ActivityLogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *DB, logger *zap.Logger) repositories.ActivityLogRepository {
	return &ActivityLogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends an entry. Entries are immutable.
func (r *ActivityLogRepository) Insert(ctx context.Context, log *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (
			id, school_id, user_id, action, entity_type, entity_id, description,
			metadata, ip_address, user_agent, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var metadata interface{}
	if len(log.Metadata) > 0 {
		metadata = []byte(log.Metadata)
	}

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		log.ID,
		log.SchoolID,
		log.UserID,
		log.Action,
		log.EntityType,
		log.EntityID,
		log.Description,
		metadata,
		log.IPAddress,
		log.UserAgent,
		log.RequestID,
		log.CreatedAt,
	)
	if err != nil {
		return translateError("failed to insert activity log", err)
	}
	return nil
}

// ListBySchool returns a school's entries, newest first
func (r *ActivityLogRepository) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error) {
	query := `
		SELECT id, school_id, user_id, action, entity_type, entity_id, COALESCE(description, ''),
			metadata, COALESCE(ip_address, ''), COALESCE(user_agent, ''), COALESCE(request_id, ''), created_at
		FROM activity_logs
		WHERE school_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, schoolID, limit, offset)
	if err != nil {
		return nil, translateError("failed to list activity logs", err)
	}
	defer rows.Close()

	var logs []*models.ActivityLog
	for rows.Next() {
		entry := &models.ActivityLog{}
		var metadata []byte
		err := rows.Scan(
			&entry.ID,
			&entry.SchoolID,
			&entry.UserID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Description,
			&metadata,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.RequestID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		if len(metadata) > 0 {
			entry.Metadata = metadata
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity logs: %w", err)
	}

	return logs, nil
}
