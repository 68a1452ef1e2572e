package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

const schoolColumns = `id, name, school_code, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), is_active, created_at, updated_at`

// SchoolRepository implements the repositories.SchoolRepository interface
type SchoolRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSchoolRepository creates a new school repository
func NewSchoolRepository(db *DB, logger *zap.Logger) repositories.SchoolRepository {
	return &SchoolRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new school
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	query := `
		INSERT INTO schools (id, name, school_code, email, phone, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		school.ID,
		school.Name,
		school.SchoolCode,
		school.Email,
		school.Phone,
		school.Address,
		school.IsActive,
		school.CreatedAt,
		school.UpdatedAt,
	)
	if err != nil {
		return translateError("failed to create school", err)
	}

	r.logger.Info("school created",
		zap.String("id", school.ID.String()),
		zap.String("code", school.SchoolCode),
	)
	return nil
}

// GetByID retrieves a school by ID
func (r *SchoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE id = $1`

	school, err := scanSchool(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(fmt.Sprintf("failed to get school %s", id), err)
	}
	return school, nil
}

// GetByCode retrieves a school by its login code
func (r *SchoolRepository) GetByCode(ctx context.Context, code string) (*models.School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE school_code = $1`

	school, err := scanSchool(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, normalizeCode(code)))
	if err != nil {
		return nil, translateError("failed to get school by code", err)
	}
	return school, nil
}

// ExistsByCode reports whether a school already uses the code
func (r *SchoolRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM schools WHERE school_code = $1)`

	var exists bool
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, normalizeCode(code)).Scan(&exists); err != nil {
		return false, translateError("failed to check school code", err)
	}
	return exists, nil
}

// List returns schools ordered by name
func (r *SchoolRepository) List(ctx context.Context, limit, offset int) ([]*models.School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, translateError("failed to list schools", err)
	}
	defer rows.Close()

	var schools []*models.School
	for rows.Next() {
		school, err := scanSchool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan school: %w", err)
		}
		schools = append(schools, school)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schools: %w", err)
	}

	return schools, nil
}

func scanSchool(row rowScanner) (*models.School, error) {
	school := &models.School{}
	err := row.Scan(
		&school.ID,
		&school.Name,
		&school.SchoolCode,
		&school.Email,
		&school.Phone,
		&school.Address,
		&school.IsActive,
		&school.CreatedAt,
		&school.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return school, nil
}

// School codes are stored upper case
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
