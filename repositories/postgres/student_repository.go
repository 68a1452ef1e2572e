package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
)

const studentColumns = `id, school_id, user_id, student_number, first_name, last_name, COALESCE(email, ''), COALESCE(class_name, ''), created_at, updated_at`

// StudentRepository implements the repositories.StudentRepository interface
type StudentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *DB, logger *zap.Logger) repositories.StudentRepository {
	return &StudentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (id, school_id, user_id, student_number, first_name, last_name, email, class_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		student.ID,
		student.SchoolID,
		student.UserID,
		student.StudentNumber,
		student.FirstName,
		student.LastName,
		student.Email,
		student.ClassName,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		return translateError("failed to create student", err)
	}

	r.logger.Debug("student created",
		zap.String("id", student.ID.String()),
		zap.String("school_id", student.SchoolID.String()),
	)
	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	student, err := scanStudent(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(fmt.Sprintf("failed to get student %s", id), err)
	}
	return student, nil
}

// GetByUserID retrieves the student record linked to a login account
func (r *StudentRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE user_id = $1`

	student, err := scanStudent(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, translateError("failed to get student by user", err)
	}
	return student, nil
}

// ListBySchool lists a school's students ordered by last name
func (r *StudentRepository) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE school_id = $1
		ORDER BY last_name, first_name
		LIMIT $2 OFFSET $3
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, schoolID, limit, offset)
	if err != nil {
		return nil, translateError("failed to list students", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}

	return students, nil
}

func scanStudent(row rowScanner) (*models.Student, error) {
	student := &models.Student{}
	err := row.Scan(
		&student.ID,
		&student.SchoolID,
		&student.UserID,
		&student.StudentNumber,
		&student.FirstName,
		&student.LastName,
		&student.Email,
		&student.ClassName,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return student, nil
}
