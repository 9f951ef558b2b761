package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/pkg/database"
)

const requirementColumns = "id, student_id, name, file_path, status, remarks, verified_by, verified_at, created_at, updated_at"

// RequirementRepository tracks per-student admission requirements.
type RequirementRepository struct {
	db *sqlx.DB
}

func NewRequirementRepository(db *sqlx.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

func insertRequirement(ctx context.Context, ext sqlx.ExtContext, req *models.Requirement) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = models.RequirementPending
	}
	const query = `INSERT INTO student_requirements (id, student_id, name, file_path, status, remarks, created_at, updated_at) VALUES (:id, :student_id, :name, :file_path, :status, :remarks, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, req); err != nil {
		return fmt.Errorf("create requirement: %w", database.Classify(err))
	}
	return nil
}

// Create inserts a requirement row.
func (r *RequirementRepository) Create(ctx context.Context, req *models.Requirement) error {
	return insertRequirement(ctx, r.db, req)
}

// FindByID returns a requirement.
func (r *RequirementRepository) FindByID(ctx context.Context, id string) (*models.Requirement, error) {
	query := `SELECT ` + requirementColumns + ` FROM student_requirements WHERE id = $1`
	var req models.Requirement
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find requirement: %w", err)
	}
	return &req, nil
}

// List returns requirements ordered by student and name.
func (r *RequirementRepository) List(ctx context.Context, filter models.RequirementFilter) ([]models.Requirement, error) {
	builder := psql.Select(requirementColumns).From("student_requirements").OrderBy("student_id", "name")
	if filter.StudentID != "" {
		builder = builder.Where(squirrel.Eq{"student_id": filter.StudentID})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build requirements query: %w", err)
	}
	items := []models.Requirement{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	return items, nil
}

// AttachFile records an uploaded file and moves the requirement to submitted.
func (r *RequirementRepository) AttachFile(ctx context.Context, id, path string) error {
	const query = `UPDATE student_requirements SET file_path = $2, status = $3, verified_by = NULL, verified_at = NULL, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, path, models.RequirementSubmitted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("attach requirement file: %w", err)
	}
	return expectAffected(res)
}

// Verify stores the review outcome and notifies the student atomically.
func (r *RequirementRepository) Verify(ctx context.Context, req *models.Requirement, notification *models.Notification) error {
	req.UpdatedAt = time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `UPDATE student_requirements SET status = :status, remarks = :remarks, verified_by = :verified_by, verified_at = :verified_at, updated_at = :updated_at WHERE id = :id`
		res, err := sqlx.NamedExecContext(ctx, tx, query, req)
		if err != nil {
			return fmt.Errorf("verify requirement: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		if notification != nil {
			return insertNotification(ctx, tx, notification)
		}
		return nil
	})
}

// Delete removes a requirement.
func (r *RequirementRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_requirements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete requirement: %w", err)
	}
	return expectAffected(res)
}
