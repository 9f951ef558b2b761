package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/pkg/database"
)

const semesterColumns = "id, name, school_year, term, start_date, end_date, is_active, created_at, updated_at"

// SemesterRepository stores academic periods.
type SemesterRepository struct {
	db *sqlx.DB
}

func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// List returns semesters, latest first.
func (r *SemesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters ORDER BY start_date DESC`
	items := []models.Semester{}
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return items, nil
}

// FindByID returns a semester.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters WHERE id = $1`
	var sem models.Semester
	if err := r.db.GetContext(ctx, &sem, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find semester: %w", err)
	}
	return &sem, nil
}

// FindActive returns the semester flagged active.
func (r *SemesterRepository) FindActive(ctx context.Context) (*models.Semester, error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters WHERE is_active = TRUE LIMIT 1`
	var sem models.Semester
	if err := r.db.GetContext(ctx, &sem, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find active semester: %w", err)
	}
	return &sem, nil
}

// Create inserts a semester.
func (r *SemesterRepository) Create(ctx context.Context, sem *models.Semester) error {
	if sem.ID == "" {
		sem.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sem.CreatedAt = now
	sem.UpdatedAt = now
	const query = `INSERT INTO semesters (id, name, school_year, term, start_date, end_date, is_active, created_at, updated_at) VALUES (:id, :name, :school_year, :term, :start_date, :end_date, FALSE, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sem); err != nil {
		return fmt.Errorf("create semester: %w", database.Classify(err))
	}
	return nil
}

// Update rewrites a semester's descriptive fields.
func (r *SemesterRepository) Update(ctx context.Context, sem *models.Semester) error {
	sem.UpdatedAt = time.Now().UTC()
	const query = `UPDATE semesters SET name = :name, school_year = :school_year, term = :term, start_date = :start_date, end_date = :end_date, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, sem)
	if err != nil {
		return fmt.Errorf("update semester: %w", database.Classify(err))
	}
	return expectAffected(res)
}

// Delete removes a semester.
func (r *SemesterRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM semesters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete semester: %w", database.Classify(err))
	}
	return expectAffected(res)
}

// Activate makes id the only active semester and mirrors it into settings.
func (r *SemesterRepository) Activate(ctx context.Context, id, actorID string) error {
	now := time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE semesters SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE`, now); err != nil {
			return fmt.Errorf("clear active semester: %w", err)
		}
		res, err := tx.ExecContext(ctx, `UPDATE semesters SET is_active = TRUE, updated_at = $2 WHERE id = $1`, id, now)
		if err != nil {
			return fmt.Errorf("activate semester: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		return upsertSetting(ctx, tx, &models.Setting{
			Key:       models.SettingActiveSemesterID,
			Value:     id,
			Type:      models.SettingTypeString,
			UpdatedBy: &actorID,
			UpdatedAt: now,
		})
	})
}
