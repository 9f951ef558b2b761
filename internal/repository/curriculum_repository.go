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

const subjectColumns = "id, code, title, units, lecture_hours, lab_hours, prerequisite, created_at, updated_at"

// CurriculumRepository stores the subject catalogue and program curricula.
type CurriculumRepository struct {
	db *sqlx.DB
}

func NewCurriculumRepository(db *sqlx.DB) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

// ListSubjects returns subjects ordered by code, optionally filtered by a search term.
func (r *CurriculumRepository) ListSubjects(ctx context.Context, search string) ([]models.Subject, error) {
	builder := psql.Select(subjectColumns).From("subjects").OrderBy("code")
	if search != "" {
		pattern := likePattern(search)
		builder = builder.Where(squirrel.Or{
			squirrel.Like{"LOWER(code)": pattern},
			squirrel.Like{"LOWER(title)": pattern},
		})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build subjects query: %w", err)
	}
	items := []models.Subject{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return items, nil
}

// FindSubject returns a subject by id.
func (r *CurriculumRepository) FindSubject(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	return &subject, nil
}

// CreateSubject inserts a subject; duplicate codes surface as ErrUniqueViolation.
func (r *CurriculumRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	const query = `INSERT INTO subjects (id, code, title, units, lecture_hours, lab_hours, prerequisite, created_at, updated_at) VALUES (:id, :code, :title, :units, :lecture_hours, :lab_hours, :prerequisite, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", database.Classify(err))
	}
	return nil
}

// UpdateSubject rewrites a subject.
func (r *CurriculumRepository) UpdateSubject(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET code = :code, title = :title, units = :units, lecture_hours = :lecture_hours, lab_hours = :lab_hours, prerequisite = :prerequisite, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, subject)
	if err != nil {
		return fmt.Errorf("update subject: %w", database.Classify(err))
	}
	return expectAffected(res)
}

// DeleteSubject removes a subject and, by cascade, its curriculum and schedule rows.
func (r *CurriculumRepository) DeleteSubject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return expectAffected(res)
}

// List returns curriculum entries joined with their subjects.
func (r *CurriculumRepository) List(ctx context.Context, filter models.CurriculumFilter) ([]models.CurriculumEntry, error) {
	builder := psql.Select(
		"c.id", "c.program", "c.year_level", "c.term", "c.subject_id", "c.created_at",
		"s.code AS subject_code", "s.title AS subject_title", "s.units",
	).From("curriculums c").
		Join("subjects s ON s.id = c.subject_id").
		OrderBy("c.program", "c.year_level", "c.term", "s.code")
	if filter.Program != "" {
		builder = builder.Where(squirrel.Eq{"c.program": filter.Program})
	}
	if filter.YearLevel != nil {
		builder = builder.Where(squirrel.Eq{"c.year_level": *filter.YearLevel})
	}
	if filter.Term != nil {
		builder = builder.Where(squirrel.Eq{"c.term": *filter.Term})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build curriculum query: %w", err)
	}
	items := []models.CurriculumEntry{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list curriculum: %w", err)
	}
	return items, nil
}

// Create places a subject in a program term.
func (r *CurriculumRepository) Create(ctx context.Context, c *models.Curriculum) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO curriculums (id, program, year_level, term, subject_id, created_at) VALUES (:id, :program, :year_level, :term, :subject_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create curriculum: %w", database.Classify(err))
	}
	return nil
}

// Delete removes a curriculum entry.
func (r *CurriculumRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM curriculums WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete curriculum: %w", err)
	}
	return expectAffected(res)
}
