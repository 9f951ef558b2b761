package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// StudentRepository reads student accounts joined with their registration.
type StudentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func studentSelect(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).
		From("users u").
		LeftJoin("student_registrations r ON r.user_id = u.id AND r.registration_status = 'approved'").
		Where(squirrel.Eq{"u.role": models.RoleStudent})
}

var studentColumns = []string{
	"u.id", "u.id_number", "u.password_hash", "u.role", "u.first_name", "u.last_name", "u.email",
	"u.profile_photo", "u.active", "u.last_login", "u.created_at", "u.updated_at",
	"r.id AS registration_id", "r.program", "r.year_level", "r.contact_number",
}

// List returns student profiles.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentProfile, int, error) {
	where := squirrel.And{}
	if filter.Program != "" {
		where = append(where, squirrel.Eq{"r.program": filter.Program})
	}
	if filter.YearLevel != nil {
		where = append(where, squirrel.Eq{"r.year_level": *filter.YearLevel})
	}
	if filter.Active != nil {
		where = append(where, squirrel.Eq{"u.active": *filter.Active})
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.Like{"LOWER(u.id_number)": pattern},
			squirrel.Like{"LOWER(u.first_name || ' ' || u.last_name)": pattern},
		})
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	list := studentSelect(studentColumns...).Where(where).OrderBy("u.last_name", "u.first_name").Limit(limit).Offset(offset)
	count := studentSelect("COUNT(*)").Where(where)

	items := []models.StudentProfile{}
	total, err := selectPage(ctx, r.db, &items, list, count, "students")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindByID returns one student profile.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentProfile, error) {
	query, args, err := studentSelect(studentColumns...).Where(squirrel.Eq{"u.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build student query: %w", err)
	}
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &profile, nil
}
