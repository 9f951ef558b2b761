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

// ScheduleRepository stores timetable slots.
type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func scheduleDetailSelect() squirrel.SelectBuilder {
	return psql.Select(
		"sc.id", "sc.curriculum_id", "sc.subject_id", "sc.semester_id", "sc.section", "sc.day",
		"sc.start_time", "sc.end_time", "sc.room", "sc.instructor", "sc.max_capacity", "sc.enrolled_count",
		"sc.created_at", "sc.updated_at",
		"s.code AS subject_code", "s.title AS subject_title", "s.units",
		"c.program", "c.year_level",
	).From("schedules sc").
		Join("subjects s ON s.id = sc.subject_id").
		Join("curriculums c ON c.id = sc.curriculum_id")
}

// List returns schedules with subject details.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error) {
	builder := scheduleDetailSelect().OrderBy("sc.day", "sc.start_time", "s.code", "sc.section")
	if filter.SemesterID != "" {
		builder = builder.Where(squirrel.Eq{"sc.semester_id": filter.SemesterID})
	}
	if filter.SubjectID != "" {
		builder = builder.Where(squirrel.Eq{"sc.subject_id": filter.SubjectID})
	}
	if filter.Program != "" {
		builder = builder.Where(squirrel.Eq{"c.program": filter.Program})
	}
	if filter.YearLevel != nil {
		builder = builder.Where(squirrel.Eq{"c.year_level": *filter.YearLevel})
	}
	if filter.Day != "" {
		builder = builder.Where(squirrel.Eq{"sc.day": filter.Day})
	}
	if filter.Section != "" {
		builder = builder.Where(squirrel.Eq{"sc.section": filter.Section})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build schedules query: %w", err)
	}
	items := []models.ScheduleDetail{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return items, nil
}

// FindByID returns a schedule with subject details.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	query, args, err := scheduleDetailSelect().Where(squirrel.Eq{"sc.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build schedule query: %w", err)
	}
	var detail models.ScheduleDetail
	if err := r.db.GetContext(ctx, &detail, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return &detail, nil
}

// Create inserts a schedule.
func (r *ScheduleRepository) Create(ctx context.Context, s *models.Schedule) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	const query = `INSERT INTO schedules (id, curriculum_id, subject_id, semester_id, section, day, start_time, end_time, room, instructor, max_capacity, enrolled_count, created_at, updated_at) VALUES (:id, :curriculum_id, :subject_id, :semester_id, :section, :day, :start_time, :end_time, :room, :instructor, :max_capacity, 0, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create schedule: %w", database.Classify(err))
	}
	return nil
}

// Update rewrites a schedule. The enrolled count is left to the counters.
func (r *ScheduleRepository) Update(ctx context.Context, s *models.Schedule) error {
	s.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET curriculum_id = :curriculum_id, subject_id = :subject_id, semester_id = :semester_id, section = :section, day = :day, start_time = :start_time, end_time = :end_time, room = :room, instructor = :instructor, max_capacity = :max_capacity, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("update schedule: %w", database.Classify(err))
	}
	return expectAffected(res)
}

// Delete removes a schedule and its enrollments.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return expectAffected(res)
}

// RecountEnrollment recomputes enrolled_count from enrolled rows for every
// schedule, or only those of one semester when semesterID is set.
func (r *ScheduleRepository) RecountEnrollment(ctx context.Context, semesterID string) (int64, error) {
	builder := psql.Update("schedules").
		Set("enrolled_count", squirrel.Expr("(SELECT COUNT(*) FROM student_enrollments e WHERE e.schedule_id = schedules.id AND e.status = ?)", models.EnrollmentEnrolled)).
		Set("updated_at", time.Now().UTC())
	if semesterID != "" {
		builder = builder.Where(squirrel.Eq{"semester_id": semesterID})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build recount: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("recount enrollment: %w", err)
	}
	return res.RowsAffected()
}
