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

const enrollmentColumns = "id, student_id, schedule_id, status, grade, enrolled_at, updated_at"

// EnrollmentRepository links students to schedules and keeps the schedule
// enrolled_count in step with enrolled rows.
type EnrollmentRepository struct {
	db *sqlx.DB
}

func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func adjustEnrolledCount(ctx context.Context, tx *sqlx.Tx, scheduleID string, delta int) error {
	const query = `UPDATE schedules SET enrolled_count = GREATEST(enrolled_count + $2, 0), updated_at = $3 WHERE id = $1`
	res, err := tx.ExecContext(ctx, query, scheduleID, delta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adjust enrolled count: %w", err)
	}
	return expectAffected(res)
}

// Create enrolls a student and increments the schedule count. A duplicate
// (student, schedule) pair yields database.ErrUniqueViolation.
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.StudentEnrollment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.EnrolledAt = now
	e.UpdatedAt = now
	if e.Status == "" {
		e.Status = models.EnrollmentEnrolled
	}
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO student_enrollments (id, student_id, schedule_id, status, grade, enrolled_at, updated_at) VALUES (:id, :student_id, :schedule_id, :status, :grade, :enrolled_at, :updated_at)`
		if _, err := sqlx.NamedExecContext(ctx, tx, query, e); err != nil {
			return fmt.Errorf("create enrollment: %w", database.Classify(err))
		}
		if e.Status != models.EnrollmentEnrolled {
			return nil
		}
		return adjustEnrolledCount(ctx, tx, e.ScheduleID, 1)
	})
}

// FindByID returns an enrollment row.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.StudentEnrollment, error) {
	var e models.StudentEnrollment
	if err := r.db.GetContext(ctx, &e, `SELECT `+enrollmentColumns+` FROM student_enrollments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &e, nil
}

// List returns enrollments joined with schedule and subject details.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	where := squirrel.And{}
	if filter.StudentID != "" {
		where = append(where, squirrel.Eq{"e.student_id": filter.StudentID})
	}
	if filter.ScheduleID != "" {
		where = append(where, squirrel.Eq{"e.schedule_id": filter.ScheduleID})
	}
	if filter.SemesterID != "" {
		where = append(where, squirrel.Eq{"sc.semester_id": filter.SemesterID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"e.status": *filter.Status})
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	list := psql.Select(
		"e.id", "e.student_id", "e.schedule_id", "e.status", "e.grade", "e.enrolled_at", "e.updated_at",
		"u.first_name || ' ' || u.last_name AS student_name", "u.id_number",
		"sc.semester_id", "s.code AS subject_code", "s.title AS subject_title", "s.units",
		"sc.section", "sc.day", "sc.start_time", "sc.end_time",
	).From("student_enrollments e").
		Join("users u ON u.id = e.student_id").
		Join("schedules sc ON sc.id = e.schedule_id").
		Join("subjects s ON s.id = sc.subject_id").
		Where(where).
		OrderBy("e.enrolled_at DESC").
		Limit(limit).Offset(offset)
	count := psql.Select("COUNT(*)").From("student_enrollments e").
		Join("schedules sc ON sc.id = e.schedule_id").
		Where(where)

	items := []models.EnrollmentDetail{}
	total, err := selectPage(ctx, r.db, &items, list, count, "enrollments")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateStatus changes the status and moves the schedule count when the row
// enters or leaves the enrolled state.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) (*models.StudentEnrollment, error) {
	var updated models.StudentEnrollment
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current models.StudentEnrollment
		if err := tx.GetContext(ctx, &current, `SELECT `+enrollmentColumns+` FROM student_enrollments WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return fmt.Errorf("lock enrollment: %w", err)
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `UPDATE student_enrollments SET status = $2, updated_at = $3 WHERE id = $1`, id, status, now); err != nil {
			return fmt.Errorf("update enrollment status: %w", err)
		}

		switch {
		case current.Status == models.EnrollmentEnrolled && status != models.EnrollmentEnrolled:
			if err := adjustEnrolledCount(ctx, tx, current.ScheduleID, -1); err != nil {
				return err
			}
		case current.Status != models.EnrollmentEnrolled && status == models.EnrollmentEnrolled:
			if err := adjustEnrolledCount(ctx, tx, current.ScheduleID, 1); err != nil {
				return err
			}
		}

		updated = current
		updated.Status = status
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateGrade records a grade.
func (r *EnrollmentRepository) UpdateGrade(ctx context.Context, id string, grade *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE student_enrollments SET grade = $2, updated_at = $3 WHERE id = $1`, id, grade, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an enrollment, decrementing the count if it was enrolled.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var removed struct {
			ScheduleID string                  `db:"schedule_id"`
			Status     models.EnrollmentStatus `db:"status"`
		}
		if err := tx.GetContext(ctx, &removed, `DELETE FROM student_enrollments WHERE id = $1 RETURNING schedule_id, status`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return fmt.Errorf("delete enrollment: %w", err)
		}
		if removed.Status != models.EnrollmentEnrolled {
			return nil
		}
		return adjustEnrolledCount(ctx, tx, removed.ScheduleID, -1)
	})
}
