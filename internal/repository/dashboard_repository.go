package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/dto"
)

// DashboardRepository runs the aggregate queries behind the dashboards.
type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// AdminCounts returns institution-wide counters.
func (r *DashboardRepository) AdminCounts(ctx context.Context, semesterID string) (*dto.AdminDashboard, error) {
	const query = `
SELECT
    (SELECT COUNT(*) FROM users WHERE role = 'student' AND active) AS total_students,
    (SELECT COUNT(*) FROM users WHERE role <> 'student' AND active) AS total_staff,
    (SELECT COUNT(*) FROM student_registrations WHERE registration_status = 'pending') AS pending_registrations,
    (SELECT COUNT(*) FROM document_requests WHERE status IN ('pending', 'processing')) AS open_requests,
    (SELECT COUNT(*) FROM student_requirements WHERE status = 'submitted') AS requirements_to_verify,
    (SELECT COUNT(*) FROM schedules WHERE semester_id = $1) AS schedules,
    (SELECT COUNT(*) FROM student_enrollments e JOIN schedules s ON s.id = e.schedule_id WHERE s.semester_id = $1 AND e.status = 'enrolled') AS active_enrollments`
	var out dto.AdminDashboard
	if err := r.db.GetContext(ctx, &out, query, semesterID); err != nil {
		return nil, fmt.Errorf("admin dashboard: %w", err)
	}
	out.SemesterID = semesterID
	return &out, nil
}

// StudentCounts returns counters scoped to one student.
func (r *DashboardRepository) StudentCounts(ctx context.Context, studentID, semesterID string) (*dto.StudentDashboard, error) {
	const query = `
SELECT
    (SELECT COUNT(*) FROM student_enrollments e JOIN schedules s ON s.id = e.schedule_id WHERE e.student_id = $1 AND s.semester_id = $2 AND e.status = 'enrolled') AS enrolled_subjects,
    (SELECT COALESCE(SUM(sub.units), 0) FROM student_enrollments e JOIN schedules s ON s.id = e.schedule_id JOIN subjects sub ON sub.id = s.subject_id WHERE e.student_id = $1 AND s.semester_id = $2 AND e.status = 'enrolled') AS enrolled_units,
    (SELECT COUNT(*) FROM document_requests WHERE student_id = $1 AND status NOT IN ('released', 'rejected')) AS open_requests,
    (SELECT COUNT(*) FROM student_requirements WHERE student_id = $1 AND status IN ('pending', 'rejected')) AS pending_requirements,
    (SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE) AS unread_notifications,
    (SELECT COALESCE(SUM(total_cents), 0) FROM assessments WHERE student_id = $1)
      - (SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE student_id = $1 AND status = 'verified') AS balance_cents`
	var out dto.StudentDashboard
	if err := r.db.GetContext(ctx, &out, query, studentID, semesterID); err != nil {
		return nil, fmt.Errorf("student dashboard: %w", err)
	}
	out.SemesterID = semesterID
	return &out, nil
}

// AccountingCounts returns payment counters for a semester.
func (r *DashboardRepository) AccountingCounts(ctx context.Context, semesterID string) (*dto.AccountingDashboard, error) {
	const query = `
SELECT
    (SELECT COUNT(*) FROM payments WHERE status = 'pending') AS pending_payments,
    (SELECT COUNT(*) FROM payments WHERE status = 'verified' AND verified_at >= date_trunc('day', NOW())) AS verified_today,
    (SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE status = 'verified' AND semester_id = $1) AS collected_cents,
    (SELECT COALESCE(SUM(total_cents), 0) FROM assessments WHERE semester_id = $1) AS assessed_cents,
    (SELECT COUNT(*) FROM assessments WHERE semester_id = $1) AS assessed_students`
	var out dto.AccountingDashboard
	if err := r.db.GetContext(ctx, &out, query, semesterID); err != nil {
		return nil, fmt.Errorf("accounting dashboard: %w", err)
	}
	out.SemesterID = semesterID
	out.OutstandingCents = out.AssessedCents - out.CollectedCents
	return &out, nil
}
