package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/pkg/database"
)

const assessmentColumns = "id, student_id, semester_id, tuition_cents, misc_cents, lab_cents, total_cents, created_by, created_at"

// AccountingRepository stores assessments and computes balances.
type AccountingRepository struct {
	db *sqlx.DB
}

func NewAccountingRepository(db *sqlx.DB) *AccountingRepository {
	return &AccountingRepository{db: db}
}

// CreateAssessment inserts a fee assessment. One per student per semester.
func (r *AccountingRepository) CreateAssessment(ctx context.Context, a *models.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	a.TotalCents = a.TuitionCents + a.MiscCents + a.LabCents
	const query = `INSERT INTO assessments (` + assessmentColumns + `) VALUES (:id, :student_id, :semester_id, :tuition_cents, :misc_cents, :lab_cents, :total_cents, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create assessment: %w", database.Classify(err))
	}
	return nil
}

// ListAssessments returns assessments newest first.
func (r *AccountingRepository) ListAssessments(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, int, error) {
	where := squirrel.And{}
	if filter.StudentID != "" {
		where = append(where, squirrel.Eq{"student_id": filter.StudentID})
	}
	if filter.SemesterID != "" {
		where = append(where, squirrel.Eq{"semester_id": filter.SemesterID})
	}
	limit, offset := pageBounds(filter.Page, filter.PageSize)
	list := psql.Select(assessmentColumns).From("assessments").Where(where).OrderBy("created_at DESC").Limit(limit).Offset(offset)
	count := psql.Select("COUNT(*)").From("assessments").Where(where)

	items := []models.Assessment{}
	total, err := selectPage(ctx, r.db, &items, list, count, "assessments")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Ledger returns per-semester assessed, verified-paid and balance amounts for a student.
func (r *AccountingRepository) Ledger(ctx context.Context, studentID string) ([]models.LedgerLine, error) {
	const query = `
SELECT sem.id AS semester_id,
       sem.name AS semester_name,
       COALESCE(a.total_cents, 0) AS assessed_cents,
       COALESCE(p.paid_cents, 0) AS paid_cents,
       COALESCE(a.total_cents, 0) - COALESCE(p.paid_cents, 0) AS balance_cents
FROM semesters sem
LEFT JOIN assessments a ON a.semester_id = sem.id AND a.student_id = $1
LEFT JOIN (
    SELECT semester_id, SUM(amount_cents) AS paid_cents
    FROM payments
    WHERE student_id = $1 AND status = 'verified'
    GROUP BY semester_id
) p ON p.semester_id = sem.id
WHERE a.id IS NOT NULL OR p.paid_cents IS NOT NULL
ORDER BY sem.start_date DESC`
	lines := []models.LedgerLine{}
	if err := r.db.SelectContext(ctx, &lines, query, studentID); err != nil {
		return nil, fmt.Errorf("student ledger: %w", err)
	}
	return lines, nil
}

// Summary aggregates assessments and payments, optionally for one semester.
func (r *AccountingRepository) Summary(ctx context.Context, semesterID string) (*models.AccountingSummary, error) {
	assessed := psql.Select("COALESCE(SUM(total_cents), 0)").From("assessments")
	payments := psql.Select(
		"COALESCE(SUM(amount_cents) FILTER (WHERE status = 'verified'), 0) AS collected_cents",
		"COALESCE(SUM(amount_cents) FILTER (WHERE status = 'pending'), 0) AS pending_cents",
		"COUNT(*) FILTER (WHERE status = 'pending') AS pending_payments_count",
	).From("payments")
	if semesterID != "" {
		assessed = assessed.Where(squirrel.Eq{"semester_id": semesterID})
		payments = payments.Where(squirrel.Eq{"semester_id": semesterID})
	}

	var summary models.AccountingSummary
	query, args, err := assessed.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build assessed sum: %w", err)
	}
	if err := r.db.GetContext(ctx, &summary.AssessedCents, query, args...); err != nil {
		return nil, fmt.Errorf("sum assessments: %w", err)
	}

	query, args, err = payments.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build payment sums: %w", err)
	}
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}
	summary.OutstandingCents = summary.AssessedCents - summary.CollectedCents
	return &summary, nil
}
