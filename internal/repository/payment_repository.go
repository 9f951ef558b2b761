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

var paymentDetailColumns = []string{
	"p.id", "p.student_id", "p.semester_id", "p.amount_cents", "p.method", "p.reference_number",
	"p.proof_path", "p.status", "p.remarks", "p.recorded_by", "p.verified_by", "p.verified_at", "p.created_at",
	"u.id_number", "u.first_name || ' ' || u.last_name AS student_name",
}

// PaymentRepository stores payments.
type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func paymentWhere(filter models.PaymentFilter) squirrel.And {
	where := squirrel.And{}
	if filter.StudentID != "" {
		where = append(where, squirrel.Eq{"p.student_id": filter.StudentID})
	}
	if filter.SemesterID != "" {
		where = append(where, squirrel.Eq{"p.semester_id": filter.SemesterID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"p.status": *filter.Status})
	}
	if filter.Method != "" {
		where = append(where, squirrel.Eq{"p.method": filter.Method})
	}
	if filter.From != nil {
		where = append(where, squirrel.GtOrEq{"p.created_at": *filter.From})
	}
	if filter.To != nil {
		where = append(where, squirrel.Lt{"p.created_at": *filter.To})
	}
	return where
}

func paymentSelect() squirrel.SelectBuilder {
	return psql.Select(paymentDetailColumns...).From("payments p").Join("users u ON u.id = p.student_id")
}

// Create records a payment.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	const query = `INSERT INTO payments (id, student_id, semester_id, amount_cents, method, reference_number, proof_path, status, remarks, recorded_by, verified_by, verified_at, created_at) VALUES (:id, :student_id, :semester_id, :amount_cents, :method, :reference_number, :proof_path, :status, :remarks, :recorded_by, :verified_by, :verified_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create payment: %w", database.Classify(err))
	}
	return nil
}

// FindByID returns a payment with payer details.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.PaymentDetail, error) {
	query, args, err := paymentSelect().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build payment query: %w", err)
	}
	var detail models.PaymentDetail
	if err := r.db.GetContext(ctx, &detail, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &detail, nil
}

// List returns a page of payments newest first.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	where := paymentWhere(filter)
	limit, offset := pageBounds(filter.Page, filter.PageSize)
	list := paymentSelect().Where(where).OrderBy("p.created_at DESC").Limit(limit).Offset(offset)
	count := psql.Select("COUNT(*)").From("payments p").Where(where)

	items := []models.PaymentDetail{}
	total, err := selectPage(ctx, r.db, &items, list, count, "payments")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListAll returns every payment matching the filter, for exports.
func (r *PaymentRepository) ListAll(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, error) {
	query, args, err := paymentSelect().Where(paymentWhere(filter)).OrderBy("p.created_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build payments export query: %w", err)
	}
	items := []models.PaymentDetail{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("export payments: %w", err)
	}
	return items, nil
}

// Verify stores the verification outcome of a pending payment and notifies
// the payer. sql.ErrNoRows means the payment was missing or already reviewed.
func (r *PaymentRepository) Verify(ctx context.Context, id string, status models.PaymentStatus, remarks *string, verifierID string, notification *models.Notification) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `UPDATE payments SET status = $2, remarks = $3, verified_by = $4, verified_at = $5 WHERE id = $1 AND status = $6`
		res, err := tx.ExecContext(ctx, query, id, status, remarks, verifierID, time.Now().UTC(), models.PaymentPending)
		if err != nil {
			return fmt.Errorf("verify payment: %w", err)
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
