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

const requestColumns = "id, student_id, document_type, purpose, status, documents, remarks, created_at, updated_at"

// RequestRepository stores document requests.
type RequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a request with its uploaded document paths.
func (r *RequestRepository) Create(ctx context.Context, req *models.DocumentRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = models.RequestPending
	}
	if req.Documents == nil {
		req.Documents = []string{}
	}
	const query = `INSERT INTO document_requests (id, student_id, document_type, purpose, status, documents, remarks, created_at, updated_at) VALUES (:id, :student_id, :document_type, :purpose, :status, :documents, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create request: %w", database.Classify(err))
	}
	return nil
}

// FindByID returns a request.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.DocumentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM document_requests WHERE id = $1`
	var req models.DocumentRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return &req, nil
}

// List returns requests newest first.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.DocumentRequest, int, error) {
	where := squirrel.And{}
	if filter.StudentID != "" {
		where = append(where, squirrel.Eq{"student_id": filter.StudentID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if filter.DocumentType != "" {
		where = append(where, squirrel.Eq{"document_type": filter.DocumentType})
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	list := psql.Select(requestColumns).From("document_requests").Where(where).OrderBy("created_at DESC").Limit(limit).Offset(offset)
	count := psql.Select("COUNT(*)").From("document_requests").Where(where)

	items := []models.DocumentRequest{}
	total, err := selectPage(ctx, r.db, &items, list, count, "requests")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateStatus changes the status and notifies the owner in one transaction.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status models.RequestStatus, remarks *string, notification *models.Notification) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `UPDATE document_requests SET status = $2, remarks = $3, updated_at = $4 WHERE id = $1`
		res, err := tx.ExecContext(ctx, query, id, status, remarks, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("update request status: %w", err)
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

// Delete removes a request. Notifications keep their rows with request_id nulled.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM document_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return expectAffected(res)
}
