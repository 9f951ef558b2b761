package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

const activityColumns = "id, user_id, action, resource, resource_id, details, ip_address, user_agent, created_at"

// ActivityRepository stores the audit trail.
type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create stores an activity entry.
func (r *ActivityRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activity_logs (` + activityColumns + `) VALUES (:id, :user_id, :action, :resource, :resource_id, :details, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

// List returns activity entries newest first.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error) {
	where := squirrel.And{}
	if filter.UserID != "" {
		where = append(where, squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Action != "" {
		where = append(where, squirrel.Eq{"action": filter.Action})
	}
	if filter.Resource != "" {
		where = append(where, squirrel.Eq{"resource": filter.Resource})
	}
	if filter.From != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		where = append(where, squirrel.Lt{"created_at": *filter.To})
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	list := psql.Select(activityColumns).From("activity_logs").Where(where).OrderBy("created_at DESC").Limit(limit).Offset(offset)
	count := psql.Select("COUNT(*)").From("activity_logs").Where(where)

	items := []models.ActivityLog{}
	total, err := selectPage(ctx, r.db, &items, list, count, "activity logs")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
