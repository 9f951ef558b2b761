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
)

const notificationColumns = "id, user_id, request_id, type, message, is_read, created_at"

// NotificationRepository stores per-user notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func insertNotification(ctx context.Context, ext sqlx.ExtContext, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, user_id, request_id, type, message, is_read, created_at) VALUES (:id, :user_id, :request_id, :type, :message, :is_read, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// Create inserts a single notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return insertNotification(ctx, r.db, n)
}

// Broadcast fans a message out to every active user, optionally restricted to
// one role, and returns the number of rows written.
func (r *NotificationRepository) Broadcast(ctx context.Context, role *models.UserRole, notifType, message string) (int64, error) {
	builder := psql.Insert("notifications").
		Columns("id", "user_id", "type", "message", "is_read", "created_at")

	selectUsers := psql.Select().
		Column("gen_random_uuid()::text").
		Column("id").
		Column("?", notifType).
		Column("?", message).
		Column("FALSE").
		Column("?", time.Now().UTC()).
		From("users").
		Where(squirrel.Eq{"active": true})
	if role != nil {
		selectUsers = selectUsers.Where(squirrel.Eq{"role": *role})
	}

	query, args, err := builder.Select(selectUsers).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build broadcast: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("broadcast notification: %w", err)
	}
	return res.RowsAffected()
}

// List returns a user's notifications newest first.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	where := squirrel.And{squirrel.Eq{"user_id": filter.UserID}}
	if filter.IsRead != nil {
		where = append(where, squirrel.Eq{"is_read": *filter.IsRead})
	}
	if filter.Type != "" {
		where = append(where, squirrel.Eq{"type": filter.Type})
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	list := psql.Select(notificationColumns).From("notifications").Where(where).OrderBy("created_at DESC").Limit(limit).Offset(offset)
	count := psql.Select("COUNT(*)").From("notifications").Where(where)

	items := []models.Notification{}
	total, err := selectPage(ctx, r.db, &items, list, count, "notifications")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountUnread returns how many unread notifications a user has.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// FindByID returns a notification.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	var n models.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &n, nil
}

// MarkRead flags one of the user's notifications as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return expectAffected(res)
}

// MarkAllRead sets is_read on every notification owned by userID.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes one of the user's notifications.
func (r *NotificationRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return expectAffected(res)
}

// DeleteAll clears a user's notifications.
func (r *NotificationRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}
	return res.RowsAffected()
}
