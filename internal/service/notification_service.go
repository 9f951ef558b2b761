package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/jobs"
)

// JobBroadcastNotification fans an announcement out to users.
const JobBroadcastNotification = "notifications.broadcast"

type notificationRepository interface {
	Broadcast(ctx context.Context, role *models.UserRole, notifType, message string) (int64, error)
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// NotificationService manages the caller's in-app notifications.
type NotificationService struct {
	repo      notificationRepository
	queue     jobEnqueuer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(repo notificationRepository, queue jobEnqueuer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	validate, logger = defaults(validate, logger)
	return &NotificationService{repo: repo, queue: queue, metrics: metrics, validator: validate, logger: logger}
}

// List returns the user's notifications newest first.
func (s *NotificationService) List(ctx context.Context, userID string, query dto.NotificationQuery) ([]models.Notification, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, models.NotificationFilter{
		UserID:   userID,
		IsRead:   query.IsRead,
		Type:     query.Type,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list notifications")
	}
	return items, models.NewPagination(query.Page, query.PageSize, total), nil
}

// UnreadCount returns how many unread notifications the user has.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (*dto.UnreadCount, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count notifications")
	}
	return &dto.UnreadCount{Unread: n}, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return repoError(err, "notification not found", "failed to update notification")
	}
	return nil
}

// MarkAllRead sets is_read on every notification owned by the user.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (*dto.AffectedRows, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update notifications")
	}
	return &dto.AffectedRows{Affected: n}, nil
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return repoError(err, "notification not found", "failed to delete notification")
	}
	return nil
}

// DeleteAll clears the user's notifications.
func (s *NotificationService) DeleteAll(ctx context.Context, userID string) (*dto.AffectedRows, error) {
	n, err := s.repo.DeleteAll(ctx, userID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to delete notifications")
	}
	return &dto.AffectedRows{Affected: n}, nil
}

// Broadcast queues an announcement for every active user, optionally one role.
func (s *NotificationService) Broadcast(ctx context.Context, req dto.BroadcastRequest) (*dto.JobAccepted, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid broadcast payload")
	}
	id, err := s.queue.Enqueue(JobBroadcastNotification, req)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to queue broadcast")
	}
	return &dto.JobAccepted{JobID: id, Type: JobBroadcastNotification}, nil
}

// HandleBroadcast is the queue handler for JobBroadcastNotification.
func (s *NotificationService) HandleBroadcast(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.BroadcastRequest)
	if !ok {
		return fmt.Errorf("unexpected broadcast payload %T", job.Payload)
	}
	n, err := s.repo.Broadcast(ctx, req.Role, models.NotificationAnnouncement, req.Message)
	s.metrics.RecordJob(job.Type, err)
	if err != nil {
		return err
	}
	s.logger.Info("announcement broadcast", zap.Int64("recipients", n))
	return nil
}
