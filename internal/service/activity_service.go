package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type activityRepository interface {
	Create(ctx context.Context, log *models.ActivityLog) error
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error)
}

// ActivityService reads and writes the audit trail.
type ActivityService struct {
	repo      activityRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo activityRepository, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	validate, logger = defaults(validate, logger)
	return &ActivityService{repo: repo, validator: validate, logger: logger}
}

// Record persists an entry. Failures are logged, not returned.
func (s *ActivityService) Record(ctx context.Context, entry *models.ActivityLog) {
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err),
		)
	}
}

// List pages the audit trail newest first.
func (s *ActivityService) List(ctx context.Context, query dto.ActivityQuery) ([]models.ActivityLog, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Invalid(err, "invalid activity filter")
	}
	filter := models.ActivityFilter{
		UserID:   query.UserID,
		Action:   query.Action,
		Resource: query.Resource,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.From != "" {
		from, _ := time.Parse("2006-01-02", query.From)
		filter.From = &from
	}
	if query.To != "" {
		to, _ := time.Parse("2006-01-02", query.To)
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list activity")
	}
	return items, models.NewPagination(query.Page, query.PageSize, total), nil
}
