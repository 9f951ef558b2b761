package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type settingRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

// SettingService exposes the system settings table.
type SettingService struct {
	repo      settingRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingService constructs a SettingService.
func NewSettingService(repo settingRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SettingService {
	validate, logger = defaults(validate, logger)
	return &SettingService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every setting.
func (s *SettingService) List(ctx context.Context) ([]models.Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list settings")
	}
	return settings, nil
}

// Get returns one setting by key.
func (s *SettingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, repoError(err, "setting not found", "failed to load setting")
	}
	return setting, nil
}

// Update writes a setting. BOOLEAN settings accept only "true" or "false".
func (s *SettingService) Update(ctx context.Context, key, actorID string, req dto.UpdateSettingRequest) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "setting key is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid setting payload")
	}

	settingType := models.SettingType(req.Type)
	existing, err := s.repo.Get(ctx, key)
	switch {
	case err == nil:
		if settingType == "" {
			settingType = existing.Type
		}
	case isNotFound(err):
		if settingType == "" {
			settingType = models.SettingTypeString
		}
	default:
		return nil, appErrors.Internal(err, "failed to load setting")
	}

	value := req.Value
	if settingType == models.SettingTypeBoolean {
		value = strings.ToLower(strings.TrimSpace(value))
		if value != "true" && value != "false" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "boolean settings must be true or false")
		}
	}

	setting := &models.Setting{
		Key:         key,
		Value:       value,
		Type:        settingType,
		Description: req.Description,
		UpdatedBy:   &actorID,
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, appErrors.Internal(err, "failed to save setting")
	}
	if setting.Description == nil && existing != nil {
		setting.Description = existing.Description
	}
	if key == models.SettingActiveSemesterID {
		_ = s.cache.Invalidate(ctx, dashboardCachePrefix+"*")
	}
	s.logger.Info("setting updated", zap.String("key", key), zap.String("by", actorID))
	return setting, nil
}
