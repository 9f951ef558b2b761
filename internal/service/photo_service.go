package service

import (
	"context"
	"mime/multipart"

	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/storage"
)

type photoRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfilePhoto(ctx context.Context, id string, photo *string) error
}

type photoStore interface {
	fileStore
	filePather
}

// PhotoService manages profile photos.
type PhotoService struct {
	users   photoRepository
	files   photoStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewPhotoService constructs a PhotoService.
func NewPhotoService(users photoRepository, files photoStore, metrics *MetricsService, logger *zap.Logger) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoService{users: users, files: files, metrics: metrics, logger: logger}
}

// Upload replaces the user's photo. Only the user or an admin may change it.
func (s *PhotoService) Upload(ctx context.Context, caller *models.SessionUser, userID string, fh *multipart.FileHeader) (*dto.UserInfo, error) {
	user, err := s.load(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	stored, err := storeUpload(s.files, s.metrics, storage.CategoryPhotos, fh, storage.ImageMIMEs)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfilePhoto(ctx, user.ID, &stored.Path); err != nil {
		_ = s.files.Delete(stored.Path)
		return nil, repoError(err, "user not found", "failed to update profile photo")
	}
	s.remove(user.ProfilePhoto)
	user.ProfilePhoto = &stored.Path
	info := dto.NewUserInfo(user)
	return &info, nil
}

// Delete clears the user's photo.
func (s *PhotoService) Delete(ctx context.Context, caller *models.SessionUser, userID string) error {
	user, err := s.load(ctx, caller, userID)
	if err != nil {
		return err
	}
	if user.ProfilePhoto == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "user has no profile photo")
	}
	if err := s.users.UpdateProfilePhoto(ctx, user.ID, nil); err != nil {
		return repoError(err, "user not found", "failed to clear profile photo")
	}
	s.remove(user.ProfilePhoto)
	return nil
}

// Path returns the on-disk location of a user's photo. Any signed-in user
// may view photos.
func (s *PhotoService) Path(ctx context.Context, userID string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", repoError(err, "user not found", "failed to load user")
	}
	if user.ProfilePhoto == nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "user has no profile photo")
	}
	return s.files.Path(*user.ProfilePhoto), nil
}

func (s *PhotoService) load(ctx context.Context, caller *models.SessionUser, userID string) (*models.User, error) {
	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID && caller.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot change another user's photo")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, repoError(err, "user not found", "failed to load user")
	}
	return user, nil
}

func (s *PhotoService) remove(path *string) {
	if path == nil {
		return
	}
	if err := s.files.Delete(*path); err != nil {
		s.logger.Warn("failed to remove old profile photo", zap.String("path", *path), zap.Error(err))
	}
}
