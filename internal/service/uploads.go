package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/storage"
)

type fileStore interface {
	SaveUpload(category string, fh *multipart.FileHeader, allowed []string) (*storage.StoredFile, error)
	Delete(rel string) error
}

type jobEnqueuer interface {
	Enqueue(jobType string, payload interface{}) (string, error)
}

type settingReader interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
}

func storeUpload(store fileStore, metrics *MetricsService, category string, fh *multipart.FileHeader, allowed []string) (*storage.StoredFile, error) {
	stored, err := store.SaveUpload(category, fh, allowed)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fh.Filename+" exceeds the upload size limit")
		case errors.Is(err, storage.ErrUnsupportedType):
			return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, fh.Filename+" has an unsupported file type")
		default:
			return nil, appErrors.Internal(err, "failed to store upload")
		}
	}
	metrics.RecordUpload(category, stored.Size)
	return stored, nil
}

// settingEnabled reads a BOOLEAN setting; a missing row counts as false.
func settingEnabled(ctx context.Context, settings settingReader, key string) (bool, error) {
	setting, err := settings.Get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, appErrors.Internal(err, "failed to read setting "+key)
	}
	return setting.Value == "true", nil
}

// activeSemesterID returns the configured active semester or "".
func activeSemesterID(ctx context.Context, settings settingReader) string {
	setting, err := settings.Get(ctx, models.SettingActiveSemesterID)
	if err != nil {
		return ""
	}
	return setting.Value
}
