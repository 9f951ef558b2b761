package service

import (
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/storage"
)

type urlSigner interface {
	Generate(ownerID, relPath string) (string, time.Time, error)
	Parse(token string) (ownerID, relPath string, err error)
}

type filePather interface {
	Path(rel string) string
}

// FileService issues and redeems signed download links for uploads.
type FileService struct {
	signer      urlSigner
	files       filePather
	downloadURL string
	logger      *zap.Logger
}

// NewFileService constructs a FileService. downloadURL is the absolute
// route path that redeems tokens, e.g. /api/v1/files/download.
func NewFileService(signer urlSigner, files filePather, downloadURL string, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{signer: signer, files: files, downloadURL: downloadURL, logger: logger}
}

// Link signs relPath for ownerID.
func (s *FileService) Link(ownerID, relPath string) (*dto.FileLink, error) {
	token, expiresAt, err := s.signer.Generate(ownerID, relPath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download link")
	}
	return &dto.FileLink{
		URL:       s.downloadURL + "?token=" + url.QueryEscape(token),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve validates token and returns the on-disk path it grants. The
// caller must be the owner or staff.
func (s *FileService) Resolve(caller *models.SessionUser, token string) (string, error) {
	ownerID, rel, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return "", appErrors.Clone(appErrors.ErrForbidden, "download link has expired")
		}
		return "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	if !caller.CanAccessStudent(ownerID) {
		s.logger.Warn("download token used by another user", zap.String("owner", ownerID), zap.String("caller", caller.UserID))
		return "", appErrors.Clone(appErrors.ErrForbidden, "download link belongs to another user")
	}
	return s.files.Path(rel), nil
}
