package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type sessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.UserSession, error)
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]models.UserSession, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionService lets users inspect and revoke their sessions.
type SessionService struct {
	repo   sessionRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, cache *CacheService, logger *zap.Logger) *SessionService {
	_, logger = defaults(nil, logger)
	return &SessionService{repo: repo, cache: cache, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the caller's unexpired sessions.
func (s *SessionService) List(ctx context.Context, user *models.SessionUser) ([]models.UserSession, error) {
	sessions, err := s.repo.ListActiveByUser(ctx, user.UserID, s.now())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sessions")
	}
	return sessions, nil
}

// Revoke deletes a session. Non-admins may only revoke their own.
func (s *SessionService) Revoke(ctx context.Context, user *models.SessionUser, id string) error {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return repoError(err, "session not found", "failed to load session")
	}
	if session.UserID != user.UserID && user.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "session not found", "failed to delete session")
	}
	_ = s.cache.Delete(ctx, sessionCachePrefix+session.Token)
	return nil
}

// PurgeExpired deletes every expired session.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, appErrors.Internal(err, "failed to purge sessions")
	}
	s.logger.Info("expired sessions purged", zap.Int64("count", n))
	return n, nil
}
