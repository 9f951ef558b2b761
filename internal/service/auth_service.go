package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

const (
	sessionCachePrefix     = "session:"
	sessionUserCachePrefix = "session-user:"
)

type authUserRepository interface {
	FindByIDNumber(ctx context.Context, idNumber string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

type authSessionRepository interface {
	Create(ctx context.Context, session *models.UserSession) error
	FindActiveByToken(ctx context.Context, token string, now time.Time) (*models.UserSession, error)
	Delete(ctx context.Context, id string) error
	DeleteOthers(ctx context.Context, userID, keepID string) (int64, error)
}

type activityRecorder interface {
	Create(ctx context.Context, log *models.ActivityLog) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	SessionTTL      time.Duration
	SessionCacheTTL time.Duration
	JWTSecret       string
	JWTExpiry       time.Duration
	Issuer          string
}

// RequestMeta carries caller details recorded with auth events.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// cachedSession maps a token onto its session row. The identity lives under
// a per-user key so account changes can invalidate every token at once.
type cachedSession struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type cachedSessionUser struct {
	IDNumber string          `json:"id_number"`
	Role     models.UserRole `json:"role"`
	FullName string          `json:"full_name"`
}

// evictSessionUser drops the cached identity of userID. The next request on
// any of the user's tokens is checked against the database again.
func evictSessionUser(ctx context.Context, cache *CacheService, userID string) {
	_ = cache.Delete(ctx, sessionUserCachePrefix+userID)
}

// AuthService provides authentication use cases.
type AuthService struct {
	users     authUserRepository
	sessions  authSessionRepository
	activity  activityRecorder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions authSessionRepository, activity activityRecorder, cache *CacheService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	validate, logger = defaults(validate, logger)
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	if config.JWTExpiry <= 0 {
		config.JWTExpiry = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		activity:  activity,
		cache:     cache,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Login checks credentials and opens a server-side session.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, err
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create session token")
	}

	now := s.now()
	session := &models.UserSession{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.config.SessionTTL),
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "failed to persist session")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	user.LastLogin = &now
	s.record(ctx, user.ID, models.ActivityLogin, RequestMeta{IP: req.IP, UserAgent: req.UserAgent})

	return &dto.LoginResponse{
		SessionToken: token,
		ExpiresAt:    session.ExpiresAt,
		User:         dto.NewUserInfo(user),
	}, nil
}

// Logout deletes the caller's current session.
func (s *AuthService) Logout(ctx context.Context, user *models.SessionUser, token string, meta RequestMeta) error {
	if err := s.sessions.Delete(ctx, user.SessionID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Internal(err, "failed to delete session")
	}
	if token != "" {
		_ = s.cache.Delete(ctx, sessionCachePrefix+token)
	}
	s.record(ctx, user.UserID, models.ActivityLogout, meta)
	return nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*dto.UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, repoError(err, "user not found", "failed to load user")
	}
	info := dto.NewUserInfo(user)
	return &info, nil
}

// ChangePassword replaces the caller's password and ends their other sessions.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.SessionUser, req dto.ChangePasswordRequest, meta RequestMeta) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Invalid(err, "invalid change password payload")
	}

	account, err := s.users.FindByID(ctx, user.UserID)
	if err != nil {
		return repoError(err, "user not found", "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "current password does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}

	if err := s.users.UpdatePassword(ctx, user.UserID, string(newHash), s.now()); err != nil {
		return repoError(err, "user not found", "failed to update password")
	}

	if _, err := s.sessions.DeleteOthers(ctx, user.UserID, user.SessionID); err != nil {
		s.logger.Warn("failed to drop other sessions after password change", zap.Error(err))
	}
	evictSessionUser(ctx, s.cache, user.UserID)
	s.record(ctx, user.UserID, models.ActivityPasswordChange, meta)
	return nil
}

// Authenticate resolves a session token into the caller's identity. Missing,
// expired or orphaned sessions and inactive accounts yield ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.SessionUser, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session token required")
	}

	now := s.now()
	key := sessionCachePrefix + token
	var cached cachedSession
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		if now.Before(cached.ExpiresAt) {
			var profile cachedSessionUser
			if hit, _ := s.cache.Get(ctx, sessionUserCachePrefix+cached.UserID, &profile); hit {
				return &models.SessionUser{
					UserID:    cached.UserID,
					SessionID: cached.SessionID,
					IDNumber:  profile.IDNumber,
					Role:      profile.Role,
					FullName:  profile.FullName,
				}, nil
			}
		} else {
			_ = s.cache.Delete(ctx, key)
		}
	}

	session, err := s.sessions.FindActiveByToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = s.cache.Delete(ctx, key)
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or invalid")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session user no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to load session user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account is inactive")
	}

	identity := &models.SessionUser{
		UserID:    user.ID,
		SessionID: session.ID,
		IDNumber:  user.IDNumber,
		Role:      user.Role,
		FullName:  user.FullName(),
	}

	ttl := session.ExpiresAt.Sub(now)
	if s.config.SessionCacheTTL > 0 && s.config.SessionCacheTTL < ttl {
		ttl = s.config.SessionCacheTTL
	}
	_ = s.cache.Set(ctx, key, cachedSession{UserID: user.ID, SessionID: session.ID, ExpiresAt: session.ExpiresAt}, ttl)
	_ = s.cache.Set(ctx, sessionUserCachePrefix+user.ID, cachedSessionUser{
		IDNumber: identity.IDNumber,
		Role:     identity.Role,
		FullName: identity.FullName,
	}, ttl)

	return identity, nil
}

// IssueToken returns a signed bearer token for the legacy routes.
func (s *AuthService) IssueToken(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.config.JWTExpiry)
	claims := &models.JWTClaims{
		UserID:   user.ID,
		IDNumber: user.IDNumber,
		Role:     user.Role,
		FullName: user.FullName(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign token")
	}
	return &dto.TokenResponse{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and validates a legacy bearer token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return nil, appErrors.As(appErrors.ErrUnauthorized, err, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) checkCredentials(ctx context.Context, req dto.LoginRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid login payload")
	}

	user, err := s.users.FindByIDNumber(ctx, req.IDNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "")
	}
	return user, nil
}

func (s *AuthService) record(ctx context.Context, userID, action string, meta RequestMeta) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Create(ctx, &models.ActivityLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "auth",
		ResourceID: &userID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record auth activity", zap.String("action", action), zap.Error(err))
	}
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
