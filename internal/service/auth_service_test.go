package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockAuthUsers struct {
	users            map[string]*models.User
	lastLoginUpdated bool
	passwordHash     string
}

func (m *mockAuthUsers) FindByIDNumber(ctx context.Context, idNumber string) (*models.User, error) {
	for _, u := range m.users {
		if u.IDNumber == idNumber {
			copy := *u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthUsers) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.passwordHash = passwordHash
	m.users[id].PasswordHash = passwordHash
	return nil
}

type mockSessions struct {
	sessions      map[string]*models.UserSession
	deleted       []string
	othersDropped string
}

func (m *mockSessions) Create(ctx context.Context, session *models.UserSession) error {
	if m.sessions == nil {
		m.sessions = map[string]*models.UserSession{}
	}
	session.ID = fmt.Sprintf("sess-%s-%d", session.UserID, len(m.sessions)+1)
	copy := *session
	m.sessions[session.Token] = &copy
	return nil
}

func (m *mockSessions) FindActiveByToken(ctx context.Context, token string, now time.Time) (*models.UserSession, error) {
	s, ok := m.sessions[token]
	if !ok || s.Expired(now) {
		return nil, sql.ErrNoRows
	}
	copy := *s
	return &copy, nil
}

func (m *mockSessions) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	for token, s := range m.sessions {
		if s.ID == id {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *mockSessions) DeleteOthers(ctx context.Context, userID, keepID string) (int64, error) {
	m.othersDropped = keepID
	var n int64
	for token, s := range m.sessions {
		if s.UserID == userID && s.ID != keepID {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

type mockActivity struct {
	logs []*models.ActivityLog
}

func (m *mockActivity) Create(ctx context.Context, log *models.ActivityLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func newAuthFixture(t *testing.T, active bool) (*AuthService, *mockAuthUsers, *mockSessions, *mockActivity) {
	t.Helper()
	return newAuthFixtureWithCache(t, active, nil)
}

func newAuthFixtureWithCache(t *testing.T, active bool, cache *CacheService) (*AuthService, *mockAuthUsers, *mockSessions, *mockActivity) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &mockAuthUsers{users: map[string]*models.User{
		"user-1": {ID: "user-1", IDNumber: "2026-00001", PasswordHash: string(hash), Role: models.RoleStudent, FirstName: "Ana", LastName: "Cruz", Active: active},
	}}
	sessions := &mockSessions{}
	activity := &mockActivity{}
	svc := NewAuthService(users, sessions, activity, cache, nil, nil, AuthConfig{
		SessionTTL: time.Hour,
		JWTSecret:  "secret",
		JWTExpiry:  time.Hour,
		Issuer:     "school-admin-api",
	})
	return svc, users, sessions, activity
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, users, sessions, activity := newAuthFixture(t, true)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{IDNumber: "2026-00001", Password: "password123", IP: "10.0.0.1"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionToken)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.True(t, users.lastLoginUpdated)
	require.Contains(t, sessions.sessions, resp.SessionToken)
	assert.Equal(t, "10.0.0.1", sessions.sessions[resp.SessionToken].IPAddress)
	require.Len(t, activity.logs, 1)
	assert.Equal(t, models.ActivityLogin, activity.logs[0].Action)
}

func TestAuthServiceLoginRejectsBadPassword(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), dto.LoginRequest{IDNumber: "2026-00001", Password: "wrong-pass"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	assert.Empty(t, sessions.sessions)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), dto.LoginRequest{IDNumber: "2026-00001", Password: "password123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthServiceAuthenticate(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture(t, true)
	resp, err := svc.Login(context.Background(), dto.LoginRequest{IDNumber: "2026-00001", Password: "password123"})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), resp.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "Ana Cruz", user.FullName)

	sessions.sessions[resp.SessionToken].ExpiresAt = time.Now().Add(-time.Minute)
	_, err = svc.Authenticate(context.Background(), resp.SessionToken)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestAuthServiceAuthenticateRejectsDeactivatedUser(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t, true)
	resp, err := svc.Login(context.Background(), dto.LoginRequest{IDNumber: "2026-00001", Password: "password123"})
	require.NoError(t, err)

	users.users["user-1"].Active = false
	_, err = svc.Authenticate(context.Background(), resp.SessionToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceAuthenticateMissingToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t, true)

	_, err := svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	_, err = svc.Authenticate(context.Background(), "unknown")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, users, sessions, activity := newAuthFixture(t, true)
	caller := &models.SessionUser{UserID: "user-1", SessionID: "sess-user-1", Role: models.RoleStudent}

	err := svc.ChangePassword(context.Background(), caller, dto.ChangePasswordRequest{CurrentPassword: "wrong-pass", NewPassword: "newpassword1"}, RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	err = svc.ChangePassword(context.Background(), caller, dto.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"}, RequestMeta{})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.passwordHash), []byte("newpassword1")))
	assert.Equal(t, "sess-user-1", sessions.othersDropped)
	require.NotEmpty(t, activity.logs)
	assert.Equal(t, models.ActivityPasswordChange, activity.logs[len(activity.logs)-1].Action)
}

func TestAuthServiceLogoutDeletesSession(t *testing.T) {
	svc, _, sessions, activity := newAuthFixture(t, true)
	caller := &models.SessionUser{UserID: "user-1", SessionID: "sess-user-1"}

	require.NoError(t, svc.Logout(context.Background(), caller, "token", RequestMeta{}))
	assert.Equal(t, []string{"sess-user-1"}, sessions.deleted)
	require.Len(t, activity.logs, 1)
	assert.Equal(t, models.ActivityLogout, activity.logs[0].Action)
}

func TestAuthServiceIssueAndValidateToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t, true)

	token, err := svc.IssueToken(context.Background(), dto.LoginRequest{IDNumber: "2026-00001", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)

	_, err = svc.ValidateToken(token.AccessToken + "x")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceCachedSessionsFollowRevocation(t *testing.T) {
	store := newMemoryCache()
	svc, _, sessions, _ := newAuthFixtureWithCache(t, true, NewCacheService(store, nil, time.Minute, nil, true))
	ctx := context.Background()
	login := dto.LoginRequest{IDNumber: "2026-00001", Password: "password123"}

	first, err := svc.Login(ctx, login)
	require.NoError(t, err)
	second, err := svc.Login(ctx, login)
	require.NoError(t, err)

	current, err := svc.Authenticate(ctx, first.SessionToken)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, second.SessionToken)
	require.NoError(t, err)
	assert.True(t, store.has(sessionCachePrefix+second.SessionToken))
	assert.True(t, store.has(sessionUserCachePrefix+"user-1"))

	err = svc.ChangePassword(ctx, current, dto.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"}, RequestMeta{})
	require.NoError(t, err)
	require.NotContains(t, sessions.sessions, second.SessionToken)

	_, err = svc.Authenticate(ctx, second.SessionToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.False(t, store.has(sessionCachePrefix+second.SessionToken))

	user, err := svc.Authenticate(ctx, first.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
}

func TestAuthServiceCachedSessionsFollowAccountChanges(t *testing.T) {
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	svc, users, _, _ := newAuthFixtureWithCache(t, true, cache)
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{IDNumber: "2026-00001", Password: "password123"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, resp.SessionToken)
	require.NoError(t, err)

	users.users["user-1"].Role = models.RoleAccounting
	evictSessionUser(ctx, cache, "user-1")
	user, err := svc.Authenticate(ctx, resp.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAccounting, user.Role)

	users.users["user-1"].Active = false
	evictSessionUser(ctx, cache, "user-1")
	_, err = svc.Authenticate(ctx, resp.SessionToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
