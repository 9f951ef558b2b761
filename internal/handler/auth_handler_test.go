package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type fakeAuthSrv struct {
	loginResp   *dto.LoginResponse
	loginErr    error
	lastLogin   dto.LoginRequest
	loggedOut   string
	logoutToken string
}

func (f *fakeAuthSrv) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	f.lastLogin = req
	return f.loginResp, f.loginErr
}

func (f *fakeAuthSrv) Logout(_ context.Context, user *models.SessionUser, token string, _ service.RequestMeta) error {
	f.loggedOut = user.SessionID
	f.logoutToken = token
	return nil
}

func (f *fakeAuthSrv) Me(_ context.Context, userID string) (*dto.UserInfo, error) {
	return &dto.UserInfo{ID: userID}, nil
}

func (f *fakeAuthSrv) ChangePassword(context.Context, *models.SessionUser, dto.ChangePasswordRequest, service.RequestMeta) error {
	return nil
}

func (f *fakeAuthSrv) IssueToken(context.Context, dto.LoginRequest) (*dto.TokenResponse, error) {
	return &dto.TokenResponse{AccessToken: "jwt", TokenType: "Bearer"}, nil
}

func TestAuthHandlerLoginSetsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAuthSrv{loginResp: &dto.LoginResponse{
		SessionToken: "tok-123",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         dto.UserInfo{ID: "user-1", Role: models.RoleStudent},
	}}
	handler := NewAuthHandler(srv, CookieConfig{Name: "sessionToken"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"id_number":"2026-00001","password":"secret123"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("User-Agent", "test-agent")

	handler.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-00001", srv.lastLogin.IDNumber)
	assert.Equal(t, "test-agent", srv.lastLogin.UserAgent)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sessionToken", cookies[0].Name)
	assert.Equal(t, "tok-123", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Greater(t, cookies[0].MaxAge, 0)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "tok-123", envelope.Data["session_token"])
}

func TestAuthHandlerLoginInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{}, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandlerLoginRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{loginErr: appErrors.Clone(appErrors.ErrUnauthorized, "invalid credentials")}, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"id_number":"x","password":"y"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, envelope.Error["code"])
}

func TestAuthHandlerLogoutClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAuthSrv{}
	handler := NewAuthHandler(srv, CookieConfig{Name: "sessionToken"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	c.Set(middleware.ContextUserKey, &models.SessionUser{UserID: "user-1", SessionID: "sess-1"})
	c.Set(middleware.ContextSessionTokenKey, "tok-123")

	handler.Logout(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "sess-1", srv.loggedOut)
	assert.Equal(t, "tok-123", srv.logoutToken)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAuthHandlerMeRequiresSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{}, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
