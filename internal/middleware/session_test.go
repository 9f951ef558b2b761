package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type stubAuthenticator struct {
	users map[string]*models.SessionUser
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*models.SessionUser, error) {
	if user, ok := s.users[token]; ok {
		return user, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or invalid")
}

func newGateRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	gate := NewSessionGate(&stubAuthenticator{users: map[string]*models.SessionUser{
		"student-token": {UserID: "stu-1", Role: models.RoleStudent},
		"admin-token":   {UserID: "admin-1", Role: models.RoleAdmin},
		"acct-token":    {UserID: "acct-1", Role: models.RoleAccounting},
	}}, "")
	r := gin.New()
	r.GET("/me", gate.RequireSession(), handler)
	r.GET("/admin", gate.AdminOnly(), handler)
	r.GET("/mine", gate.StudentOrAdmin(), handler)
	r.GET("/ledger", gate.AccountingOrAdmin(), handler)
	return r
}

func echoUser(c *gin.Context) {
	user := CurrentUser(c)
	c.String(http.StatusOK, user.UserID+"|"+CurrentToken(c))
}

func TestSessionMissingTokenIsUnauthorized(t *testing.T) {
	r := newGateRouter(echoUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestSessionExpiredTokenIsUnauthorized(t *testing.T) {
	r := newGateRouter(echoUser)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "expired-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionReadsCookieAndHeaders(t *testing.T) {
	r := newGateRouter(echoUser)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "student-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stu-1|student-token", w.Body.String())

	for _, header := range []string{"sessionToken", "X-Session-Token"} {
		req = httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(header, "admin-token")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, header)
		assert.Equal(t, "admin-1|admin-token", w.Body.String())
	}
}

func TestSessionRoleGates(t *testing.T) {
	r := newGateRouter(echoUser)

	cases := []struct {
		path   string
		token  string
		status int
	}{
		{"/admin", "student-token", http.StatusForbidden},
		{"/admin", "acct-token", http.StatusForbidden},
		{"/admin", "admin-token", http.StatusOK},
		{"/mine", "student-token", http.StatusOK},
		{"/mine", "acct-token", http.StatusForbidden},
		{"/ledger", "acct-token", http.StatusOK},
		{"/ledger", "student-token", http.StatusForbidden},
		{"/ledger", "admin-token", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set("X-Session-Token", tc.token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, "%s with %s", tc.path, tc.token)
	}
}

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{
		UserID: "stu-1",
		Role:   models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, nil
}

func TestLegacyJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/legacy/me", LegacyJWT(stubValidator{}), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).UserID)
	})

	for header, status := range map[string]int{
		"":            http.StatusUnauthorized,
		"Basic abc":   http.StatusUnauthorized,
		"Bearer bad":  http.StatusUnauthorized,
		"Bearer good": http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/legacy/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, status, w.Code, header)
	}
}
