package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/handler"
	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type tokenTable map[string]*models.SessionUser

func (t tokenTable) Authenticate(_ context.Context, token string) (*models.SessionUser, error) {
	user, ok := t[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or invalid")
	}
	return user, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	gate := middleware.NewSessionGate(tokenTable{
		"student-token": {UserID: "stu-1", Role: models.RoleStudent},
	}, "")
	return New(Options{Sessions: gate}, Handlers{Ops: handler.NewOpsHandler(nil, nil)})
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouterUnknownRouteEnvelope(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var body struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrNotFound.Code, body.Error.Code)
}

func TestRouterGates(t *testing.T) {
	r := newTestRouter()
	cases := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"missing token", http.MethodGet, "/api/v1/auth/me", "", http.StatusUnauthorized},
		{"unknown token", http.MethodGet, "/api/v1/notifications", "stale", http.StatusUnauthorized},
		{"student on admin route", http.MethodGet, "/api/v1/accounts", "student-token", http.StatusForbidden},
		{"student on accounting route", http.MethodGet, "/api/v1/payments/export", "student-token", http.StatusForbidden},
		{"student on admin dashboard", http.MethodGet, "/api/v1/dashboard/admin", "student-token", http.StatusForbidden},
		{"student purging sessions", http.MethodDelete, "/api/v1/sessions/expired", "student-token", http.StatusForbidden},
		{"legacy without bearer", http.MethodGet, "/api/v1/legacy/me", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("X-Session-Token", tc.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
