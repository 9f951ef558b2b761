package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/models"
)

type fakeNotificationSrv struct {
	userID    string
	query     dto.NotificationQuery
	broadcast dto.BroadcastRequest
}

func (f *fakeNotificationSrv) List(_ context.Context, userID string, query dto.NotificationQuery) ([]models.Notification, *models.Pagination, error) {
	f.userID = userID
	f.query = query
	return []models.Notification{{ID: "n-1", UserID: userID}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (f *fakeNotificationSrv) UnreadCount(_ context.Context, userID string) (*dto.UnreadCount, error) {
	f.userID = userID
	return &dto.UnreadCount{Unread: 3}, nil
}

func (f *fakeNotificationSrv) MarkRead(_ context.Context, userID, _ string) error {
	f.userID = userID
	return nil
}

func (f *fakeNotificationSrv) MarkAllRead(_ context.Context, userID string) (*dto.AffectedRows, error) {
	f.userID = userID
	return &dto.AffectedRows{Affected: 4}, nil
}

func (f *fakeNotificationSrv) Delete(context.Context, string, string) error { return nil }

func (f *fakeNotificationSrv) DeleteAll(context.Context, string) (*dto.AffectedRows, error) {
	return &dto.AffectedRows{}, nil
}

func (f *fakeNotificationSrv) Broadcast(_ context.Context, req dto.BroadcastRequest) (*dto.JobAccepted, error) {
	f.broadcast = req
	return &dto.JobAccepted{JobID: "job-1", Type: "notifications.broadcast"}, nil
}

func notificationContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.SessionUser{UserID: "stu-1", Role: models.RoleStudent})
	return c, rec
}

func TestNotificationHandlerListBindsFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeNotificationSrv{}
	handler := NewNotificationHandler(srv)

	c, rec := notificationContext(http.MethodGet, "/notifications?is_read=false&page=2", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stu-1", srv.userID)
	require.NotNil(t, srv.query.IsRead)
	assert.False(t, *srv.query.IsRead)
	assert.Equal(t, 2, srv.query.Page)
	assert.Contains(t, rec.Body.String(), `"pagination"`)
}

func TestNotificationHandlerMarkAllReadUsesCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeNotificationSrv{}
	handler := NewNotificationHandler(srv)

	c, rec := notificationContext(http.MethodPut, "/notifications/read-all", "")
	handler.MarkAllRead(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stu-1", srv.userID)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(4), envelope.Data["affected"])
}

func TestNotificationHandlerBroadcastAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeNotificationSrv{}
	handler := NewNotificationHandler(srv)

	c, rec := notificationContext(http.MethodPost, "/notifications/broadcast", `{"role":"student","message":"Enrollment opens Monday"}`)
	handler.Broadcast(c)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.NotNil(t, srv.broadcast.Role)
	assert.Equal(t, models.RoleStudent, *srv.broadcast.Role)
	assert.Equal(t, "Enrollment opens Monday", srv.broadcast.Message)
}

func TestNotificationHandlerRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewNotificationHandler(&fakeNotificationSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil)
	handler.UnreadCount(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
