package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/jobs"
)

type mockNotificationRepo struct {
	owned         map[string]string
	broadcastRole *models.UserRole
	broadcastMsg  string
	broadcastErr  error
}

func (m *mockNotificationRepo) Broadcast(ctx context.Context, role *models.UserRole, notifType, message string) (int64, error) {
	if m.broadcastErr != nil {
		return 0, m.broadcastErr
	}
	m.broadcastRole = role
	m.broadcastMsg = message
	return 12, nil
}

func (m *mockNotificationRepo) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	return []models.Notification{{ID: "n-1", UserID: filter.UserID}}, 1, nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	return 4, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	if m.owned[id] != userID {
		return sql.ErrNoRows
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return 3, nil
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id, userID string) error {
	return m.MarkRead(ctx, id, userID)
}

func (m *mockNotificationRepo) DeleteAll(ctx context.Context, userID string) (int64, error) {
	return 5, nil
}

func TestNotificationServiceMarkReadOnlyOwn(t *testing.T) {
	repo := &mockNotificationRepo{owned: map[string]string{"n-1": "stu-1"}}
	svc := NewNotificationService(repo, &fakeQueue{}, nil, nil, nil)

	require.NoError(t, svc.MarkRead(context.Background(), "stu-1", "n-1"))
	err := svc.MarkRead(context.Background(), "stu-2", "n-1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestNotificationServiceBulkOperations(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepo{}, &fakeQueue{}, nil, nil, nil)

	marked, err := svc.MarkAllRead(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), marked.Affected)

	deleted, err := svc.DeleteAll(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted.Affected)

	unread, err := svc.UnreadCount(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 4, unread.Unread)
}

func TestNotificationServiceBroadcastQueuesJob(t *testing.T) {
	queue := &fakeQueue{}
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, queue, nil, nil, nil)
	role := models.RoleStudent
	req := dto.BroadcastRequest{Role: &role, Message: "Classes resume Monday."}

	accepted, err := svc.Broadcast(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "job-1", accepted.JobID)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobBroadcastNotification, queue.jobs[0].jobType)

	err = svc.HandleBroadcast(context.Background(), jobs.Job{Type: JobBroadcastNotification, Payload: queue.jobs[0].payload})
	require.NoError(t, err)
	assert.Equal(t, "Classes resume Monday.", repo.broadcastMsg)
	require.NotNil(t, repo.broadcastRole)
	assert.Equal(t, models.RoleStudent, *repo.broadcastRole)
}

func TestNotificationServiceBroadcastValidation(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewNotificationService(&mockNotificationRepo{}, queue, nil, nil, nil)

	_, err := svc.Broadcast(context.Background(), dto.BroadcastRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, queue.jobs)
}

func TestNotificationServiceHandleBroadcastErrors(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepo{broadcastErr: errors.New("db down")}, &fakeQueue{}, nil, nil, nil)

	err := svc.HandleBroadcast(context.Background(), jobs.Job{Payload: dto.BroadcastRequest{Message: "hi"}})
	assert.EqualError(t, err, "db down")

	err = svc.HandleBroadcast(context.Background(), jobs.Job{Payload: "wrong"})
	assert.Error(t, err)
}
