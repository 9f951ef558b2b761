package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type sessionRepoMock struct {
	sessions map[string]models.UserSession
	deleted  []string
	purgedAt time.Time
}

func (m *sessionRepoMock) FindByID(ctx context.Context, id string) (*models.UserSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m *sessionRepoMock) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]models.UserSession, error) {
	var out []models.UserSession
	for _, s := range m.sessions {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *sessionRepoMock) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *sessionRepoMock) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.purgedAt = now
	return 2, nil
}

func newSessionFixture() (*SessionService, *sessionRepoMock, time.Time) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	repo := &sessionRepoMock{sessions: map[string]models.UserSession{
		"s-1": {ID: "s-1", UserID: "stu-1", Token: "tok-1", ExpiresAt: now.Add(time.Hour)},
		"s-2": {ID: "s-2", UserID: "stu-1", Token: "tok-2", ExpiresAt: now.Add(-time.Hour)},
		"s-3": {ID: "s-3", UserID: "stu-2", Token: "tok-3", ExpiresAt: now.Add(time.Hour)},
	}}
	svc := NewSessionService(repo, nil, nil)
	svc.now = func() time.Time { return now }
	return svc, repo, now
}

func TestSessionServiceListOnlyActive(t *testing.T) {
	svc, _, _ := newSessionFixture()

	sessions, err := svc.List(context.Background(), studentCaller("stu-1"))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s-1", sessions[0].ID)
}

func TestSessionServiceRevokeOwnership(t *testing.T) {
	svc, repo, _ := newSessionFixture()

	err := svc.Revoke(context.Background(), studentCaller("stu-1"), "s-3")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Revoke(context.Background(), studentCaller("stu-1"), "s-1"))
	require.NoError(t, svc.Revoke(context.Background(), adminCaller(), "s-3"))
	assert.Equal(t, []string{"s-1", "s-3"}, repo.deleted)

	err = svc.Revoke(context.Background(), adminCaller(), "nope")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSessionServicePurgeExpired(t *testing.T) {
	svc, repo, now := newSessionFixture()

	n, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, now, repo.purgedAt)
}
