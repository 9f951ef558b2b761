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
	"github.com/noah-isme/school-admin-api/pkg/database"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type accountRepoMock struct {
	users       map[string]*models.User
	deactivated []string
}

func newAccountRepoMock(existing ...*models.User) *accountRepoMock {
	m := &accountRepoMock{users: map[string]*models.User{}}
	for _, u := range existing {
		m.users[u.ID] = u
	}
	return m
}

func (m *accountRepoMock) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range m.users {
		if filter.Role == nil || u.Role == *filter.Role {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (m *accountRepoMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *u
	return &copy, nil
}

func (m *accountRepoMock) Create(ctx context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.IDNumber == user.IDNumber {
			return fmt.Errorf("insert user: %w", database.ErrUniqueViolation)
		}
	}
	user.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *accountRepoMock) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *accountRepoMock) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *accountRepoMock) Deactivate(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	m.deactivated = append(m.deactivated, id)
	return nil
}

func TestAccountServiceCreateHashesPassword(t *testing.T) {
	repo := newAccountRepoMock()
	svc := NewAccountService(repo, nil, nil, nil)

	email := "Staff@School.Edu"
	user, err := svc.Create(context.Background(), dto.CreateAccountRequest{
		IDNumber:  " acct-02 ",
		Password:  "password123",
		Role:      models.RoleAccounting,
		FirstName: "Lia",
		LastName:  "Santos",
		Email:     &email,
	})
	require.NoError(t, err)
	assert.Equal(t, "acct-02", user.IDNumber)
	assert.True(t, user.Active)
	require.NotNil(t, user.Email)
	assert.Equal(t, "staff@school.edu", *user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
}

func TestAccountServiceCreateDuplicate(t *testing.T) {
	repo := newAccountRepoMock(&models.User{ID: "u-1", IDNumber: "admin", Role: models.RoleAdmin})
	svc := NewAccountService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateAccountRequest{
		IDNumber: "admin", Password: "password123", Role: models.RoleAdmin, FirstName: "A", LastName: "B",
	})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestAccountServiceCreateValidation(t *testing.T) {
	svc := NewAccountService(newAccountRepoMock(), nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateAccountRequest{IDNumber: "x", Password: "short", Role: "registrar"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAccountServiceDeactivateSelf(t *testing.T) {
	repo := newAccountRepoMock(&models.User{ID: "admin-1", Role: models.RoleAdmin})
	svc := NewAccountService(repo, nil, nil, nil)

	err := svc.Deactivate(context.Background(), "admin-1", "admin-1")
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)
	assert.Empty(t, repo.deactivated)

	err = svc.Deactivate(context.Background(), "missing", "admin-1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAccountServiceSeedDummyAccountsSkipsExisting(t *testing.T) {
	repo := newAccountRepoMock(&models.User{ID: "u-1", IDNumber: "admin", Role: models.RoleAdmin})
	svc := NewAccountService(repo, nil, nil, nil)

	created, err := svc.SeedDummyAccounts(context.Background(), "password123")
	require.NoError(t, err)
	assert.Equal(t, len(DummyAccounts)-1, created)
	assert.Len(t, repo.users, len(DummyAccounts))

	created, err = svc.SeedDummyAccounts(context.Background(), "password123")
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestAccountServiceEvictsCachedIdentity(t *testing.T) {
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	repo := newAccountRepoMock(&models.User{ID: "stu-1", IDNumber: "2026-00001", Role: models.RoleStudent, Active: true})
	svc := NewAccountService(repo, cache, nil, nil)
	ctx := context.Background()
	key := sessionUserCachePrefix + "stu-1"

	require.NoError(t, store.Set(ctx, key, cachedSessionUser{Role: models.RoleStudent}, time.Minute))
	email := "ana@school.edu"
	_, err := svc.Update(ctx, "stu-1", dto.UpdateAccountRequest{Email: &email})
	require.NoError(t, err)
	assert.True(t, store.has(key))

	role := models.RoleAccounting
	_, err = svc.Update(ctx, "stu-1", dto.UpdateAccountRequest{Role: &role})
	require.NoError(t, err)
	assert.False(t, store.has(key))

	require.NoError(t, store.Set(ctx, key, cachedSessionUser{Role: models.RoleAccounting}, time.Minute))
	require.NoError(t, svc.Deactivate(ctx, "stu-1", "admin-1"))
	assert.False(t, store.has(key))
}
