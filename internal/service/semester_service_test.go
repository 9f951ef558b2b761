package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type semesterRepoMock struct {
	semesters map[string]*models.Semester
	activated string
}

func (m *semesterRepoMock) List(ctx context.Context) ([]models.Semester, error) {
	out := make([]models.Semester, 0, len(m.semesters))
	for _, s := range m.semesters {
		out = append(out, *s)
	}
	return out, nil
}

func (m *semesterRepoMock) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	s, ok := m.semesters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *semesterRepoMock) FindActive(ctx context.Context) (*models.Semester, error) {
	for _, s := range m.semesters {
		if s.IsActive {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *semesterRepoMock) Create(ctx context.Context, sem *models.Semester) error {
	sem.ID = "sem-new"
	m.semesters[sem.ID] = sem
	return nil
}

func (m *semesterRepoMock) Update(ctx context.Context, sem *models.Semester) error {
	m.semesters[sem.ID] = sem
	return nil
}

func (m *semesterRepoMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.semesters[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.semesters, id)
	return nil
}

func (m *semesterRepoMock) Activate(ctx context.Context, id, actorID string) error {
	if _, ok := m.semesters[id]; !ok {
		return sql.ErrNoRows
	}
	for key, s := range m.semesters {
		s.IsActive = key == id
	}
	m.activated = id
	return nil
}

func TestSemesterServiceCreateValidatesDates(t *testing.T) {
	repo := &semesterRepoMock{semesters: map[string]*models.Semester{}}
	svc := NewSemesterService(repo, nil, nil, nil)

	req := dto.SemesterRequest{Name: "1st Sem", SchoolYear: "2026-2027", Term: models.TermFirst, StartDate: "2026-08-10", EndDate: "2026-08-01"}
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req.EndDate = "2026-12-18"
	sem, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "sem-new", sem.ID)
	assert.Equal(t, 2026, sem.StartDate.Year())
	assert.False(t, sem.IsActive)
}

func TestSemesterServiceActivate(t *testing.T) {
	repo := &semesterRepoMock{semesters: map[string]*models.Semester{
		"sem-1": {ID: "sem-1", IsActive: true},
		"sem-2": {ID: "sem-2"},
	}}
	svc := NewSemesterService(repo, nil, nil, nil)

	sem, err := svc.Activate(context.Background(), "sem-2", "admin-1")
	require.NoError(t, err)
	assert.True(t, sem.IsActive)
	assert.False(t, repo.semesters["sem-1"].IsActive)

	active, err := svc.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sem-2", active.ID)

	_, err = svc.Activate(context.Background(), "missing", "admin-1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSemesterServiceActiveMissing(t *testing.T) {
	svc := NewSemesterService(&semesterRepoMock{semesters: map[string]*models.Semester{}}, nil, nil, nil)

	_, err := svc.Active(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
