package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
)

type mockDashboardRepo struct {
	semesters []string
	studentID string
}

func (m *mockDashboardRepo) AdminCounts(ctx context.Context, semesterID string) (*dto.AdminDashboard, error) {
	m.semesters = append(m.semesters, semesterID)
	return &dto.AdminDashboard{SemesterID: semesterID, TotalStudents: 42}, nil
}

func (m *mockDashboardRepo) StudentCounts(ctx context.Context, studentID, semesterID string) (*dto.StudentDashboard, error) {
	m.studentID = studentID
	m.semesters = append(m.semesters, semesterID)
	return &dto.StudentDashboard{SemesterID: semesterID, EnrolledSubjects: 6}, nil
}

func (m *mockDashboardRepo) AccountingCounts(ctx context.Context, semesterID string) (*dto.AccountingDashboard, error) {
	m.semesters = append(m.semesters, semesterID)
	return &dto.AccountingDashboard{SemesterID: semesterID, AssessedCents: 1000, CollectedCents: 400, OutstandingCents: 600}, nil
}

func TestDashboardServiceDefaultsToActiveSemester(t *testing.T) {
	repo := &mockDashboardRepo{}
	svc := NewDashboardService(repo, fakeSettings{models.SettingActiveSemesterID: "sem-active"}, nil, nil, 0, nil)

	admin, cached, err := svc.Admin(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 42, admin.TotalStudents)
	assert.Equal(t, "sem-active", admin.SemesterID)

	_, _, err = svc.Accounting(context.Background(), "sem-old")
	require.NoError(t, err)
	assert.Equal(t, []string{"sem-active", "sem-old"}, repo.semesters)
}

func TestDashboardServiceStudentScopesToCaller(t *testing.T) {
	repo := &mockDashboardRepo{}
	svc := NewDashboardService(repo, fakeSettings{}, nil, nil, 0, nil)

	summary, _, err := svc.Student(context.Background(), studentCaller("stu-1"), "sem-1")
	require.NoError(t, err)
	assert.Equal(t, 6, summary.EnrolledSubjects)
	assert.Equal(t, "stu-1", repo.studentID)
}
