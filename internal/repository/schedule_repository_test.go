package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecountEnrollmentAllSchedules(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("UPDATE schedules SET enrolled_count = \\(SELECT COUNT\\(\\*\\) FROM student_enrollments e WHERE e.schedule_id = schedules.id AND e.status = \\$1\\), updated_at = \\$2$").
		WithArgs("enrolled", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 9))

	n, err := repo.RecountEnrollment(context.Background(), "")
	require.NoError(t, err)
	assert.EqualValues(t, 9, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecountEnrollmentScopedToSemester(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("UPDATE schedules SET enrolled_count = .* WHERE semester_id = \\$3").
		WithArgs("enrolled", sqlmock.AnyArg(), "sem-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.RecountEnrollment(context.Background(), "sem-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
