package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/pkg/database"
)

func TestCreateEnrollmentIncrementsCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO student_enrollments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE schedules SET enrolled_count = GREATEST\\(enrolled_count \\+ \\$2, 0\\)").
		WithArgs("sched-1", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e := &models.StudentEnrollment{StudentID: "s1", ScheduleID: "sched-1"}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, models.EnrollmentEnrolled, e.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEnrollmentDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO student_enrollments").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.StudentEnrollment{StudentID: "s1", ScheduleID: "sched-1"})
	assert.ErrorIs(t, err, database.ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEnrolledDecrementsCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM student_enrollments WHERE id = \\$1 RETURNING schedule_id, status").
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"schedule_id", "status"}).AddRow("sched-1", "enrolled"))
	mock.ExpectExec("UPDATE schedules SET enrolled_count").
		WithArgs("sched-1", -1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "e1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDroppedLeavesCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM student_enrollments").
		WillReturnRows(sqlmock.NewRows([]string{"schedule_id", "status"}).AddRow("sched-1", "dropped"))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "e2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecountEnrollment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("UPDATE schedules SET enrolled_count = \\(SELECT COUNT").WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.RecountEnrollment(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
