package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCreateRegistrationPersistsAllFields(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	birth := time.Date(2006, 3, 14, 0, 0, 0, 0, time.UTC)
	reg := &models.StudentRegistration{
		FirstName:            "Maria",
		MiddleName:           strPtr("Lopez"),
		LastName:             "Santos",
		Suffix:               strPtr("Jr."),
		BirthDate:            birth,
		BirthPlace:           strPtr("Cebu City"),
		Gender:               "female",
		CivilStatus:          strPtr("single"),
		Nationality:          strPtr("Filipino"),
		Religion:             strPtr("Catholic"),
		Email:                "maria@example.com",
		ContactNumber:        "09171234567",
		Address:              "12 Mango St",
		GuardianName:         strPtr("Jose Santos"),
		GuardianContact:      strPtr("09170000000"),
		GuardianRelationship: strPtr("father"),
		LastSchoolAttended:   strPtr("Cebu National HS"),
		Program:              "BSIT",
		YearLevel:            1,
		StudentType:          models.StudentTypeNew,
		SemesterID:           strPtr("sem-1"),
	}

	mock.ExpectExec("INSERT INTO student_registrations").
		WithArgs(
			sqlmock.AnyArg(), nil,
			"Maria", "Lopez", "Santos", "Jr.", birth, "Cebu City", "female", "single", "Filipino", "Catholic",
			"maria@example.com", "09171234567", "12 Mango St", "Jose Santos", "09170000000", "father", "Cebu National HS",
			"BSIT", 1, "new", "sem-1", "pending", nil, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), reg))
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, models.RegistrationPending, reg.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRegistration(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE student_registrations SET user_id").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO student_requirements").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_requirements").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	student := &models.User{IDNumber: "2024-00001", Role: models.RoleStudent, FirstName: "Maria", LastName: "Santos", Active: true}
	notification := &models.Notification{Type: models.NotificationRegistrationUpdate, Message: "approved"}
	err := repo.Approve(context.Background(), "reg-1", student, []string{"Form 138", "PSA Birth Certificate"}, notification)
	require.NoError(t, err)
	assert.Equal(t, student.ID, notification.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRegistrationNotPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE student_registrations SET user_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), "reg-1", &models.User{IDNumber: "2024-00002"}, nil, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
