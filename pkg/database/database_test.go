package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/pkg/config"
)

func TestDriverName(t *testing.T) {
	assert.Equal(t, "pgx", DriverName(config.DialectPGX))
	assert.Equal(t, "postgres", DriverName(config.DialectPostgres))
	assert.Equal(t, "postgres", DriverName(""))
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "school_admin", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=school_admin sslmode=disable", dsn)
}

func TestClassifyDriverErrors(t *testing.T) {
	pqDup := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	pgxDup := &pgconn.PgError{Code: "23505"}
	pgxFK := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolation(pqDup))
	assert.True(t, IsUniqueViolation(pgxDup))
	assert.False(t, IsUniqueViolation(errors.New("other")))
	assert.True(t, IsForeignKeyViolation(pgxFK))

	assert.ErrorIs(t, Classify(pqDup), ErrUniqueViolation)
	assert.ErrorIs(t, Classify(pgxFK), ErrForeignKeyViolation)
	other := errors.New("other")
	assert.Equal(t, other, Classify(other))
}

func TestSchemaCoversTables(t *testing.T) {
	for _, table := range []string{
		"users", "user_sessions", "student_registrations", "document_requests", "notifications",
		"subjects", "curriculums", "semesters", "schedules", "student_enrollments",
		"student_requirements", "assessments", "payments", "activity_logs", "settings",
	} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
	assert.False(t, strings.Contains(Schema(), "DROP TABLE"))
}

func TestMigrateExecutesSchema(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	mock.ExpectExec(Schema()).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
