package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var (
	// ErrUniqueViolation reports a duplicate key from either driver.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrForeignKeyViolation reports a dangling reference from either driver.
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	return err != nil && (errors.Is(err, ErrUniqueViolation) || sqlState(err) == codeUniqueViolation)
}

// IsForeignKeyViolation reports whether err carries SQLSTATE 23503.
func IsForeignKeyViolation(err error) bool {
	return err != nil && (errors.Is(err, ErrForeignKeyViolation) || sqlState(err) == codeForeignKeyViolation)
}

// Classify replaces driver constraint errors with the package sentinels and
// returns anything else untouched.
func Classify(err error) error {
	switch sqlState(err) {
	case codeUniqueViolation:
		return ErrUniqueViolation
	case codeForeignKeyViolation:
		return ErrForeignKeyViolation
	default:
		return err
	}
}
