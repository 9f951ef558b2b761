package service

import (
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/pkg/database"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

// repoError maps a repository failure onto the API error taxonomy.
func repoError(err error, notFound, internal string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case errors.Is(err, database.ErrUniqueViolation):
		return appErrors.As(appErrors.ErrConflict, err, "resource already exists")
	case errors.Is(err, database.ErrForeignKeyViolation):
		return appErrors.Invalid(err, "referenced resource does not exist")
	default:
		return appErrors.Internal(err, internal)
	}
}

func defaults(validate *validator.Validate, logger *zap.Logger) (*validator.Validate, *zap.Logger) {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return validate, logger
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
