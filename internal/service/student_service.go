package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentProfile, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentProfile, error)
}

// StudentService exposes student profiles.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	validate, logger = defaults(validate, logger)
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students matching the query.
func (s *StudentService) List(ctx context.Context, query dto.StudentQuery) ([]models.StudentProfile, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, models.StudentFilter{
		Program:   query.Program,
		YearLevel: query.YearLevel,
		Active:    query.Active,
		Search:    query.Search,
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	return students, models.NewPagination(query.Page, query.PageSize, total), nil
}

// Get returns a student profile. Students may only read their own.
func (s *StudentService) Get(ctx context.Context, caller *models.SessionUser, id string) (*models.StudentProfile, error) {
	if !caller.CanAccessStudent(id) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own profile")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "student not found", "failed to load student")
	}
	return student, nil
}
