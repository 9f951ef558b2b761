package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type semesterRepository interface {
	List(ctx context.Context) ([]models.Semester, error)
	FindByID(ctx context.Context, id string) (*models.Semester, error)
	FindActive(ctx context.Context) (*models.Semester, error)
	Create(ctx context.Context, sem *models.Semester) error
	Update(ctx context.Context, sem *models.Semester) error
	Delete(ctx context.Context, id string) error
	Activate(ctx context.Context, id, actorID string) error
}

// SemesterService manages academic periods.
type SemesterService struct {
	repo      semesterRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService constructs a SemesterService.
func NewSemesterService(repo semesterRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	validate, logger = defaults(validate, logger)
	return &SemesterService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every semester.
func (s *SemesterService) List(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list semesters")
	}
	return semesters, nil
}

// Active returns the active semester.
func (s *SemesterService) Active(ctx context.Context) (*models.Semester, error) {
	sem, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, repoError(err, "no active semester", "failed to load active semester")
	}
	return sem, nil
}

// Create adds a semester.
func (s *SemesterService) Create(ctx context.Context, req dto.SemesterRequest) (*models.Semester, error) {
	sem := &models.Semester{}
	if err := s.apply(sem, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sem); err != nil {
		return nil, repoError(err, "semester not found", "failed to create semester")
	}
	return sem, nil
}

// Update replaces a semester's fields.
func (s *SemesterService) Update(ctx context.Context, id string, req dto.SemesterRequest) (*models.Semester, error) {
	sem, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "semester not found", "failed to load semester")
	}
	if err := s.apply(sem, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, sem); err != nil {
		return nil, repoError(err, "semester not found", "failed to update semester")
	}
	return sem, nil
}

// Delete removes a semester.
func (s *SemesterService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "semester not found", "failed to delete semester")
	}
	return nil
}

// Activate makes id the active semester.
func (s *SemesterService) Activate(ctx context.Context, id, actorID string) (*models.Semester, error) {
	if err := s.repo.Activate(ctx, id, actorID); err != nil {
		return nil, repoError(err, "semester not found", "failed to activate semester")
	}
	_ = s.cache.Invalidate(ctx, dashboardCachePrefix+"*")
	sem, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "semester not found", "failed to load semester")
	}
	s.logger.Info("semester activated", zap.String("id", id), zap.String("actor", actorID))
	return sem, nil
}

func (s *SemesterService) apply(sem *models.Semester, req dto.SemesterRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Invalid(err, "invalid semester payload")
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return appErrors.Invalid(err, "invalid start date")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return appErrors.Invalid(err, "invalid end date")
	}
	if !end.After(start) {
		return appErrors.Clone(appErrors.ErrValidation, "end date must be after start date")
	}
	sem.Name = req.Name
	sem.SchoolYear = req.SchoolYear
	sem.Term = req.Term
	sem.StartDate = start
	sem.EndDate = end
	return nil
}
