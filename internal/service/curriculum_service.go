package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type curriculumRepository interface {
	ListSubjects(ctx context.Context, search string) ([]models.Subject, error)
	FindSubject(ctx context.Context, id string) (*models.Subject, error)
	CreateSubject(ctx context.Context, subject *models.Subject) error
	UpdateSubject(ctx context.Context, subject *models.Subject) error
	DeleteSubject(ctx context.Context, id string) error
	List(ctx context.Context, filter models.CurriculumFilter) ([]models.CurriculumEntry, error)
	Create(ctx context.Context, c *models.Curriculum) error
	Delete(ctx context.Context, id string) error
}

// CurriculumService manages the subject catalogue and program curricula.
type CurriculumService struct {
	repo      curriculumRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCurriculumService constructs a CurriculumService.
func NewCurriculumService(repo curriculumRepository, validate *validator.Validate, logger *zap.Logger) *CurriculumService {
	validate, logger = defaults(validate, logger)
	return &CurriculumService{repo: repo, validator: validate, logger: logger}
}

// ListSubjects returns catalogue subjects matching search.
func (s *CurriculumService) ListSubjects(ctx context.Context, search string) ([]models.Subject, error) {
	subjects, err := s.repo.ListSubjects(ctx, search)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list subjects")
	}
	return subjects, nil
}

// CreateSubject adds a subject to the catalogue.
func (s *CurriculumService) CreateSubject(ctx context.Context, req dto.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid subject payload")
	}
	subject := &models.Subject{}
	applySubject(subject, req)
	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		return nil, repoError(err, "subject not found", "failed to create subject")
	}
	return subject, nil
}

// UpdateSubject replaces a subject's fields.
func (s *CurriculumService) UpdateSubject(ctx context.Context, id string, req dto.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid subject payload")
	}
	subject, err := s.repo.FindSubject(ctx, id)
	if err != nil {
		return nil, repoError(err, "subject not found", "failed to load subject")
	}
	applySubject(subject, req)
	if err := s.repo.UpdateSubject(ctx, subject); err != nil {
		return nil, repoError(err, "subject not found", "failed to update subject")
	}
	return subject, nil
}

// DeleteSubject removes a subject. Referenced subjects yield a validation error.
func (s *CurriculumService) DeleteSubject(ctx context.Context, id string) error {
	if err := s.repo.DeleteSubject(ctx, id); err != nil {
		return repoError(err, "subject not found", "failed to delete subject")
	}
	return nil
}

// List returns curriculum entries matching the query.
func (s *CurriculumService) List(ctx context.Context, query dto.CurriculumQuery) ([]models.CurriculumEntry, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Invalid(err, "invalid curriculum filter")
	}
	filter := models.CurriculumFilter{Program: query.Program, YearLevel: query.YearLevel}
	if query.Term != "" {
		term := models.Term(query.Term)
		filter.Term = &term
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list curriculum")
	}
	return entries, nil
}

// Create places a subject in a program term.
func (s *CurriculumService) Create(ctx context.Context, req dto.CurriculumRequest) (*models.Curriculum, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid curriculum payload")
	}
	entry := &models.Curriculum{
		Program:   req.Program,
		YearLevel: req.YearLevel,
		Term:      req.Term,
		SubjectID: req.SubjectID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, repoError(err, "curriculum not found", "failed to create curriculum entry")
	}
	return entry, nil
}

// Delete removes a curriculum entry.
func (s *CurriculumService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "curriculum entry not found", "failed to delete curriculum entry")
	}
	return nil
}

func applySubject(subject *models.Subject, req dto.SubjectRequest) {
	subject.Code = req.Code
	subject.Title = req.Title
	subject.Units = req.Units
	subject.LectureHours = req.LectureHours
	subject.LabHours = req.LabHours
	subject.Prerequisite = req.Prerequisite
}
