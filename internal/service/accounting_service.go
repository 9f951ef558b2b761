package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type accountingRepository interface {
	CreateAssessment(ctx context.Context, a *models.Assessment) error
	ListAssessments(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, int, error)
	Ledger(ctx context.Context, studentID string) ([]models.LedgerLine, error)
	Summary(ctx context.Context, semesterID string) (*models.AccountingSummary, error)
}

// AccountingService bills students and reports balances.
type AccountingService struct {
	repo      accountingRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccountingService constructs an AccountingService.
func NewAccountingService(repo accountingRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AccountingService {
	validate, logger = defaults(validate, logger)
	return &AccountingService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// CreateAssessment bills a student for a semester. One assessment per
// student and semester.
func (s *AccountingService) CreateAssessment(ctx context.Context, actorID string, req dto.CreateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid assessment payload")
	}
	assessment := &models.Assessment{
		StudentID:    req.StudentID,
		SemesterID:   req.SemesterID,
		TuitionCents: req.TuitionCents,
		MiscCents:    req.MiscCents,
		LabCents:     req.LabCents,
		TotalCents:   req.TuitionCents + req.MiscCents + req.LabCents,
		CreatedBy:    &actorID,
	}
	if err := s.repo.CreateAssessment(ctx, assessment); err != nil {
		return nil, repoError(err, "assessment not found", "failed to create assessment")
	}
	_ = s.cache.Invalidate(ctx, dashboardCachePrefix+"*")
	return assessment, nil
}

// ListAssessments pages assessments.
func (s *AccountingService) ListAssessments(ctx context.Context, query dto.AssessmentQuery) ([]models.Assessment, *models.Pagination, error) {
	items, total, err := s.repo.ListAssessments(ctx, models.AssessmentFilter{
		StudentID:  query.StudentID,
		SemesterID: query.SemesterID,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list assessments")
	}
	return items, models.NewPagination(query.Page, query.PageSize, total), nil
}

// Ledger returns a student's statement. Students may only read their own.
func (s *AccountingService) Ledger(ctx context.Context, caller *models.SessionUser, studentID string) (*dto.Ledger, error) {
	if studentID == "" {
		studentID = caller.UserID
	}
	if !caller.CanAccessStudent(studentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot view another student's ledger")
	}
	lines, err := s.repo.Ledger(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load ledger")
	}
	if lines == nil {
		lines = []models.LedgerLine{}
	}
	ledger := &dto.Ledger{StudentID: studentID, Lines: lines}
	for _, line := range lines {
		ledger.AssessedCents += line.AssessedCents
		ledger.PaidCents += line.PaidCents
	}
	ledger.BalanceCents = ledger.AssessedCents - ledger.PaidCents
	return ledger, nil
}

// Summary aggregates collections, optionally for one semester.
func (s *AccountingService) Summary(ctx context.Context, semesterID string) (*models.AccountingSummary, error) {
	summary, err := s.repo.Summary(ctx, semesterID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to summarise accounts")
	}
	return summary, nil
}
