package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/storage"
)

type requirementRepository interface {
	Create(ctx context.Context, req *models.Requirement) error
	FindByID(ctx context.Context, id string) (*models.Requirement, error)
	List(ctx context.Context, filter models.RequirementFilter) ([]models.Requirement, error)
	AttachFile(ctx context.Context, id, path string) error
	Verify(ctx context.Context, req *models.Requirement, notification *models.Notification) error
	Delete(ctx context.Context, id string) error
}

// RequirementService tracks the documents students must submit.
type RequirementService struct {
	repo      requirementRepository
	files     fileStore
	allowed   []string
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequirementService constructs a RequirementService.
func NewRequirementService(repo requirementRepository, files fileStore, allowed []string, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RequirementService {
	validate, logger = defaults(validate, logger)
	return &RequirementService{repo: repo, files: files, allowed: allowed, metrics: metrics, validator: validate, logger: logger}
}

// List returns requirements. Students only see their own.
func (s *RequirementService) List(ctx context.Context, caller *models.SessionUser, query dto.RequirementQuery) ([]models.Requirement, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Invalid(err, "invalid requirement filter")
	}
	filter := models.RequirementFilter{StudentID: query.StudentID}
	if caller.Role == models.RoleStudent {
		filter.StudentID = caller.UserID
	}
	if query.Status != "" {
		status := models.RequirementStatus(query.Status)
		filter.Status = &status
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list requirements")
	}
	return items, nil
}

// Create adds a checklist item for a student.
func (s *RequirementService) Create(ctx context.Context, req dto.CreateRequirementRequest) (*models.Requirement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid requirement payload")
	}
	item := &models.Requirement{StudentID: req.StudentID, Name: req.Name, Status: models.RequirementPending}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, repoError(err, "requirement not found", "failed to create requirement")
	}
	return item, nil
}

// Upload attaches a file and marks the requirement submitted.
func (s *RequirementService) Upload(ctx context.Context, caller *models.SessionUser, id string, fh *multipart.FileHeader) (*models.Requirement, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "requirement not found", "failed to load requirement")
	}
	if !caller.CanAccessStudent(item.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "requirement not found")
	}
	if item.Status == models.RequirementVerified {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "requirement is already verified")
	}

	stored, err := storeUpload(s.files, s.metrics, storage.CategoryRequirements, fh, s.allowed)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AttachFile(ctx, id, stored.Path); err != nil {
		_ = s.files.Delete(stored.Path)
		return nil, repoError(err, "requirement not found", "failed to attach file")
	}
	if item.FilePath != nil {
		if err := s.files.Delete(*item.FilePath); err != nil {
			s.logger.Warn("failed to remove replaced requirement file", zap.String("path", *item.FilePath), zap.Error(err))
		}
	}

	item.FilePath = &stored.Path
	item.Status = models.RequirementSubmitted
	item.VerifiedBy = nil
	item.VerifiedAt = nil
	return item, nil
}

// Verify records the review outcome and notifies the student.
func (s *RequirementService) Verify(ctx context.Context, id, verifierID string, req dto.VerifyRequirementRequest) (*models.Requirement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid verification payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "requirement not found", "failed to load requirement")
	}
	if item.FilePath == nil && req.Status == models.RequirementVerified {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "requirement has no submitted file")
	}

	now := time.Now().UTC()
	item.Status = req.Status
	item.Remarks = req.Remarks
	item.VerifiedBy = &verifierID
	item.VerifiedAt = &now

	message := fmt.Sprintf("Your requirement %q was %s.", item.Name, req.Status)
	if req.Remarks != nil && *req.Remarks != "" {
		message += " Remarks: " + *req.Remarks
	}
	notification := &models.Notification{UserID: item.StudentID, Type: models.NotificationRequirementUpdate, Message: message}
	if err := s.repo.Verify(ctx, item, notification); err != nil {
		return nil, repoError(err, "requirement not found", "failed to verify requirement")
	}
	return item, nil
}

// Delete removes a requirement and its file.
func (s *RequirementService) Delete(ctx context.Context, id string) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return repoError(err, "requirement not found", "failed to load requirement")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "requirement not found", "failed to delete requirement")
	}
	if item.FilePath != nil {
		if err := s.files.Delete(*item.FilePath); err != nil {
			s.logger.Warn("failed to remove requirement file", zap.String("path", *item.FilePath), zap.Error(err))
		}
	}
	return nil
}
