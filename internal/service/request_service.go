package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/storage"
)

type requestRepository interface {
	Create(ctx context.Context, req *models.DocumentRequest) error
	FindByID(ctx context.Context, id string) (*models.DocumentRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.DocumentRequest, int, error)
	UpdateStatus(ctx context.Context, id string, status models.RequestStatus, remarks *string, notification *models.Notification) error
	Delete(ctx context.Context, id string) error
}

// RequestService handles document requests and their attachments.
type RequestService struct {
	repo      requestRepository
	files     fileStore
	links     *FileService
	allowed   []string
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs a RequestService. allowed is the MIME
// allow-list for attachments.
func NewRequestService(repo requestRepository, files fileStore, links *FileService, allowed []string, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RequestService {
	validate, logger = defaults(validate, logger)
	return &RequestService{repo: repo, files: files, links: links, allowed: allowed, metrics: metrics, validator: validate, logger: logger}
}

// Create stores the attachments and inserts the request. Students always
// file for themselves.
func (s *RequestService) Create(ctx context.Context, caller *models.SessionUser, req dto.CreateDocumentRequest, attachments []*multipart.FileHeader) (*models.DocumentRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid request payload")
	}
	studentID := req.StudentID
	if caller.Role == models.RoleStudent || studentID == "" {
		studentID = caller.UserID
	}

	stored := make([]string, 0, len(attachments))
	cleanup := func() {
		for _, path := range stored {
			if err := s.files.Delete(path); err != nil {
				s.logger.Warn("failed to remove orphaned upload", zap.String("path", path), zap.Error(err))
			}
		}
	}
	for _, fh := range attachments {
		file, err := storeUpload(s.files, s.metrics, storage.CategoryRequests, fh, s.allowed)
		if err != nil {
			cleanup()
			return nil, err
		}
		stored = append(stored, file.Path)
	}

	request := &models.DocumentRequest{
		StudentID:    studentID,
		DocumentType: req.DocumentType,
		Purpose:      req.Purpose,
		Status:       models.RequestPending,
		Documents:    stored,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		cleanup()
		return nil, repoError(err, "request not found", "failed to create request")
	}
	return request, nil
}

// List returns requests. Students only see their own.
func (s *RequestService) List(ctx context.Context, caller *models.SessionUser, query dto.RequestQuery) ([]models.DocumentRequest, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Invalid(err, "invalid request filter")
	}
	filter := models.RequestFilter{
		StudentID:    query.StudentID,
		DocumentType: query.DocumentType,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}
	if caller.Role == models.RoleStudent {
		filter.StudentID = caller.UserID
	}
	if query.Status != "" {
		status := models.RequestStatus(query.Status)
		filter.Status = &status
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list requests")
	}
	return items, models.NewPagination(query.Page, query.PageSize, total), nil
}

// Get returns a request visible to the caller.
func (s *RequestService) Get(ctx context.Context, caller *models.SessionUser, id string) (*models.DocumentRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "request not found", "failed to load request")
	}
	if !caller.CanAccessStudent(request.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	return request, nil
}

// UpdateStatus changes the status and notifies the requesting student.
func (s *RequestService) UpdateStatus(ctx context.Context, id string, req dto.UpdateRequestStatusRequest) (*models.DocumentRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid status payload")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "request not found", "failed to load request")
	}

	message := fmt.Sprintf("Your %s request is now %s.", request.DocumentType, req.Status)
	if req.Remarks != nil && *req.Remarks != "" {
		message += " Remarks: " + *req.Remarks
	}
	notification := &models.Notification{
		UserID:    request.StudentID,
		RequestID: &request.ID,
		Type:      models.NotificationRequestUpdate,
		Message:   message,
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status, req.Remarks, notification); err != nil {
		return nil, repoError(err, "request not found", "failed to update request")
	}
	request.Status = req.Status
	request.Remarks = req.Remarks
	return request, nil
}

// Delete removes a request and its attachments.
func (s *RequestService) Delete(ctx context.Context, caller *models.SessionUser, id string) error {
	request, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if caller.Role == models.RoleStudent && request.Status != models.RequestPending {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "only pending requests can be withdrawn")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "request not found", "failed to delete request")
	}
	for _, path := range request.Documents {
		if err := s.files.Delete(path); err != nil {
			s.logger.Warn("failed to remove request attachment", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

// DocumentLink signs a download link for one attachment.
func (s *RequestService) DocumentLink(ctx context.Context, caller *models.SessionUser, id string, index int) (*dto.FileLink, error) {
	request, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(request.Documents) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	return s.links.Link(request.StudentID, request.Documents[index])
}
