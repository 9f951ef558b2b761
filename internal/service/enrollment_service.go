package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/pkg/database"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, e *models.StudentEnrollment) error
	FindByID(ctx context.Context, id string) (*models.StudentEnrollment, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) (*models.StudentEnrollment, error)
	UpdateGrade(ctx context.Context, id string, grade *string) error
	Delete(ctx context.Context, id string) error
}

// EnrollmentService manages student enrollment in schedules.
type EnrollmentService struct {
	repo      enrollmentRepository
	settings  settingReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, settings settingReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	validate, logger = defaults(validate, logger)
	return &EnrollmentService{repo: repo, settings: settings, cache: cache, validator: validate, logger: logger}
}

// Enroll adds a student to a schedule. Students enroll themselves while
// enrollment is open; admins may enroll anyone at any time.
func (s *EnrollmentService) Enroll(ctx context.Context, caller *models.SessionUser, req dto.CreateEnrollmentRequest) (*models.StudentEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid enrollment payload")
	}

	studentID := req.StudentID
	if caller.Role == models.RoleStudent {
		studentID = caller.UserID
		open, err := settingEnabled(ctx, s.settings, models.SettingEnrollmentOpen)
		if err != nil {
			return nil, err
		}
		if !open {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment is closed")
		}
	}
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}

	enrollment := &models.StudentEnrollment{StudentID: studentID, ScheduleID: req.ScheduleID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this schedule")
		}
		return nil, repoError(err, "schedule not found", "failed to create enrollment")
	}
	s.invalidate(ctx)
	return enrollment, nil
}

// List returns enrollments. Students only see their own.
func (s *EnrollmentService) List(ctx context.Context, caller *models.SessionUser, query dto.EnrollmentQuery) ([]models.EnrollmentDetail, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Invalid(err, "invalid enrollment filter")
	}
	filter := models.EnrollmentFilter{
		StudentID:  query.StudentID,
		ScheduleID: query.ScheduleID,
		SemesterID: query.SemesterID,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if caller.Role == models.RoleStudent {
		filter.StudentID = caller.UserID
	}
	if query.Status != "" {
		status := models.EnrollmentStatus(query.Status)
		filter.Status = &status
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return items, models.NewPagination(query.Page, query.PageSize, total), nil
}

// UpdateStatus moves an enrollment to another state.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, id string, req dto.UpdateEnrollmentStatusRequest) (*models.StudentEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid enrollment status")
	}
	enrollment, err := s.repo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return nil, repoError(err, "enrollment not found", "failed to update enrollment")
	}
	s.invalidate(ctx)
	return enrollment, nil
}

// UpdateGrade records a final grade.
func (s *EnrollmentService) UpdateGrade(ctx context.Context, id string, req dto.UpdateGradeRequest) (*models.StudentEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid grade")
	}
	if err := s.repo.UpdateGrade(ctx, id, req.Grade); err != nil {
		return nil, repoError(err, "enrollment not found", "failed to update grade")
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "enrollment not found", "failed to load enrollment")
	}
	return enrollment, nil
}

// Delete removes an enrollment. Students may only remove their own.
func (s *EnrollmentService) Delete(ctx context.Context, caller *models.SessionUser, id string) error {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return repoError(err, "enrollment not found", "failed to load enrollment")
	}
	if !caller.CanAccessStudent(enrollment.StudentID) {
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "enrollment not found", "failed to delete enrollment")
	}
	s.invalidate(ctx)
	return nil
}

func (s *EnrollmentService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, dashboardCachePrefix+"*")
}
