package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/jobs"
)

// JobRecountEnrollment recomputes schedule enrollment counts.
const JobRecountEnrollment = "schedules.recount"

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleDetail, error)
	Create(ctx context.Context, s *models.Schedule) error
	Update(ctx context.Context, s *models.Schedule) error
	Delete(ctx context.Context, id string) error
	RecountEnrollment(ctx context.Context, semesterID string) (int64, error)
}

// ScheduleService manages timetable slots.
type ScheduleService struct {
	repo      scheduleRepository
	queue     jobEnqueuer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(repo scheduleRepository, queue jobEnqueuer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	validate, logger = defaults(validate, logger)
	return &ScheduleService{repo: repo, queue: queue, metrics: metrics, validator: validate, logger: logger}
}

// List returns schedules matching the query.
func (s *ScheduleService) List(ctx context.Context, query dto.ScheduleQuery) ([]models.ScheduleDetail, error) {
	schedules, err := s.repo.List(ctx, models.ScheduleFilter{
		SemesterID: query.SemesterID,
		SubjectID:  query.SubjectID,
		Program:    query.Program,
		YearLevel:  query.YearLevel,
		Day:        query.Day,
		Section:    query.Section,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list schedules")
	}
	return schedules, nil
}

// Get returns a schedule with its subject details.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "schedule not found", "failed to load schedule")
	}
	return schedule, nil
}

// Create adds a timetable slot.
func (s *ScheduleService) Create(ctx context.Context, req dto.ScheduleRequest) (*models.Schedule, error) {
	schedule := &models.Schedule{}
	if err := s.apply(schedule, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, repoError(err, "schedule not found", "failed to create schedule")
	}
	return schedule, nil
}

// Update replaces a slot's fields. The enrolled count is left untouched.
func (s *ScheduleService) Update(ctx context.Context, id string, req dto.ScheduleRequest) (*models.Schedule, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "schedule not found", "failed to load schedule")
	}
	schedule := detail.Schedule
	if err := s.apply(&schedule, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &schedule); err != nil {
		return nil, repoError(err, "schedule not found", "failed to update schedule")
	}
	return &schedule, nil
}

// Delete removes a slot.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "schedule not found", "failed to delete schedule")
	}
	return nil
}

// RequestRecount queues an enrollment recount.
func (s *ScheduleService) RequestRecount(ctx context.Context, req dto.RecountRequest) (*dto.JobAccepted, error) {
	id, err := s.queue.Enqueue(JobRecountEnrollment, req)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to queue recount")
	}
	return &dto.JobAccepted{JobID: id, Type: JobRecountEnrollment}, nil
}

// HandleRecount is the queue handler for JobRecountEnrollment.
func (s *ScheduleService) HandleRecount(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.RecountRequest)
	if !ok {
		return fmt.Errorf("unexpected recount payload %T", job.Payload)
	}
	n, err := s.repo.RecountEnrollment(ctx, req.SemesterID)
	s.metrics.RecordJob(job.Type, err)
	if err != nil {
		return err
	}
	s.logger.Info("enrollment counts recomputed", zap.String("semester_id", req.SemesterID), zap.Int64("schedules", n))
	return nil
}

func (s *ScheduleService) apply(schedule *models.Schedule, req dto.ScheduleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Invalid(err, "invalid schedule payload")
	}
	if req.EndTime <= req.StartTime {
		return appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	schedule.CurriculumID = req.CurriculumID
	schedule.SubjectID = req.SubjectID
	schedule.SemesterID = req.SemesterID
	schedule.Section = req.Section
	schedule.Day = req.Day
	schedule.StartTime = req.StartTime
	schedule.EndTime = req.EndTime
	schedule.Room = req.Room
	schedule.Instructor = req.Instructor
	schedule.MaxCapacity = req.MaxCapacity
	return nil
}
