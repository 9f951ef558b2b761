package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/pkg/database"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type registrationRepository interface {
	Create(ctx context.Context, reg *models.StudentRegistration) error
	FindByID(ctx context.Context, id string) (*models.StudentRegistration, error)
	FindByUserID(ctx context.Context, userID string) (*models.StudentRegistration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.StudentRegistration, int, error)
	Update(ctx context.Context, reg *models.StudentRegistration) error
	Delete(ctx context.Context, id string) error
	Reject(ctx context.Context, id string, remarks *string) error
	Approve(ctx context.Context, regID string, student *models.User, requirements []string, notification *models.Notification) error
}

type studentSequencer interface {
	MaxStudentSequence(ctx context.Context, year int) (int, error)
}

// RegistrationService handles the admission workflow.
type RegistrationService struct {
	repo         registrationRepository
	users        studentSequencer
	settings     settingReader
	requirements []string
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewRegistrationService constructs a RegistrationService. requirements is the
// checklist seeded for every approved student.
func NewRegistrationService(repo registrationRepository, users studentSequencer, settings settingReader, requirements []string, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	validate, logger = defaults(validate, logger)
	return &RegistrationService{
		repo:         repo,
		users:        users,
		settings:     settings,
		requirements: requirements,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores a new application while registration is open.
func (s *RegistrationService) Submit(ctx context.Context, req dto.RegistrationRequest) (*models.StudentRegistration, error) {
	open, err := settingEnabled(ctx, s.settings, models.SettingRegistrationOpen)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "registration is closed")
	}

	reg := &models.StudentRegistration{Status: models.RegistrationPending}
	if err := s.apply(reg, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, repoError(err, "registration not found", "failed to create registration")
	}
	s.logger.Info("registration submitted", zap.String("id", reg.ID), zap.String("program", reg.Program))
	return reg, nil
}

// List returns registrations matching the query.
func (s *RegistrationService) List(ctx context.Context, query dto.RegistrationQuery) ([]models.StudentRegistration, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Invalid(err, "invalid registration filter")
	}
	filter := models.RegistrationFilter{
		Program:    query.Program,
		YearLevel:  query.YearLevel,
		SemesterID: query.SemesterID,
		Search:     query.Search,
		Page:       query.Page,
		PageSize:   query.PageSize,
		SortBy:     query.SortBy,
		SortOrder:  query.SortOrder,
	}
	if query.Status != "" {
		status := models.RegistrationStatus(query.Status)
		filter.Status = &status
	}
	regs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list registrations")
	}
	return regs, models.NewPagination(query.Page, query.PageSize, total), nil
}

// Get returns one registration.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.StudentRegistration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "registration not found", "failed to load registration")
	}
	return reg, nil
}

// Mine returns the registration linked to a student account.
func (s *RegistrationService) Mine(ctx context.Context, userID string) (*models.StudentRegistration, error) {
	reg, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, repoError(err, "registration not found", "failed to load registration")
	}
	return reg, nil
}

// Update rewrites the form fields of a registration.
func (s *RegistrationService) Update(ctx context.Context, id string, req dto.RegistrationRequest) (*models.StudentRegistration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "registration not found", "failed to load registration")
	}
	if err := s.apply(reg, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, repoError(err, "registration not found", "failed to update registration")
	}
	return reg, nil
}

// Delete removes a registration.
func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError(err, "registration not found", "failed to delete registration")
	}
	return nil
}

// Approve turns a pending registration into a student account with its
// requirement checklist and a notification.
func (s *RegistrationService) Approve(ctx context.Context, id string, req dto.ApproveRegistrationRequest) (*dto.ApproveRegistrationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid approval payload")
	}

	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "registration not found", "failed to load registration")
	}
	if reg.Status != models.RegistrationPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "registration is not pending")
	}

	idNumber := strings.TrimSpace(req.IDNumber)
	if idNumber == "" {
		if idNumber, err = s.nextIDNumber(ctx); err != nil {
			return nil, err
		}
	}

	password := req.Password
	var temporary string
	if password == "" {
		if temporary, err = temporaryPassword(); err != nil {
			return nil, appErrors.Internal(err, "failed to generate password")
		}
		password = temporary
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	email := reg.Email
	student := &models.User{
		IDNumber:     idNumber,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        normaliseEmail(&email),
		Active:       true,
	}
	notification := &models.Notification{
		Type:    models.NotificationRegistrationUpdate,
		Message: fmt.Sprintf("Your registration for %s has been approved. Your student number is %s.", reg.Program, idNumber),
	}

	if err := s.repo.Approve(ctx, reg.ID, student, s.requirements, notification); err != nil {
		switch {
		case isNotFound(err):
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "registration is not pending")
		case errors.Is(err, database.ErrUniqueViolation):
			return nil, appErrors.Clone(appErrors.ErrConflict, "id number already exists")
		default:
			return nil, appErrors.Internal(err, "failed to approve registration")
		}
	}

	reg.UserID = &student.ID
	reg.Status = models.RegistrationApproved
	s.logger.Info("registration approved", zap.String("id", reg.ID), zap.String("student_id", student.ID))
	return &dto.ApproveRegistrationResponse{
		Registration:      reg,
		Student:           dto.NewUserInfo(student),
		TemporaryPassword: temporary,
	}, nil
}

// Reject closes a pending registration with remarks.
func (s *RegistrationService) Reject(ctx context.Context, id string, req dto.RejectRegistrationRequest) (*models.StudentRegistration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid rejection payload")
	}
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "registration not found", "failed to load registration")
	}
	if err := s.repo.Reject(ctx, id, &req.Remarks); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "registration is not pending")
		}
		return nil, appErrors.Internal(err, "failed to reject registration")
	}
	reg.Status = models.RegistrationRejected
	reg.Remarks = &req.Remarks
	return reg, nil
}

func (s *RegistrationService) apply(reg *models.StudentRegistration, req dto.RegistrationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Invalid(err, "invalid registration payload")
	}
	birth, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return appErrors.Invalid(err, "invalid birth date")
	}
	reg.FirstName = strings.TrimSpace(req.FirstName)
	reg.MiddleName = req.MiddleName
	reg.LastName = strings.TrimSpace(req.LastName)
	reg.Suffix = req.Suffix
	reg.BirthDate = birth
	reg.BirthPlace = req.BirthPlace
	reg.Gender = req.Gender
	reg.CivilStatus = req.CivilStatus
	reg.Nationality = req.Nationality
	reg.Religion = req.Religion
	reg.Email = strings.ToLower(strings.TrimSpace(req.Email))
	reg.ContactNumber = req.ContactNumber
	reg.Address = req.Address
	reg.GuardianName = req.GuardianName
	reg.GuardianContact = req.GuardianContact
	reg.GuardianRelationship = req.GuardianRelationship
	reg.LastSchoolAttended = req.LastSchoolAttended
	reg.Program = req.Program
	reg.YearLevel = req.YearLevel
	reg.StudentType = req.StudentType
	reg.SemesterID = req.SemesterID
	return nil
}

// nextIDNumber allocates the next YYYY-NNNNN student number.
func (s *RegistrationService) nextIDNumber(ctx context.Context) (string, error) {
	year := s.now().Year()
	seq, err := s.users.MaxStudentSequence(ctx, year)
	if err != nil {
		return "", appErrors.Internal(err, "failed to allocate student number")
	}
	return fmt.Sprintf("%04d-%05d", year, seq+1), nil
}

func temporaryPassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
