package service

import (
	"context"
	"errors"
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

type accountRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	Deactivate(ctx context.Context, id string) error
}

// AccountService handles user management workflows.
type AccountService struct {
	repo      accountRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccountService creates an instance of AccountService. cache holds the
// session identities that role and status changes invalidate.
func NewAccountService(repo accountRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AccountService {
	validate, logger = defaults(validate, logger)
	return &AccountService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated accounts and pagination metadata.
func (s *AccountService) List(ctx context.Context, query dto.AccountQuery) ([]models.User, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Invalid(err, "invalid account filter")
	}
	filter := models.UserFilter{
		Active:    query.Active,
		Search:    query.Search,
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Role != "" {
		role := models.UserRole(query.Role)
		filter.Role = &role
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list accounts")
	}
	return users, models.NewPagination(query.Page, query.PageSize, total), nil
}

// Get returns an account by ID.
func (s *AccountService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "account not found", "failed to load account")
	}
	return user, nil
}

// Create adds a new account.
func (s *AccountService) Create(ctx context.Context, req dto.CreateAccountRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid create account payload")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	user := &models.User{
		IDNumber:     strings.TrimSpace(req.IDNumber),
		PasswordHash: string(hash),
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        normaliseEmail(req.Email),
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "id number already exists")
		}
		return nil, appErrors.Internal(err, "failed to create account")
	}
	s.logger.Info("account created", zap.String("id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Update patches an account.
func (s *AccountService) Update(ctx context.Context, id string, req dto.UpdateAccountRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid update account payload")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "account not found", "failed to load account")
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = normaliseEmail(req.Email)
	}
	identityChanged := false
	if req.Role != nil && *req.Role != user.Role {
		user.Role = *req.Role
		identityChanged = true
	}
	if req.Active != nil && *req.Active != user.Active {
		user.Active = *req.Active
		identityChanged = true
	}
	if req.FirstName != nil || req.LastName != nil {
		identityChanged = true
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, repoError(err, "account not found", "failed to update account")
	}
	if identityChanged {
		evictSessionUser(ctx, s.cache, user.ID)
	}
	return user, nil
}

// Deactivate soft-deletes an account and ends its sessions.
func (s *AccountService) Deactivate(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot deactivate your own account")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return repoError(err, "account not found", "failed to deactivate account")
	}
	evictSessionUser(ctx, s.cache, id)
	return nil
}

// ResetPassword sets a new password for an account.
func (s *AccountService) ResetPassword(ctx context.Context, id string, req dto.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Invalid(err, "invalid password payload")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash), time.Now().UTC()); err != nil {
		return repoError(err, "account not found", "failed to update password")
	}
	return nil
}

func normaliseEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// DummyAccounts are the development logins created by SeedDummyAccounts.
var DummyAccounts = []dto.CreateAccountRequest{
	{IDNumber: "admin", Role: models.RoleAdmin, FirstName: "System", LastName: "Administrator"},
	{IDNumber: "accounting", Role: models.RoleAccounting, FirstName: "Accounting", LastName: "Staff"},
	{IDNumber: "2026-00001", Role: models.RoleStudent, FirstName: "Demo", LastName: "Student"},
}

// SeedDummyAccounts creates DummyAccounts with password, skipping any id
// number that already exists. It returns how many were created.
func (s *AccountService) SeedDummyAccounts(ctx context.Context, password string) (int, error) {
	created := 0
	for _, account := range DummyAccounts {
		account.Password = password
		if _, err := s.Create(ctx, account); err != nil {
			if errors.Is(err, appErrors.ErrConflict) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
