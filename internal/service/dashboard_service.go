package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

const dashboardCachePrefix = "dashboard:"

type dashboardRepository interface {
	AdminCounts(ctx context.Context, semesterID string) (*dto.AdminDashboard, error)
	StudentCounts(ctx context.Context, studentID, semesterID string) (*dto.StudentDashboard, error)
	AccountingCounts(ctx context.Context, semesterID string) (*dto.AccountingDashboard, error)
}

// DashboardService composes the role dashboards, caching them in Redis when
// enabled.
type DashboardService struct {
	repo     dashboardRepository
	settings settingReader
	cache    *CacheService
	metrics  *MetricsService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(repo dashboardRepository, settings settingReader, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, settings: settings, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Admin returns institution-wide counters and whether the cache served them.
func (s *DashboardService) Admin(ctx context.Context, semesterID string) (*dto.AdminDashboard, bool, error) {
	semesterID = s.semester(ctx, semesterID)
	key := dashboardCachePrefix + "admin:" + semesterID
	var cached dto.AdminDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	summary, err := s.repo.AdminCounts(ctx, semesterID)
	s.metrics.ObserveDBQuery("dashboard_admin", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to build dashboard")
	}
	s.persist(ctx, key, summary)
	return summary, false, nil
}

// Student returns counters for the calling student.
func (s *DashboardService) Student(ctx context.Context, caller *models.SessionUser, semesterID string) (*dto.StudentDashboard, bool, error) {
	semesterID = s.semester(ctx, semesterID)
	key := dashboardCachePrefix + "student:" + caller.UserID + ":" + semesterID
	var cached dto.StudentDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	summary, err := s.repo.StudentCounts(ctx, caller.UserID, semesterID)
	s.metrics.ObserveDBQuery("dashboard_student", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to build dashboard")
	}
	s.persist(ctx, key, summary)
	return summary, false, nil
}

// Accounting returns payment counters for a semester.
func (s *DashboardService) Accounting(ctx context.Context, semesterID string) (*dto.AccountingDashboard, bool, error) {
	semesterID = s.semester(ctx, semesterID)
	key := dashboardCachePrefix + "accounting:" + semesterID
	var cached dto.AccountingDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	summary, err := s.repo.AccountingCounts(ctx, semesterID)
	s.metrics.ObserveDBQuery("dashboard_accounting", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to build dashboard")
	}
	s.persist(ctx, key, summary)
	return summary, false, nil
}

func (s *DashboardService) semester(ctx context.Context, requested string) string {
	if requested != "" || s.settings == nil {
		return requested
	}
	return activeSemesterID(ctx, s.settings)
}

func (s *DashboardService) persist(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
